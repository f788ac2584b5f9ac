package enroll

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/pkg/errors"
)

// Issued code shapes
const (
	SchoolCodePrefix = "SCH"
	MentorCodePrefix = "MEN"

	codeSuffixLen  = 8
	seatNumberLen  = 5
	maxCodeRetries = 5
)

var codeAlphabet = []byte("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// ErrCodeSpaceExhausted is returned when code generation keeps colliding
// with already-issued codes after maxCodeRetries attempts.
var ErrCodeSpaceExhausted = errors.New("could not generate a unique code")

// randomCode returns prefix + a random base-36 suffix of codeSuffixLen characters.
func randomCode(prefix string) (string, error) {
	suffix := make([]byte, codeSuffixLen)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "generating code suffix")
		}
		suffix[i] = codeAlphabet[n.Int64()]
	}
	return prefix + string(suffix), nil
}

// randomSeatNumber returns the exam year followed by seatNumberLen random digits.
func randomSeatNumber(year int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < seatNumberLen; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", errors.Wrap(err, "generating seat number")
	}
	num := n.String()
	for len(num) < seatNumberLen {
		num = "0" + num
	}
	return strconv.Itoa(year) + num, nil
}

// newUniqueCode retries randomCode until exists reports the code as unissued.
func newUniqueCode(prefix string, exists func(code string) (bool, error)) (string, error) {
	for i := 0; i < maxCodeRetries; i++ {
		code, err := randomCode(prefix)
		if err != nil {
			return "", err
		}
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// newUniqueSeatNumber retries randomSeatNumber until exists reports the number as unissued.
func newUniqueSeatNumber(year int, exists func(seat string) (bool, error)) (string, error) {
	for i := 0; i < maxCodeRetries; i++ {
		seat, err := randomSeatNumber(year)
		if err != nil {
			return "", err
		}
		taken, err := exists(seat)
		if err != nil {
			return "", err
		}
		if !taken {
			return seat, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}
