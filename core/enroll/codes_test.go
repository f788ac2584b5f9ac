package enroll

import (
	"regexp"
	"testing"
)

func TestRandomCode(t *testing.T) {
	re := regexp.MustCompile(`^SCH[0-9A-Z]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := randomCode(SchoolCodePrefix)
		if err != nil {
			t.Fatalf("randomCode(): %v", err)
		}
		if !re.MatchString(code) {
			t.Errorf("randomCode() = %q; want match for %q", code, re)
		}
		seen[code] = true
	}
	if len(seen) < 95 {
		t.Errorf("randomCode() produced %d distinct codes out of 100", len(seen))
	}
}

func TestRandomSeatNumber(t *testing.T) {
	re := regexp.MustCompile(`^2026\d{5}$`)
	for i := 0; i < 100; i++ {
		seat, err := randomSeatNumber(2026)
		if err != nil {
			t.Fatalf("randomSeatNumber(): %v", err)
		}
		if !re.MatchString(seat) {
			t.Errorf("randomSeatNumber() = %q; want match for %q", seat, re)
		}
	}
}

func TestNewUniqueCode(t *testing.T) {
	t.Run("first try", func(t *testing.T) {
		code, err := newUniqueCode(MentorCodePrefix, func(string) (bool, error) { return false, nil })
		if err != nil {
			t.Fatalf("newUniqueCode(): %v", err)
		}
		if code == "" {
			t.Error("newUniqueCode() returned an empty code")
		}
	})

	t.Run("retries on collision", func(t *testing.T) {
		var attempts int
		code, err := newUniqueCode(MentorCodePrefix, func(string) (bool, error) {
			attempts++
			return attempts < 3, nil // first two codes are taken
		})
		if err != nil {
			t.Fatalf("newUniqueCode(): %v", err)
		}
		if code == "" {
			t.Error("newUniqueCode() returned an empty code")
		}
		if attempts != 3 {
			t.Errorf("newUniqueCode() attempts = %d; want 3", attempts)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		_, err := newUniqueCode(MentorCodePrefix, func(string) (bool, error) { return true, nil })
		if err != ErrCodeSpaceExhausted {
			t.Errorf("newUniqueCode() error = %v; want %v", err, ErrCodeSpaceExhausted)
		}
	})
}

func TestNewUniqueSeatNumber(t *testing.T) {
	t.Run("retries on collision", func(t *testing.T) {
		var attempts int
		seat, err := newUniqueSeatNumber(2026, func(string) (bool, error) {
			attempts++
			return attempts < 2, nil
		})
		if err != nil {
			t.Fatalf("newUniqueSeatNumber(): %v", err)
		}
		if seat == "" {
			t.Error("newUniqueSeatNumber() returned an empty seat number")
		}
		if attempts != 2 {
			t.Errorf("newUniqueSeatNumber() attempts = %d; want 2", attempts)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		_, err := newUniqueSeatNumber(2026, func(string) (bool, error) { return true, nil })
		if err != ErrCodeSpaceExhausted {
			t.Errorf("newUniqueSeatNumber() error = %v; want %v", err, ErrCodeSpaceExhausted)
		}
	})
}
