package tests

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sayansi/core/enroll"
)

var (
	schoolCodeRx = regexp.MustCompile(`^SCH[0-9A-Z]{8}$`)
	mentorCodeRx = regexp.MustCompile(`^MEN[0-9A-Z]{8}$`)
)

func Test_enrollApi_registerSchool(t *testing.T) {
	env := setup(t)

	validBody := func() map[string]interface{} {
		return map[string]interface{}{
			"name": "Sunrise Academy",
			"address": map[string]string{
				"street": "5 Uhuru Avenue",
				"city":   "Lubumbashi",
				"state":  "Haut-Katanga",
				"pin":    "411001",
			},
			"contact":           "9876543210",
			"principal_name":    "P. Kalala",
			"principal_contact": "9876543211",
		}
	}

	post := func(t *testing.T, body map[string]interface{}) (*enroll.School, int, string) {
		req, rec := newRequest(http.MethodPost, "/v1/schools/register", marchallObj(t, body))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			return nil, rec.Code, rec.Body.String()
		}
		var resp struct {
			Message string        `json:"message"`
			Data    enroll.School `json:"data"`
		}
		decodeBody(t, rec, &resp)
		return &resp.Data, rec.Code, rec.Body.String()
	}

	t.Run("ok", func(t *testing.T) {
		s, code, body := post(t, validBody())
		require.Equal(t, http.StatusCreated, code, body)
		assert.Regexp(t, schoolCodeRx, s.Code)
	})

	t.Run("duplicate submissions get distinct codes", func(t *testing.T) {
		s1, code, body := post(t, validBody())
		require.Equal(t, http.StatusCreated, code, body)
		s2, code, body := post(t, validBody())
		require.Equal(t, http.StatusCreated, code, body)
		assert.NotEqual(t, s1.Code, s2.Code)
	})

	t.Run("invalid PIN", func(t *testing.T) {
		body := validBody()
		body["address"].(map[string]string)["pin"] = "41100"

		req, rec := newRequest(http.MethodPost, "/v1/schools/register", marchallObj(t, body))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		var fldErrs map[string]string
		decodeBody(t, rec, &fldErrs)
		assert.Contains(t, fldErrs, "pin")
	})
}

func Test_enrollApi_registerMentor(t *testing.T) {
	env := setup(t)
	school := registerSchool(t, env)

	validBody := func() map[string]string {
		return map[string]string{
			"school_code":   school.Code,
			"name":          "M. Tshisekedi",
			"contact":       "9876543212",
			"qualification": "MSc Physics",
			"experience":    "8 years",
			"subject":       "Physics",
		}
	}

	t.Run("ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/mentors/register", marchallObj(t, validBody()))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp struct {
			Data enroll.Mentor `json:"data"`
		}
		decodeBody(t, rec, &resp)
		assert.Regexp(t, mentorCodeRx, resp.Data.Code)
		assert.Equal(t, school.Code, resp.Data.SchoolCode)
	})

	t.Run("dangling school code rejected", func(t *testing.T) {
		body := validBody()
		body["school_code"] = "SCH00XX00XX"

		req, rec := newRequest(http.MethodPost, "/v1/mentors/register", marchallObj(t, body))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		var fldErrs map[string]string
		decodeBody(t, rec, &fldErrs)
		assert.Contains(t, fldErrs, "school_code")

		mentors, err := env.enrollSvc.QueryAllMentors()
		require.NoError(t, err)
		assert.Len(t, mentors, 1) // only the one from the previous subtest
	})

	t.Run("malformed school code rejected", func(t *testing.T) {
		body := validBody()
		body["school_code"] = "nope"

		req, rec := newRequest(http.MethodPost, "/v1/mentors/register", marchallObj(t, body))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var fldErrs map[string]string
		decodeBody(t, rec, &fldErrs)
		assert.Contains(t, fldErrs, "school_code")
	})
}

func Test_enrollApi_registerCandidate(t *testing.T) {
	env := setup(t)
	school := registerSchool(t, env)
	mentor := registerMentor(t, env, school.Code)

	post := func(t *testing.T, fields map[string]string, uploads ...upload) (*enroll.Candidate, int, string) {
		req, rec := newMultipartRequest(t, "/v1/candidates/register", fields, uploads...)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			return nil, rec.Code, rec.Body.String()
		}
		var resp struct {
			Message string           `json:"message"`
			Data    enroll.Candidate `json:"data"`
		}
		decodeBody(t, rec, &resp)
		return &resp.Data, rec.Code, rec.Body.String()
	}

	t.Run("ok", func(t *testing.T) {
		c, code, body := post(t, candidateFields(mentor.Code), jpegUpload("photo"), jpegUpload("signature"))
		require.Equal(t, http.StatusCreated, code, body)

		wantSeatPrefix := strconv.Itoa(env.conf.Enroll.CandidateDeadline.Year())
		assert.Regexp(t, "^"+wantSeatPrefix+`\d{5}$`, c.SeatNumber)
		assert.Equal(t, mentor.Code, c.MentorCode)
		assert.False(t, c.HallTicketIssued)
		assert.NotEmpty(t, c.PhotoID)
		assert.NotEmpty(t, c.SignatureID)

		// documents retrievable
		f, rc, err := env.enrollSvc.OpenDocument(c.PhotoID)
		require.NoError(t, err)
		defer rc.Close()
		assert.Equal(t, "image/jpeg", f.ContentType)
		assert.Equal(t, strings.Repeat("jpeg", 64), string(readAll(t, rc)))
	})

	t.Run("dangling mentor code rejected", func(t *testing.T) {
		_, code, body := post(t, candidateFields("MEN00XX00XX"), jpegUpload("photo"), jpegUpload("signature"))
		require.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body, "mentor_code")
	})

	t.Run("missing documents rejected", func(t *testing.T) {
		_, code, body := post(t, candidateFields(mentor.Code))
		require.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body, "photo")
		assert.Contains(t, body, "signature")
	})

	t.Run("wrong document type rejected", func(t *testing.T) {
		pdf := upload{field: "photo", filename: "photo.pdf", contentType: "application/pdf", content: []byte("%PDF-1.4")}
		_, code, body := post(t, candidateFields(mentor.Code), pdf, jpegUpload("signature"))
		require.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body, "photo")
	})

	t.Run("after deadline rejected", func(t *testing.T) {
		restore := enroll.NowFunc
		enroll.NowFunc = func() time.Time { return env.conf.Enroll.CandidateDeadline.Add(time.Minute) }
		defer func() { enroll.NowFunc = restore }()

		_, code, body := post(t, candidateFields(mentor.Code), jpegUpload("photo"), jpegUpload("signature"))
		require.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body, "deadline")
	})

	t.Run("seat numbers unique across submissions", func(t *testing.T) {
		c1, code, body := post(t, candidateFields(mentor.Code), jpegUpload("photo"), jpegUpload("signature"))
		require.Equal(t, http.StatusCreated, code, body)
		c2, code, body := post(t, candidateFields(mentor.Code), jpegUpload("photo"), jpegUpload("signature"))
		require.Equal(t, http.StatusCreated, code, body)
		assert.NotEqual(t, c1.SeatNumber, c2.SeatNumber)
		assert.NotEqual(t, c1.ID, c2.ID)
	})
}

// full wizard: school -> mentor -> candidate, all over HTTP
func Test_enrollApi_endToEnd(t *testing.T) {
	env := setup(t)

	// school
	req, rec := newRequest(http.MethodPost, "/v1/schools/register", marchallObj(t, map[string]interface{}{
		"name": "Sunrise Academy",
		"address": map[string]string{
			"street": "5 Uhuru Avenue", "city": "Lubumbashi", "state": "Haut-Katanga", "pin": "411001",
		},
		"contact": "9876543210", "principal_name": "P. Kalala", "principal_contact": "9876543211",
	}))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sResp struct {
		Data enroll.School `json:"data"`
	}
	decodeBody(t, rec, &sResp)

	// mentor
	req, rec = newRequest(http.MethodPost, "/v1/mentors/register", marchallObj(t, map[string]string{
		"school_code": sResp.Data.Code, "name": "M. Tshisekedi", "contact": "9876543212",
		"qualification": "MSc Physics", "experience": "8 years", "subject": "Physics",
	}))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var mResp struct {
		Data enroll.Mentor `json:"data"`
	}
	decodeBody(t, rec, &mResp)

	// candidate
	req, rec = newMultipartRequest(t, "/v1/candidates/register",
		candidateFields(mResp.Data.Code), jpegUpload("photo"), jpegUpload("signature"))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var cResp struct {
		Data enroll.Candidate `json:"data"`
	}
	decodeBody(t, rec, &cResp)

	c, err := env.enrollSvc.GetCandidateByID(cResp.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, mResp.Data.Code, c.MentorCode)

	m, err := env.enrollSvc.GetMentorByCode(c.MentorCode)
	require.NoError(t, err)
	assert.Equal(t, sResp.Data.Code, m.SchoolCode)
}
