package tests

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/sayansi/apps/api/echo"
	"github.com/trezcool/sayansi/core/contact"
	"github.com/trezcool/sayansi/core/enroll"
	"github.com/trezcool/sayansi/core/registration"
	smssvc "github.com/trezcool/sayansi/services/sms"
)

func registerCandidate(t *testing.T, env *testEnv, mentorCode string) enroll.Candidate {
	req, rec := newMultipartRequest(t, "/v1/candidates/register",
		candidateFields(mentorCode), jpegUpload("photo"), jpegUpload("signature"))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Data enroll.Candidate `json:"data"`
	}
	decodeBody(t, rec, &resp)
	return resp.Data
}

func Test_adminApi_dashboard(t *testing.T) {
	env := setup(t)
	adminToken := getToken(t, env.conf, createAdmin(t, env))

	school := registerSchool(t, env)
	mentor := registerMentor(t, env, school.Code)
	registerCandidate(t, env, mentor.Code)
	registerCandidate(t, env, mentor.Code)

	_, err := env.contactSvc.Create(contact.NewContact{
		FirstName: "Awa", LastName: "Mwangi", Email: "awa@test.cd",
		GradeLevel: "8", Message: "I would like to know more about the program.",
	})
	require.NoError(t, err)
	_, err = env.regSvc.Create(registration.NewRegistration{
		StudentName: "Student One", Email: "student1@test.cd", Phone: "9876543210",
		GradeLevel: "9", SchoolName: "Test School", ParentName: "Parent One",
		ParentPhone: "9876543211", Address: "12 Baraza Road, Kinshasa",
		ExamType: registration.ExamMains,
	})
	require.NoError(t, err)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/admin/dashboard")
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("counts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/dashboard", adminToken)
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp echoapi.DashboardResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, int64(1), resp.Schools)
		assert.Equal(t, int64(1), resp.Mentors)
		assert.Equal(t, int64(2), resp.Candidates)
		assert.Equal(t, int64(1), resp.Contacts)
		assert.Equal(t, int64(1), resp.Registrations)
	})
}

func Test_adminApi_candidates(t *testing.T) {
	env := setup(t)
	adminToken := getToken(t, env.conf, createAdmin(t, env))

	school := registerSchool(t, env)
	mentor := registerMentor(t, env, school.Code)
	c1 := registerCandidate(t, env, mentor.Code)
	c2 := registerCandidate(t, env, mentor.Code)

	list := func(t *testing.T, query url.Values) []enroll.Candidate {
		path := "/v1/admin/candidates"
		if len(query) > 0 {
			path += "?" + query.Encode()
		}
		req, rec := newAuthRequest(http.MethodGet, path, adminToken)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var candidates []enroll.Candidate
		decodeBody(t, rec, &candidates)
		return candidates
	}

	t.Run("get all, most recent first", func(t *testing.T) {
		candidates := list(t, nil)
		require.Len(t, candidates, 2)
		assert.Equal(t, c2.ID, candidates[0].ID)
		assert.Equal(t, c1.ID, candidates[1].ID)
	})

	t.Run("search", func(t *testing.T) {
		assert.Len(t, list(t, url.Values{"search": {"kabongo"}}), 2)
		assert.Empty(t, list(t, url.Values{"search": {"nobody"}}))
	})

	t.Run("filter by mentor code", func(t *testing.T) {
		assert.Len(t, list(t, url.Values{"mentor_code": {mentor.Code}}), 2)
		assert.Empty(t, list(t, url.Values{"mentor_code": {"MEN00XX00XX"}}))
	})

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/candidates/"+c1.ID, adminToken)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var c enroll.Candidate
		decodeBody(t, rec, &c)
		assert.Equal(t, c1.SeatNumber, c.SeatNumber)
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/candidates/nope", adminToken)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("hall ticket flow", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/v1/admin/candidates/"+c1.ID+"/hall-ticket", adminToken,
			marchallObj(t, map[string]bool{"issued": true}))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var c enroll.Candidate
		decodeBody(t, rec, &c)
		assert.True(t, c.HallTicketIssued)

		issued := list(t, url.Values{"hall_ticket_issued": {"true"}})
		require.Len(t, issued, 1)
		assert.Equal(t, c1.ID, issued[0].ID)

		pending := list(t, url.Values{"hall_ticket_issued": {"false"}})
		require.Len(t, pending, 1)
		assert.Equal(t, c2.ID, pending[0].ID)
	})

	t.Run("document download", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/documents/"+c1.PhotoID, adminToken)
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, rec.Body.Bytes())
	})

	t.Run("unknown document", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/documents/nope", adminToken)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_adminApi_broadcastSMS(t *testing.T) {
	env := setup(t)
	adminToken := getToken(t, env.conf, createAdmin(t, env))

	t.Run("ok", func(t *testing.T) {
		smssvc.ClearSentMessages()

		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/sms", adminToken,
			marchallObj(t, map[string]interface{}{
				"to":   []string{"9876543210", "9876543211"},
				"body": "Hall tickets are ready for collection.",
			}))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Len(t, smssvc.SentMessages, 1)
		assert.Equal(t, []string{"9876543210", "9876543211"}, smssvc.SentMessages[0].To)
	})

	t.Run("invalid numbers", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/sms", adminToken,
			marchallObj(t, map[string]interface{}{
				"to":   []string{"nope"},
				"body": "Hall tickets are ready for collection.",
			}))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("admin required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/admin/sms",
			marchallObj(t, map[string]interface{}{"to": []string{"9876543210"}, "body": "hello there"}))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
