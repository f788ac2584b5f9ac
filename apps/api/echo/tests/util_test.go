package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/sayansi/apps/api/echo"
	"github.com/trezcool/sayansi/core"
	"github.com/trezcool/sayansi/core/contact"
	"github.com/trezcool/sayansi/core/enroll"
	"github.com/trezcool/sayansi/core/registration"
	"github.com/trezcool/sayansi/core/user"
	emailsvc "github.com/trezcool/sayansi/services/email"
	smssvc "github.com/trezcool/sayansi/services/sms"
	inmemdb "github.com/trezcool/sayansi/storage/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testEnv struct {
	conf       *core.Config
	app        *Server
	usrRepo    user.Repository
	enrollRepo enroll.Repository
	usrSvc     user.Service
	contactSvc contact.Service
	regSvc     registration.Service
	enrollSvc  enroll.Service
}

func setup(t *testing.T) *testEnv {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	usrRepo := inmemdb.NewUserRepository(db)
	enrollRepo := inmemdb.NewEnrollRepository(db)

	emailsvc.ClearSentMessages()
	smssvc.ClearSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	smsSvc := smssvc.NewConsoleServiceMock(conf)

	usrSvc := user.NewServiceMock(conf, usrRepo, mailSvc)
	contactSvc := contact.NewService(inmemdb.NewContactRepository(db))
	regSvc := registration.NewService(inmemdb.NewRegistrationRepository(db))
	enrollSvc := enroll.NewService(conf, enrollRepo, inmemdb.NewFileStore(db), mailSvc)

	app := NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     testLogger{t},
			UserSvc:    usrSvc,
			ContactSvc: contactSvc,
			RegSvc:     regSvc,
			EnrollSvc:  enrollSvc,
			SMSSvc:     smsSvc,
			Validate:   newValidator(),
			Translator: translator,
		},
	)
	return &testEnv{
		conf:       conf,
		app:        app,
		usrRepo:    usrRepo,
		enrollRepo: enrollRepo,
		usrSvc:     usrSvc,
		contactSvc: contactSvc,
		regSvc:     regSvc,
		enrollSvc:  enrollSvc,
	}
}

// testLogger routes app logs to the test output so a failing test shows them.
type testLogger struct {
	t *testing.T
}

func (l testLogger) Enable(bool)                        {}
func (l testLogger) Debug(msg string, _ ...interface{}) { l.t.Log(msg) }
func (l testLogger) Info(msg string, _ ...interface{})  { l.t.Log(msg) }
func (l testLogger) Warn(msg string, _ ...interface{})  { l.t.Log(msg) }
func (l testLogger) Error(msg string, args ...interface{}) {
	l.t.Logf("%s %v", msg, args)
}
func (l testLogger) Fatal(msg string, args ...interface{}) {
	l.t.Fatalf("%s %v", msg, args)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newMultipartRequest builds a multipart form request out of text fields and
// optional uploads (field -> filename/content-type/content).
type upload struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

func newMultipartRequest(t *testing.T, path string, fields map[string]string, uploads ...upload) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(): %v", err)
		}
	}
	for _, up := range uploads {
		hdr := make(map[string][]string)
		hdr["Content-Disposition"] = []string{`form-data; name="` + up.field + `"; filename="` + up.filename + `"`}
		hdr["Content-Type"] = []string{up.contentType}
		fw, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("CreatePart(): %v", err)
		}
		if _, err = fw.Write(up.content); err != nil {
			t.Fatalf("writing upload: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	return req, rec
}

func createUser(t *testing.T, repo user.Repository, name, uname, email, pwd string, roles []string, isActive bool) user.User {
	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd == "" {
		pwd = "S3cret!pwd"
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createAdmin(t *testing.T, env *testEnv) user.User {
	return createUser(t, env.usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
}

func registerSchool(t *testing.T, env *testEnv) enroll.School {
	s, err := env.enrollSvc.RegisterSchool(enroll.NewSchool{
		Name: "Sunrise Academy",
		Address: enroll.Address{
			Street: "5 Uhuru Avenue",
			City:   "Lubumbashi",
			State:  "Haut-Katanga",
			PIN:    "411001",
		},
		Contact:          "9876543210",
		PrincipalName:    "P. Kalala",
		PrincipalContact: "9876543211",
	})
	if err != nil {
		t.Fatalf("RegisterSchool(): %v", err)
	}
	return s
}

func registerMentor(t *testing.T, env *testEnv, schoolCode string) enroll.Mentor {
	m, err := env.enrollSvc.RegisterMentor(enroll.NewMentor{
		SchoolCode:    schoolCode,
		Name:          "M. Tshisekedi",
		Contact:       "9876543212",
		Qualification: "MSc Physics",
		Experience:    "8 years",
		Subject:       "Physics",
	})
	if err != nil {
		t.Fatalf("RegisterMentor(): %v", err)
	}
	return m
}

func candidateFields(mentorCode string) map[string]string {
	return map[string]string{
		"mentor_code":   mentorCode,
		"name":          "N. Kabongo",
		"date_of_birth": "2012-04-17",
		"gender":        "female",
		"email":         "kabongo@test.cd",
		"contact":       "9876543213",
		"street":        "18 Lumumba Street",
		"city":          "Goma",
		"state":         "Nord-Kivu",
		"pin":           "411002",
		"grade_level":   "8",
		"school_name":   "Sunrise Academy",
	}
}

func jpegUpload(field string) upload {
	return upload{
		field:       field,
		filename:    field + ".jpg",
		contentType: "image/jpeg",
		content:     []byte(strings.Repeat("jpeg", 64)),
	}
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decodeBody(): %v; body: %s", err, rec.Body.String())
	}
}

func readAll(t *testing.T, r io.Reader) []byte {
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("readAll(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
