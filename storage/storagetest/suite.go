// Package storagetest holds a contract test suite that every storage adapter
// must pass, so the in-memory and document-store variants cannot drift apart.
package storagetest

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sayansi/core"
	"github.com/trezcool/sayansi/core/contact"
	"github.com/trezcool/sayansi/core/enroll"
	"github.com/trezcool/sayansi/core/registration"
	"github.com/trezcool/sayansi/core/user"
)

// Adapters bundles one adapter's implementations of every repository.
type Adapters struct {
	Users         user.Repository
	Contacts      contact.Repository
	Registrations registration.Repository
	Enroll        enroll.Repository
	Files         core.FileStore
}

// Run exercises the full repository contract against a fresh adapter per subtest.
func Run(t *testing.T, open func(t *testing.T) Adapters) {
	t.Run("users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("contacts", func(t *testing.T) { testContacts(t, open(t)) })
	t.Run("registrations", func(t *testing.T) { testRegistrations(t, open(t)) })
	t.Run("schools", func(t *testing.T) { testSchools(t, open(t)) })
	t.Run("mentors", func(t *testing.T) { testMentors(t, open(t)) })
	t.Run("candidates", func(t *testing.T) { testCandidates(t, open(t)) })
	t.Run("files", func(t *testing.T) { testFiles(t, open(t)) })
}

func testUsers(t *testing.T, db Adapters) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	usr := user.User{
		ID:        "4f2a1f28-0001-4e59-bf71-52b0c518a001",
		Name:      "Admin",
		Username:  "admin1",
		Email:     "admin@test.cd",
		IsActive:  true,
		Roles:     []string{user.RoleAdmin},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword("S3cret!pwd"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}

	created, err := db.Users.CreateUser(usr)
	assert.NoError(t, err)
	assert.Equal(t, usr.ID, created.ID)

	// uniqueness
	assert.Equal(t, user.ErrUsernameExists, db.Users.CheckUsernameUniqueness("admin1", ""))
	assert.Equal(t, user.ErrEmailExists, db.Users.CheckUsernameUniqueness("other", "admin@test.cd"))
	assert.NoError(t, db.Users.CheckUsernameUniqueness("other", "other@test.cd"))

	dup := usr
	dup.ID = "4f2a1f28-0002-4e59-bf71-52b0c518a002"
	_, err = db.Users.CreateUser(dup)
	assert.Error(t, err)

	// lookups
	got, err := db.Users.GetUserByID(usr.ID)
	assert.NoError(t, err)
	assert.Equal(t, usr.Username, got.Username)

	got, err = db.Users.GetUserByUsername("admin1")
	assert.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	got, err = db.Users.GetUserByEmail("admin@test.cd")
	assert.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	got, err = db.Users.GetUserByUsernameOrEmail("admin@test.cd")
	assert.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = db.Users.GetUserByID("nope")
	assert.Equal(t, user.ErrNotFound, err)

	// password update
	var hash []byte
	{
		tmp := user.User{}
		_ = tmp.SetPassword("N3w!password")
		hash = tmp.PasswordHash
	}
	got, err = db.Users.UpdateUserPassword(usr.ID, hash)
	assert.NoError(t, err)
	assert.Equal(t, hash, got.PasswordHash)

	// last login
	lastLogin := now.Add(time.Hour)
	got, err = db.Users.SetUserLastLogin(usr.ID, lastLogin)
	assert.NoError(t, err)
	assert.True(t, got.LastLogin.Equal(lastLogin))

	users, err := db.Users.QueryAllUsers()
	assert.NoError(t, err)
	assert.Len(t, users, 1)
}

func testContacts(t *testing.T, db Adapters) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 3; i++ {
		_, err := db.Contacts.CreateContact(contact.Contact{
			ID:         fmt.Sprintf("0d95c3ba-%04d-4bf1-a625-02f2b9a0c003", i),
			FirstName:  "Awa",
			LastName:   fmt.Sprintf("Mwangi%d", i),
			Email:      fmt.Sprintf("awa%d@test.cd", i),
			GradeLevel: "8",
			Message:    "I would like to know more about the program.",
			CreatedAt:  now.Add(time.Duration(i) * time.Second),
		})
		assert.NoError(t, err)
	}

	contacts, err := db.Contacts.QueryAllContacts()
	assert.NoError(t, err)
	if assert.Len(t, contacts, 3) {
		// most recent first
		assert.Equal(t, "Mwangi2", contacts[0].LastName)
		assert.Equal(t, "Mwangi0", contacts[2].LastName)
		for i := 0; i < len(contacts)-1; i++ {
			assert.False(t, contacts[i].CreatedAt.Before(contacts[i+1].CreatedAt))
		}
	}

	n, err := db.Contacts.CountContacts()
	assert.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func testRegistrations(t *testing.T, db Adapters) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	var last registration.Registration
	for i := 0; i < 3; i++ {
		var err error
		last, err = db.Registrations.CreateRegistration(registration.Registration{
			ID:            fmt.Sprintf("7c1de9f0-%04d-46c2-9f1b-1f2db3a0c004", i),
			StudentName:   fmt.Sprintf("Student %d", i),
			Email:         fmt.Sprintf("student%d@test.cd", i),
			Phone:         "9876543210",
			GradeLevel:    "9",
			SchoolName:    "Test School",
			ParentName:    "Parent",
			ParentPhone:   "9876543211",
			Address:       "12 Baraza Road, Kinshasa",
			ExamType:      registration.ExamMains,
			PaymentStatus: registration.PaymentPending,
			CreatedAt:     now.Add(time.Duration(i) * time.Second),
		})
		assert.NoError(t, err)
	}

	regs, err := db.Registrations.QueryAllRegistrations()
	assert.NoError(t, err)
	if assert.Len(t, regs, 3) {
		assert.Equal(t, last.ID, regs[0].ID) // most recent first
	}

	got, err := db.Registrations.GetRegistrationByID(last.ID)
	assert.NoError(t, err)
	assert.Equal(t, last.StudentName, got.StudentName)

	_, err = db.Registrations.GetRegistrationByID("nope")
	assert.Equal(t, registration.ErrNotFound, err)

	n, err := db.Registrations.CountRegistrations()
	assert.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func newTestSchool(code string, createdAt time.Time) enroll.School {
	return enroll.School{
		Code: code,
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
		CreatedAt:        createdAt,
	}
}

func testSchools(t *testing.T, db Adapters) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	_, err := db.Enroll.CreateSchool(newTestSchool("SCH11AA22BB", now))
	assert.NoError(t, err)
	_, err = db.Enroll.CreateSchool(newTestSchool("SCH33CC44DD", now.Add(time.Second)))
	assert.NoError(t, err)

	// duplicate code
	_, err = db.Enroll.CreateSchool(newTestSchool("SCH11AA22BB", now.Add(2*time.Second)))
	assert.Equal(t, enroll.ErrSchoolCodeExists, err)

	got, err := db.Enroll.GetSchoolByCode("SCH11AA22BB")
	assert.NoError(t, err)
	assert.Equal(t, "Sunrise Academy", got.Name)

	_, err = db.Enroll.GetSchoolByCode("SCH00XX00XX")
	assert.Equal(t, enroll.ErrSchoolNotFound, err)

	ok, err := db.Enroll.SchoolCodeExists("SCH11AA22BB")
	assert.NoError(t, err)
	assert.True(t, ok)
	ok, err = db.Enroll.SchoolCodeExists("SCH00XX00XX")
	assert.NoError(t, err)
	assert.False(t, ok)

	schools, err := db.Enroll.QueryAllSchools()
	assert.NoError(t, err)
	if assert.Len(t, schools, 2) {
		assert.Equal(t, "SCH33CC44DD", schools[0].Code) // most recent first
	}

	n, err := db.Enroll.CountSchools()
	assert.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func newTestMentor(code, schoolCode string, createdAt time.Time) enroll.Mentor {
	return enroll.Mentor{
		Code:          code,
		SchoolCode:    schoolCode,
		Name:          "M. Tshisekedi",
		Contact:       "9876543212",
		Qualification: "MSc Physics",
		Experience:    "8 years",
		Subject:       "Physics",
		CreatedAt:     createdAt,
	}
}

func testMentors(t *testing.T, db Adapters) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	_, err := db.Enroll.CreateSchool(newTestSchool("SCH11AA22BB", now))
	assert.NoError(t, err)

	_, err = db.Enroll.CreateMentor(newTestMentor("MEN55EE66FF", "SCH11AA22BB", now))
	assert.NoError(t, err)

	// duplicate code
	_, err = db.Enroll.CreateMentor(newTestMentor("MEN55EE66FF", "SCH11AA22BB", now.Add(time.Second)))
	assert.Equal(t, enroll.ErrMentorCodeExists, err)

	got, err := db.Enroll.GetMentorByCode("MEN55EE66FF")
	assert.NoError(t, err)
	assert.Equal(t, "SCH11AA22BB", got.SchoolCode)

	_, err = db.Enroll.GetMentorByCode("MEN00XX00XX")
	assert.Equal(t, enroll.ErrMentorNotFound, err)

	ok, err := db.Enroll.MentorCodeExists("MEN55EE66FF")
	assert.NoError(t, err)
	assert.True(t, ok)

	mentors, err := db.Enroll.QueryAllMentors()
	assert.NoError(t, err)
	assert.Len(t, mentors, 1)

	n, err := db.Enroll.CountMentors()
	assert.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func newTestCandidate(id, seat, mentorCode string, createdAt time.Time) enroll.Candidate {
	return enroll.Candidate{
		ID:          id,
		SeatNumber:  seat,
		MentorCode:  mentorCode,
		Name:        "N. Kabongo",
		DateOfBirth: "2012-04-17",
		Gender:      "female",
		Contact:     "9876543213",
		Address: enroll.Address{
			Street: "18 Lumumba Street",
			City:   "Goma",
			State:  "Nord-Kivu",
			PIN:    "411002",
		},
		GradeLevel:  "8",
		SchoolName:  "Sunrise Academy",
		PhotoID:     "photo-" + id,
		SignatureID: "sig-" + id,
		CreatedAt:   createdAt,
	}
}

func testCandidates(t *testing.T, db Adapters) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	c1 := newTestCandidate("c58f5e0a-0001-4f2b-8f05-b7a3b1e0c005", "202600001", "MEN55EE66FF", now)
	c2 := newTestCandidate("c58f5e0a-0002-4f2b-8f05-b7a3b1e0c006", "202600002", "MEN77GG88HH", now.Add(time.Second))
	c2.Name = "O. Ilunga"
	c2.GradeLevel = "10"

	_, err := db.Enroll.CreateCandidate(c1)
	assert.NoError(t, err)
	_, err = db.Enroll.CreateCandidate(c2)
	assert.NoError(t, err)

	// duplicate seat number
	dup := newTestCandidate("c58f5e0a-0003-4f2b-8f05-b7a3b1e0c007", c1.SeatNumber, "MEN55EE66FF", now.Add(2*time.Second))
	_, err = db.Enroll.CreateCandidate(dup)
	assert.Equal(t, enroll.ErrSeatNumberExists, err)

	got, err := db.Enroll.GetCandidateByID(c1.ID)
	assert.NoError(t, err)
	assert.Equal(t, c1.SeatNumber, got.SeatNumber)

	_, err = db.Enroll.GetCandidateByID("nope")
	assert.Equal(t, enroll.ErrCandidateNotFound, err)

	ok, err := db.Enroll.SeatNumberExists("202600001")
	assert.NoError(t, err)
	assert.True(t, ok)
	ok, err = db.Enroll.SeatNumberExists("202699999")
	assert.NoError(t, err)
	assert.False(t, ok)

	// filters
	all, err := db.Enroll.FilterCandidates(enroll.CandidateFilter{})
	assert.NoError(t, err)
	if assert.Len(t, all, 2) {
		assert.Equal(t, c2.ID, all[0].ID) // most recent first
	}

	byGrade, err := db.Enroll.FilterCandidates(enroll.CandidateFilter{GradeLevel: "10"})
	assert.NoError(t, err)
	if assert.Len(t, byGrade, 1) {
		assert.Equal(t, c2.ID, byGrade[0].ID)
	}

	byMentor, err := db.Enroll.FilterCandidates(enroll.CandidateFilter{MentorCode: "MEN55EE66FF"})
	assert.NoError(t, err)
	assert.Len(t, byMentor, 1)

	bySearch, err := db.Enroll.FilterCandidates(enroll.CandidateFilter{Search: "kabongo"})
	assert.NoError(t, err)
	assert.Len(t, bySearch, 1)

	// hall ticket flag
	got, err = db.Enroll.SetCandidateHallTicket(c1.ID, true)
	assert.NoError(t, err)
	assert.True(t, got.HallTicketIssued)

	issued := true
	withTicket, err := db.Enroll.FilterCandidates(enroll.CandidateFilter{HallTicketIssued: &issued})
	assert.NoError(t, err)
	if assert.Len(t, withTicket, 1) {
		assert.Equal(t, c1.ID, withTicket[0].ID)
	}

	_, err = db.Enroll.SetCandidateHallTicket("nope", true)
	assert.Equal(t, enroll.ErrCandidateNotFound, err)

	n, err := db.Enroll.CountCandidates()
	assert.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func testFiles(t *testing.T, db Adapters) {
	content := strings.Repeat("jpegjpeg", 64)

	f, err := db.Files.SaveFile("photo.jpg", "image/jpeg", strings.NewReader(content))
	assert.NoError(t, err)
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, int64(len(content)), f.Size)
	assert.Equal(t, "image/jpeg", f.ContentType)

	got, rc, err := db.Files.OpenFile(f.ID)
	assert.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	read := make([]byte, len(content))
	n, _ := io.ReadFull(rc, read)
	assert.Equal(t, len(content), n)
	assert.Equal(t, content, string(read))
	assert.NoError(t, rc.Close())

	assert.NoError(t, db.Files.DeleteFile(f.ID))
	_, _, err = db.Files.OpenFile(f.ID)
	assert.Error(t, err)
}
