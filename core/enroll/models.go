package enroll

import (
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sayansi/core"
)

// GradeLevels a candidate can compete in.
var GradeLevels = []string{"5", "6", "7", "8", "9", "10", "11", "12"}

type Address struct {
	Street string `json:"street" validate:"required,min=3"`
	City   string `json:"city" validate:"required,min=2"`
	State  string `json:"state" validate:"required,min=2"`
	PIN    string `json:"pin" validate:"required,pincode"`
}

func (a *Address) clean() {
	a.Street = core.CleanString(a.Street)
	a.City = core.CleanString(a.City)
	a.State = core.CleanString(a.State)
	a.PIN = core.CleanString(a.PIN)
}

// School is a participating school, keyed by its issued code.
type School struct {
	Code             string    `json:"code"` // "SCH" + random suffix
	Name             string    `json:"name"`
	Address          Address   `json:"address"`
	Contact          string    `json:"contact"`
	PrincipalName    string    `json:"principal_name"`
	PrincipalContact string    `json:"principal_contact"`
	Email            string    `json:"email"`
	CreatedAt        time.Time `json:"created_at"` // UTC
}

// NewSchool contains information needed to register a School.
type NewSchool struct {
	Name             string  `json:"name" validate:"required,min=3"`
	Address          Address `json:"address"`
	Contact          string  `json:"contact" validate:"required,phone"`
	PrincipalName    string  `json:"principal_name" validate:"required,min=2"`
	PrincipalContact string  `json:"principal_contact" validate:"required,phone"`
	Email            string  `json:"email" validate:"omitempty,email"`
}

func (ns *NewSchool) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Address.clean()
	ns.Contact = core.CleanString(ns.Contact)
	ns.PrincipalName = core.CleanString(ns.PrincipalName)
	ns.PrincipalContact = core.CleanString(ns.PrincipalContact)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

// Mentor is a registered mentor, keyed by its issued code and
// referencing the School that issued their invitation.
type Mentor struct {
	Code          string    `json:"code"` // "MEN" + random suffix
	SchoolCode    string    `json:"school_code"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Contact       string    `json:"contact"`
	Qualification string    `json:"qualification"`
	Experience    string    `json:"experience"`
	Subject       string    `json:"subject"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// NewMentor contains information needed to register a Mentor.
type NewMentor struct {
	SchoolCode    string `json:"school_code" validate:"required,schoolcode"`
	Name          string `json:"name" validate:"required,min=2"`
	Email         string `json:"email" validate:"omitempty,email"`
	Contact       string `json:"contact" validate:"required,phone"`
	Qualification string `json:"qualification" validate:"required,min=2"`
	Experience    string `json:"experience" validate:"required"`
	Subject       string `json:"subject" validate:"required,min=2"`
}

func (nm *NewMentor) Validate(validate *validator.Validate) error {
	nm.SchoolCode = core.CleanString(nm.SchoolCode)
	nm.Name = core.CleanString(nm.Name)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Contact = core.CleanString(nm.Contact)
	nm.Qualification = core.CleanString(nm.Qualification)
	nm.Experience = core.CleanString(nm.Experience)
	nm.Subject = core.CleanString(nm.Subject)
	return validate.Struct(nm)
}

// Candidate is a registered exam candidate.
type Candidate struct {
	ID               string    `json:"id"`
	SeatNumber       string    `json:"seat_number"` // year + 5 random digits
	MentorCode       string    `json:"mentor_code"`
	Name             string    `json:"name"`
	DateOfBirth      string    `json:"date_of_birth"` // YYYY-MM-DD
	Gender           string    `json:"gender"`
	Email            string    `json:"email"`
	Contact          string    `json:"contact"`
	Address          Address   `json:"address"`
	GradeLevel       string    `json:"grade_level"`
	SchoolName       string    `json:"school_name"`
	PhotoID          string    `json:"photo_id"`
	SignatureID      string    `json:"signature_id"`
	HallTicketIssued bool      `json:"hall_ticket_issued"`
	CreatedAt        time.Time `json:"created_at"` // UTC
}

// Upload holds an inbound document before it hits the FileStore.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// NewCandidate contains information needed to register a Candidate.
// Photo and Signature are required and checked by struct-level validation.
type NewCandidate struct {
	MentorCode  string  `json:"mentor_code" validate:"required,mentorcode"`
	Name        string  `json:"name" validate:"required,min=2"`
	DateOfBirth string  `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender      string  `json:"gender" validate:"required,oneof=male female other"`
	Email       string  `json:"email" validate:"omitempty,email"`
	Contact     string  `json:"contact" validate:"required,phone"`
	Address     Address `json:"address"`
	GradeLevel  string  `json:"grade_level" validate:"required,candidategrade"`
	SchoolName  string  `json:"school_name" validate:"required,min=2"`

	Photo     *Upload `json:"-"`
	Signature *Upload `json:"-"`
}

func (nc *NewCandidate) Validate(validate *validator.Validate) error {
	nc.MentorCode = core.CleanString(nc.MentorCode)
	nc.Name = core.CleanString(nc.Name)
	nc.DateOfBirth = core.CleanString(nc.DateOfBirth)
	nc.Gender = core.CleanString(nc.Gender, true /* lower */)
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	nc.Contact = core.CleanString(nc.Contact)
	nc.Address.clean()
	nc.GradeLevel = core.CleanString(nc.GradeLevel)
	nc.SchoolName = core.CleanString(nc.SchoolName)
	return validate.Struct(nc)
}

// CandidateFilter applies AND operation on available fields.
// Search does a case-insensitive match on one of Candidate.Name, Candidate.SeatNumber or Candidate.Email.
type CandidateFilter struct {
	Search           string `query:"search"`
	GradeLevel       string `query:"grade_level"`
	MentorCode       string `query:"mentor_code"`
	HallTicketIssued *bool  `query:"hall_ticket_issued"`
}

func (f *CandidateFilter) IsEmpty() bool {
	return f.Search == "" && f.GradeLevel == "" && f.MentorCode == "" && f.HallTicketIssued == nil
}

func (f *CandidateFilter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.GradeLevel = core.CleanString(f.GradeLevel)
	f.MentorCode = core.CleanString(f.MentorCode)
}
