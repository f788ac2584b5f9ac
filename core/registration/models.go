package registration

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sayansi/core"
)

// Exam types
const (
	ExamMains   = "mains"
	ExamAdvance = "advance"
)

// Payment statuses
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

var (
	ExamTypes   = []string{ExamMains, ExamAdvance}
	GradeLevels = []string{"5", "6", "7", "8", "9", "10", "11", "12"}
)

type Registration struct {
	ID            string    `json:"id"`
	StudentName   string    `json:"student_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	GradeLevel    string    `json:"grade_level"`
	SchoolName    string    `json:"school_name"`
	ParentName    string    `json:"parent_name"`
	ParentPhone   string    `json:"parent_phone"`
	Address       string    `json:"address"`
	ExamType      string    `json:"exam_type"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// NewRegistration contains information needed to register a student for an exam.
type NewRegistration struct {
	StudentName string `json:"student_name" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,phone"`
	GradeLevel  string `json:"grade_level" validate:"required,examgrade"`
	SchoolName  string `json:"school_name" validate:"required,min=2"`
	ParentName  string `json:"parent_name" validate:"required,min=2"`
	ParentPhone string `json:"parent_phone" validate:"required,phone"`
	Address     string `json:"address" validate:"required,min=10"`
	ExamType    string `json:"exam_type" validate:"required,examtype"`
}

func (nr *NewRegistration) Validate(validate *validator.Validate) error {
	nr.StudentName = core.CleanString(nr.StudentName)
	nr.Email = core.CleanString(nr.Email, true /* lower */)
	nr.Phone = core.CleanString(nr.Phone)
	nr.GradeLevel = core.CleanString(nr.GradeLevel)
	nr.SchoolName = core.CleanString(nr.SchoolName)
	nr.ParentName = core.CleanString(nr.ParentName)
	nr.ParentPhone = core.CleanString(nr.ParentPhone)
	nr.Address = core.CleanString(nr.Address)
	nr.ExamType = core.CleanString(nr.ExamType, true /* lower */)
	return validate.Struct(nr)
}
