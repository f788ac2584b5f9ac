package contact

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sayansi/core"
)

// GradeLevels a visitor can pick on the contact form.
var GradeLevels = []string{"5", "6", "7", "8", "9", "10", "11", "12", "other"}

type Contact struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	GradeLevel string    `json:"grade_level"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// NewContact contains information needed to record a new contact-form submission.
type NewContact struct {
	FirstName  string `json:"first_name" validate:"required,min=2"`
	LastName   string `json:"last_name" validate:"required,min=2"`
	Email      string `json:"email" validate:"required,email"`
	GradeLevel string `json:"grade_level" validate:"required,gradelevel"`
	Message    string `json:"message" validate:"required,min=10"`
}

func (nc *NewContact) Validate(validate *validator.Validate) error {
	nc.FirstName = core.CleanString(nc.FirstName)
	nc.LastName = core.CleanString(nc.LastName)
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	nc.GradeLevel = core.CleanString(nc.GradeLevel, true /* lower */)
	nc.Message = core.CleanString(nc.Message)
	return validate.Struct(nc)
}
