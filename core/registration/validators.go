package registration

import (
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sayansi/core"
)

var (
	examTypeTag  = "examtype"
	examTypeText = "exam type must be one of: mains, advance"

	examGradeTag  = "examgrade"
	examGradeText = "grade level must be between 5 and 12"
)

// InitValidators registers this package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(examTypeTag, inListValidation(ExamTypes))
	core.RegisterCustomTranslation(validate, translator, examTypeTag, examTypeText)

	_ = validate.RegisterValidation(examGradeTag, inListValidation(GradeLevels))
	core.RegisterCustomTranslation(validate, translator, examGradeTag, examGradeText)
}

// inListValidation checks that the field value is one of the allowed values.
func inListValidation(allowed []string) validator.Func {
	sorted := append([]string(nil), allowed...)
	sort.Strings(sorted)
	return func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		if idx := sort.SearchStrings(sorted, val); idx < len(sorted) {
			return sorted[idx] == val
		}
		return false
	}
}
