package contact

import (
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sayansi/core"
)

var (
	gradeLevelTag  = "gradelevel"
	gradeLevelText = "invalid grade level"
)

// InitValidators registers this package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(gradeLevelTag, gradeLevelValidation())
	core.RegisterCustomTranslation(validate, translator, gradeLevelTag, gradeLevelText)
}

// gradeLevelValidation checks that the provided grade level is in GradeLevels.
func gradeLevelValidation() validator.Func {
	sorted := append([]string(nil), GradeLevels...)
	sort.Strings(sorted)
	return func(fl validator.FieldLevel) bool {
		lvl := fl.Field().String()
		if idx := sort.SearchStrings(sorted, lvl); idx < len(sorted) {
			return sorted[idx] == lvl
		}
		return false
	}
}
