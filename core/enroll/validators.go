package enroll

import (
	"regexp"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sayansi/core"
)

var (
	schoolCodeTag   = "schoolcode"
	schoolCodeText  = "a valid school code is required (e.g. SCH4F7Q09ZK)"
	schoolCodeRegex = regexp.MustCompile(`^SCH[0-9A-Z]{8}$`)

	mentorCodeTag   = "mentorcode"
	mentorCodeText  = "a valid mentor code is required (e.g. MEN4F7Q09ZK)"
	mentorCodeRegex = regexp.MustCompile(`^MEN[0-9A-Z]{8}$`)

	candidateGradeTag  = "candidategrade"
	candidateGradeText = "grade level must be between 5 and 12"

	photoRequiredTag      = "photorequired"
	photoRequiredText     = "a photo is required"
	signatureRequiredTag  = "sigrequired"
	signatureRequiredText = "a signature is required"

	docTypeTag  = "doctype"
	docTypeText = "uploaded documents must be JPEG or PNG images"

	allowedDocTypes = []string{"image/jpeg", "image/png"}
)

// InitValidators registers this package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(schoolCodeTag, regexValidation(schoolCodeRegex))
	core.RegisterCustomTranslation(validate, translator, schoolCodeTag, schoolCodeText)

	_ = validate.RegisterValidation(mentorCodeTag, regexValidation(mentorCodeRegex))
	core.RegisterCustomTranslation(validate, translator, mentorCodeTag, mentorCodeText)

	_ = validate.RegisterValidation(candidateGradeTag, gradeValidation())
	core.RegisterCustomTranslation(validate, translator, candidateGradeTag, candidateGradeText)

	validate.RegisterStructValidation(candidateStructValidation, NewCandidate{})
	core.RegisterCustomTranslation(validate, translator, photoRequiredTag, photoRequiredText)
	core.RegisterCustomTranslation(validate, translator, signatureRequiredTag, signatureRequiredText)
	core.RegisterCustomTranslation(validate, translator, docTypeTag, docTypeText)
}

func regexValidation(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// gradeValidation checks that the provided grade level is in GradeLevels.
func gradeValidation() validator.Func {
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

// candidateStructValidation checks the required uploads on NewCandidate.
func candidateStructValidation(sl validator.StructLevel) {
	nc, ok := sl.Current().Interface().(NewCandidate)
	if !ok {
		return
	}
	if nc.Photo == nil {
		sl.ReportError(nc.Photo, "photo", "Photo", photoRequiredTag, "")
	} else if !isAllowedDocType(nc.Photo.ContentType) {
		sl.ReportError(nc.Photo, "photo", "Photo", docTypeTag, "")
	}
	if nc.Signature == nil {
		sl.ReportError(nc.Signature, "signature", "Signature", signatureRequiredTag, "")
	} else if !isAllowedDocType(nc.Signature.ContentType) {
		sl.ReportError(nc.Signature, "signature", "Signature", docTypeTag, "")
	}
}

func isAllowedDocType(ct string) bool {
	for _, t := range allowedDocTypes {
		if t == ct {
			return true
		}
	}
	return false
}
