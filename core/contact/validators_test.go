package contact

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sayansi/core"
)

func TestGradeLevelValidation(t *testing.T) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	declared := append([]string(nil), GradeLevels...)

	nc := NewContact{
		FirstName:  "Jane",
		LastName:   "Ilunga",
		Email:      "jane@test.cd",
		GradeLevel: "10",
		Message:    "When does registration open?",
	}
	if err := nc.Validate(validate); err != nil {
		t.Errorf("Validate() = %v; want nil", err)
	}

	nc.GradeLevel = "13"
	if err := nc.Validate(validate); err == nil {
		t.Error("Validate() = nil; want grade level error")
	}

	// validation must not reorder the shared slice
	for i, lvl := range declared {
		if GradeLevels[i] != lvl {
			t.Fatalf("GradeLevels = %v; want %v", GradeLevels, declared)
		}
	}
}
