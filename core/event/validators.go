package event

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/baraza/core"
)

var (
	typeTag  = "eventtype"
	typeText = "invalid event type"

	modeTag  = "eventmode"
	modeText = "invalid event mode"
)

// InitValidators registers the event package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(typeTag, typeValidation)
	core.RegisterCustomTranslation(validate, translator, typeTag, typeText)

	_ = validate.RegisterValidation(modeTag, modeValidation)
	core.RegisterCustomTranslation(validate, translator, modeTag, modeText)
}

func typeValidation(fl validator.FieldLevel) bool {
	return contains(Types, fl.Field().String())
}

func modeValidation(fl validator.FieldLevel) bool {
	return contains(Modes, fl.Field().String())
}

func contains(vals []string, v string) bool {
	for _, val := range vals {
		if val == v {
			return true
		}
	}
	return false
}
