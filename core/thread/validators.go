package thread

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/baraza/core"
)

var (
	colorTag  = "threadcolor"
	colorText = "color must be one of the theme palette values"

	subjectTag  = "threadsubject"
	subjectText = "invalid subject"
)

// InitValidators registers the thread package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(colorTag, colorValidation)
	core.RegisterCustomTranslation(validate, translator, colorTag, colorText)

	_ = validate.RegisterValidation(subjectTag, subjectValidation)
	core.RegisterCustomTranslation(validate, translator, subjectTag, subjectText)
}

// colorValidation checks that the provided color is in the Palette.
func colorValidation(fl validator.FieldLevel) bool {
	val := strings.ToUpper(fl.Field().String())
	for _, c := range Palette {
		if c.Value == val {
			return true
		}
	}
	return false
}

// subjectValidation does a case-insensitive match against Subjects.
func subjectValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, s := range Subjects {
		if strings.EqualFold(s, val) {
			return true
		}
	}
	return false
}
