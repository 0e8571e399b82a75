package blog

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/baraza/core"
)

var (
	categoryTag  = "blogcategory"
	categoryText = "invalid category"
)

// InitValidators registers the blog package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)
}

func categoryValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, c := range Categories {
		if strings.EqualFold(c, val) {
			return true
		}
	}
	return false
}
