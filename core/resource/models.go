package resource

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/baraza/core"
)

// Categories a resource may belong to.
var Categories = []string{"video", "article", "slides", "notes", "paper"}

const DefaultCategory = "article"

type Resource struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Date        time.Time `json:"date"`
	Author      string    `json:"author"` // display string, not a user reference
	Thumbnail   string    `json:"thumbnail"`
	Downloads   int       `json:"downloads"`
}

type NewResource struct {
	Title       string `json:"title" validate:"required"`
	Category    string `json:"category" validate:"omitempty,resourcecategory"`
	Description string `json:"description" validate:"required"`
	Link        string `json:"link" validate:"required,url"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Author      string `json:"author" validate:"required"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,url"`
}

func (nr *NewResource) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.Category = core.CleanString(nr.Category, true /* lower */)
	nr.Author = core.CleanString(nr.Author)
	return validate.Struct(nr)
}

var (
	categoryTag  = "resourcecategory"
	categoryText = "invalid category"
)

// InitValidators registers the resource package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)
}

func categoryValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, c := range Categories {
		if c == val {
			return true
		}
	}
	return false
}
