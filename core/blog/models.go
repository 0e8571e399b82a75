package blog

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/user"
)

// Categories a blog post may belong to.
var Categories = []string{
	"Physics",
	"Chemistry",
	"Biology",
	"Mathematics",
	"Earth Sciences",
	"Computer Science",
	"Interdisciplinary",
	"Data Science",
	"Other",
}

const DefaultCategory = "Other"

type Blog struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	AuthorID    *int      `json:"-"` // nulled when the author account is deleted
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	CoverImage  string    `json:"coverImage"`
	PublishedAt time.Time `json:"publishedAt"` // UTC
	ReadTime    int       `json:"readTime"`    // minutes
	Views       int       `json:"views"`
	Likes       int       `json:"likes"`
	Featured    bool      `json:"featured"`
	IsPremium   bool      `json:"is_premium"`
}

// Rendered is the API projection of a Blog with its author's public info.
type Rendered struct {
	Blog
	Author *user.PublicInfo `json:"author"`
}

type NewBlog struct {
	Title      string   `json:"title" validate:"required"`
	Category   string   `json:"category" validate:"omitempty,blogcategory"`
	Tags       []string `json:"tags"`
	Excerpt    string   `json:"excerpt" validate:"required,max=500"`
	Content    string   `json:"content" validate:"required"`
	CoverImage string   `json:"coverImage" validate:"omitempty,url"`
	ReadTime   int      `json:"readTime" validate:"required,min=1"`
	Featured   bool     `json:"featured"`
	IsPremium  bool     `json:"is_premium"`
}

func (nb *NewBlog) Validate(validate *validator.Validate) error {
	nb.Title = core.CleanString(nb.Title)
	nb.Category = core.CleanString(nb.Category)
	nb.Excerpt = core.CleanString(nb.Excerpt)
	return validate.Struct(nb)
}

type UpdateBlog struct {
	Title      string   `json:"title"`
	Category   string   `json:"category" validate:"omitempty,blogcategory"`
	Tags       []string `json:"tags"`
	Excerpt    string   `json:"excerpt" validate:"omitempty,max=500"`
	Content    string   `json:"content"`
	CoverImage string   `json:"coverImage" validate:"omitempty,url"`
	ReadTime   *int     `json:"readTime" validate:"omitempty,min=1"`
	Featured   *bool    `json:"featured"`
	IsPremium  *bool    `json:"is_premium"`
}

func (ub *UpdateBlog) Validate(validate *validator.Validate) error {
	ub.Title = core.CleanString(ub.Title)
	ub.Category = core.CleanString(ub.Category)
	ub.Excerpt = core.CleanString(ub.Excerpt)
	return validate.Struct(ub)
}

// Filter narrows a blog listing; fields AND together.
type Filter struct {
	Category    string `query:"category"`
	Featured    *bool  `query:"featured"`
	IsPremium   *bool  `query:"is_premium"`
	Title       string `query:"title"` // icontains
	MinReadTime *int   `query:"min_read_time"`
	MaxReadTime *int   `query:"max_read_time"`
	Search      string `query:"search"` // title, excerpt or content
}

func (f *Filter) Clean() {
	f.Category = core.CleanString(f.Category)
	f.Title = core.CleanString(f.Title)
	f.Search = core.CleanString(f.Search)
}
