package thread

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/user"
)

// Palette is the fixed set of theme colors a Thread may carry.
// Threads created without a color get one picked uniformly at random.
const (
	ColorIndigo  = "#6366F1"
	ColorEmerald = "#10B981"
	ColorRose    = "#F43F5E"
	ColorAmber   = "#F59E0B"
	ColorSky     = "#0EA5E9"
	ColorSlate   = "#64748B"
)

type Color struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var Palette = []Color{
	{Value: ColorIndigo, Label: "Indigo"},
	{Value: ColorEmerald, Label: "Emerald"},
	{Value: ColorRose, Label: "Rose"},
	{Value: ColorAmber, Label: "Amber"},
	{Value: ColorSky, Label: "Sky"},
	{Value: ColorSlate, Label: "Slate"},
}

// Subjects a thread may be tagged with; mirrors the content categories.
var Subjects = []string{
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

// Thread is a discussion topic (ParentID == nil) or a reply to another
// Thread (ParentID set). Children form an adjacency-list tree on ParentID.
type Thread struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    int       `json:"-"`
	ParentID  *int      `json:"parent_thread"`
	Color     string    `json:"color"`
	Subject   string    `json:"subject,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (t *Thread) IsRoot() bool {
	return t.ParentID == nil
}

// Summary is the listing projection of a Thread: the thread itself, its
// author's public info and the count of its direct replies.
type Summary struct {
	Thread
	User       user.PublicInfo `json:"user"`
	ReplyCount int             `json:"reply_count"`
}

// Detail adds the direct replies, oldest first. Replies of replies are not
// inlined; clients fetch a reply's own detail to expand further.
type Detail struct {
	Summary
	Replies []Summary `json:"replies"`
}

// NewThread contains information needed to create a new Thread.
// The author is never taken from the payload; it is forced from the
// authenticated principal.
type NewThread struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	ParentID *int   `json:"parent_thread"`
	Color    string `json:"color" validate:"omitempty,threadcolor"`
	Subject  string `json:"subject" validate:"omitempty,threadsubject"`
}

func (nt *NewThread) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Content = core.CleanString(nt.Content)
	nt.Color = core.CleanString(nt.Color)
	nt.Subject = core.CleanString(nt.Subject)
	return validate.Struct(nt)
}

// Filter narrows a thread listing. RootsOnly and ParentID are mutually
// exclusive; Category does a case-insensitive exact match on Subject.
type Filter struct {
	RootsOnly bool
	ParentID  *int
	Category  string
	Search    string
}
