package event

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/baraza/core"
)

// Event types
var Types = []string{"talk", "workshop", "project", "discussion", "seminar", "other"}

const DefaultType = "other"

// Event modes
var Modes = []string{"online", "offline", "hybrid"}

type Event struct {
	ID                  int       `json:"id"`
	Title               string    `json:"title"`
	Type                string    `json:"type"`
	Slug                string    `json:"slug"`
	Date                time.Time `json:"date"`
	Time                string    `json:"time"` // display time range, e.g. "14:00 - 16:00"
	Venue               string    `json:"venue"`
	Image               string    `json:"image"`
	Thumbnail           string    `json:"thumbnail"`
	Mode                string    `json:"mode"`
	Tags                []string  `json:"tags"`
	SpeakerID           *int      `json:"-"`
	Description         string    `json:"description"`
	RegistrationLink    string    `json:"registrationLink"`
	MaxParticipants     *int      `json:"maxParticipants"`
	CurrentParticipants int       `json:"currentParticipants"`
	IsPast              bool      `json:"isPast"`
}

// Speaker is the nested speaker projection on an Event response.
type Speaker struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Institute   string `json:"institute"`
	Avatar      string `json:"avatar"`
}

type Rendered struct {
	Event
	Speaker *Speaker `json:"speaker"`
}

type NewEvent struct {
	Title            string   `json:"title" validate:"required"`
	Type             string   `json:"type" validate:"omitempty,eventtype"`
	Date             string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time             string   `json:"time" validate:"required"`
	Venue            string   `json:"venue" validate:"required"`
	Image            string   `json:"image" validate:"omitempty,url"`
	Thumbnail        string   `json:"thumbnail" validate:"omitempty,url"`
	Mode             string   `json:"mode" validate:"omitempty,eventmode"`
	Tags             []string `json:"tags"`
	SpeakerID        *int     `json:"speaker_id"`
	Description      string   `json:"description" validate:"required"`
	RegistrationLink string   `json:"registrationLink" validate:"omitempty,url"`
	MaxParticipants  *int     `json:"maxParticipants" validate:"omitempty,min=1"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Type = core.CleanString(ne.Type, true /* lower */)
	ne.Mode = core.CleanString(ne.Mode, true /* lower */)
	ne.Venue = core.CleanString(ne.Venue)
	return validate.Struct(ne)
}
