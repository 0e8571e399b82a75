package sqlxrepos

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/event"
)

type eventRepository struct {
	db *sqlx.DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB) *eventRepository {
	return &eventRepository{db: db}
}

type eventRow struct {
	ID                  int         `db:"id"`
	Title               string      `db:"title"`
	Type                string      `db:"type"`
	Slug                string      `db:"slug"`
	Date                time.Time   `db:"date"`
	Time                string      `db:"time"`
	Venue               string      `db:"venue"`
	Image               null.String `db:"image"`
	Thumbnail           null.String `db:"thumbnail"`
	Mode                null.String `db:"mode"`
	Tags                []byte      `db:"tags"`
	SpeakerID           null.Int    `db:"speaker_id"`
	Description         string      `db:"description"`
	RegistrationLink    null.String `db:"registration_link"`
	MaxParticipants     null.Int    `db:"max_participants"`
	CurrentParticipants int         `db:"current_participants"`
	IsPast              bool        `db:"is_past"`
}

type eventRenderedRow struct {
	eventRow
	SpeakerFirstName null.String `db:"speaker_first_name"`
	SpeakerLastName  null.String `db:"speaker_last_name"`
	SpeakerCourse    null.String `db:"speaker_course"`
	SpeakerInstitute null.String `db:"speaker_institute"`
	SpeakerPhotoURL  null.String `db:"speaker_photo_url"`
}

func (r eventRow) toEvent() (event.Event, error) {
	tags := []string{}
	if len(r.Tags) > 0 {
		if err := json.Unmarshal(r.Tags, &tags); err != nil {
			return event.Event{}, errors.Wrap(err, "unmarshalling event tags")
		}
	}
	ev := event.Event{
		ID:                  r.ID,
		Title:               r.Title,
		Type:                r.Type,
		Slug:                r.Slug,
		Date:                r.Date,
		Time:                r.Time,
		Venue:               r.Venue,
		Image:               r.Image.String,
		Thumbnail:           r.Thumbnail.String,
		Mode:                r.Mode.String,
		Tags:                tags,
		Description:         r.Description,
		RegistrationLink:    r.RegistrationLink.String,
		CurrentParticipants: r.CurrentParticipants,
		IsPast:              r.IsPast,
	}
	if r.SpeakerID.Valid {
		sid := int(r.SpeakerID.Int)
		ev.SpeakerID = &sid
	}
	if r.MaxParticipants.Valid {
		mp := int(r.MaxParticipants.Int)
		ev.MaxParticipants = &mp
	}
	return ev, nil
}

func (r eventRenderedRow) toRendered() (event.Rendered, error) {
	ev, err := r.toEvent()
	if err != nil {
		return event.Rendered{}, err
	}
	rendered := event.Rendered{Event: ev}
	if r.SpeakerID.Valid {
		rendered.Speaker = &event.Speaker{
			Name:        strings.TrimSpace(r.SpeakerFirstName.String + " " + r.SpeakerLastName.String),
			Designation: r.SpeakerCourse.String,
			Institute:   r.SpeakerInstitute.String,
			Avatar:      r.SpeakerPhotoURL.String,
		}
	}
	return rendered, nil
}

const eventSelect = `
	SELECT e.id, e.title, e.type, e.slug, e.date, e.time, e.venue, e.image, e.thumbnail, e.mode, e.tags,
	       e.speaker_id, e.description, e.registration_link, e.max_participants, e.current_participants, e.is_past,
	       u.first_name AS speaker_first_name, u.last_name AS speaker_last_name,
	       u.course AS speaker_course, u.institute AS speaker_institute, u.photo_url AS speaker_photo_url
	FROM event e
	         LEFT JOIN "user" u ON u.id = e.speaker_id`

func (repo eventRepository) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	tags, err := json.Marshal(ev.Tags)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "marshalling event tags")
	}
	query := `
		INSERT INTO event (title, type, slug, date, time, venue, image, thumbnail, mode, tags,
			speaker_id, description, registration_link, max_participants, current_participants, is_past)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`
	err = repo.db.QueryRowxContext(
		ctx, query,
		ev.Title,
		ev.Type,
		ev.Slug,
		ev.Date,
		ev.Time,
		ev.Venue,
		null.NewString(ev.Image, ev.Image != ""),
		null.NewString(ev.Thumbnail, ev.Thumbnail != ""),
		null.NewString(ev.Mode, ev.Mode != ""),
		tags,
		null.IntFromPtr(ev.SpeakerID),
		ev.Description,
		null.NewString(ev.RegistrationLink, ev.RegistrationLink != ""),
		null.IntFromPtr(ev.MaxParticipants),
		ev.CurrentParticipants,
		ev.IsPast,
	).Scan(&ev.ID)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return ev, nil
}

func (repo eventRepository) GetEventBySlug(ctx context.Context, slug string) (event.Rendered, error) {
	var row eventRenderedRow
	if err := repo.db.GetContext(ctx, &row, eventSelect+` WHERE e.slug = $1`, slug); err != nil {
		return event.Rendered{}, trapNoRowsErr(err, event.ErrNotFound, "getting event by slug")
	}
	return row.toRendered()
}

func (repo eventRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM event WHERE slug = $1)`
	if err := repo.db.GetContext(ctx, &exists, query, slug); err != nil {
		return false, errors.Wrap(err, "checking event slug")
	}
	return exists, nil
}

func (repo eventRepository) QueryEvents(ctx context.Context, p core.Pagination, ordering ...core.DBOrdering) ([]event.Rendered, int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM event`); err != nil {
		return nil, 0, errors.Wrap(err, "counting events")
	}

	allowed := map[string]string{"date": "e.date, e.id", "title": "e.title"}
	query := eventSelect + orderBy(ordering, allowed, "e.date DESC, e.id DESC") + limitOffset(p)

	var rows []eventRenderedRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, 0, errors.Wrap(err, "querying events")
	}
	events := make([]event.Rendered, 0, len(rows))
	for _, r := range rows {
		rendered, err := r.toRendered()
		if err != nil {
			return nil, 0, err
		}
		events = append(events, rendered)
	}
	return events, count, nil
}

func (repo eventRepository) DeleteEventBySlug(ctx context.Context, slug string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM event WHERE slug = $1`, slug)
	if err != nil {
		return errors.Wrap(err, "deleting event")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return event.ErrNotFound
	}
	return nil
}
