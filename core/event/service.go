package event

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/baraza/core"
)

var ErrNotFound = errors.New("event not found")

type (
	Repository interface {
		CreateEvent(ctx context.Context, ev Event) (Event, error)
		GetEventBySlug(ctx context.Context, slug string) (Rendered, error)
		SlugExists(ctx context.Context, slug string) (bool, error)
		QueryEvents(ctx context.Context, p core.Pagination, ordering ...core.DBOrdering) ([]Rendered, int, error)
		DeleteEventBySlug(ctx context.Context, slug string) error
	}

	Service struct {
		repo Repository
		conf *core.Config
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, conf: conf}
}

func (svc *Service) Create(ctx context.Context, ne NewEvent) (Rendered, error) {
	date, err := time.Parse("2006-01-02", ne.Date)
	if err != nil {
		return Rendered{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: "invalid date"})
	}

	typ := ne.Type
	if typ == "" {
		typ = DefaultType
	}
	tags := ne.Tags
	if tags == nil {
		tags = []string{}
	}

	slug, err := svc.uniqueSlug(ctx, ne.Title)
	if err != nil {
		return Rendered{}, errors.Wrap(err, "generating slug")
	}

	ev := Event{
		Title:            ne.Title,
		Type:             typ,
		Slug:             slug,
		Date:             date,
		Time:             ne.Time,
		Venue:            ne.Venue,
		Image:            ne.Image,
		Thumbnail:        ne.Thumbnail,
		Mode:             ne.Mode,
		Tags:             tags,
		SpeakerID:        ne.SpeakerID,
		Description:      ne.Description,
		RegistrationLink: ne.RegistrationLink,
		MaxParticipants:  ne.MaxParticipants,
		IsPast:           date.Before(time.Now().UTC().Truncate(24 * time.Hour)),
	}
	ev, err = svc.repo.CreateEvent(ctx, ev)
	if err != nil {
		return Rendered{}, errors.Wrap(err, "creating event")
	}
	return svc.repo.GetEventBySlug(ctx, ev.Slug)
}

func (svc *Service) GetBySlug(ctx context.Context, slug string) (Rendered, error) {
	return svc.repo.GetEventBySlug(ctx, slug)
}

// Query lists events newest first.
func (svc *Service) Query(ctx context.Context, p core.Pagination, ordering ...core.DBOrdering) ([]Rendered, int, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "date", Ascending: false}}
	}
	p = p.Clean(svc.conf.Server.PageSize, svc.conf.Server.MaxPageSize)
	return svc.repo.QueryEvents(ctx, p, ordering...)
}

func (svc *Service) Delete(ctx context.Context, slug string) error {
	return svc.repo.DeleteEventBySlug(ctx, slug)
}

func (svc *Service) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := core.Slugify(title)
	slug := base
	for counter := 1; ; counter++ {
		exists, err := svc.repo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
