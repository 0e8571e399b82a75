package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/event"
)

type eventRepository struct {
	db    *eventTable
	users *userTable
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) *eventRepository {
	return &eventRepository{db: db.event, users: db.user}
}

func (repo *eventRepository) render(ev event.Event) event.Rendered {
	rendered := event.Rendered{Event: ev}
	if ev.SpeakerID != nil {
		repo.users.RLock()
		if usr, ok := repo.users.table[*ev.SpeakerID]; ok {
			rendered.Speaker = &event.Speaker{
				Name:        strings.TrimSpace(usr.FirstName + " " + usr.LastName),
				Designation: usr.Course,
				Institute:   usr.Institute,
				Avatar:      usr.PhotoURL,
			}
		}
		repo.users.RUnlock()
	}
	return rendered
}

func (repo *eventRepository) CreateEvent(_ context.Context, ev event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	ev.ID = repo.db.pkCount
	repo.db.table[ev.ID] = &ev
	return ev, nil
}

func (repo *eventRepository) GetEventBySlug(_ context.Context, slug string) (event.Rendered, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, ev := range repo.db.table {
		if ev.Slug == slug {
			return repo.render(*ev), nil
		}
	}
	return event.Rendered{}, event.ErrNotFound
}

func (repo *eventRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, ev := range repo.db.table {
		if ev.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (repo *eventRepository) QueryEvents(_ context.Context, p core.Pagination, ordering ...core.DBOrdering) ([]event.Rendered, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	matches := make([]event.Event, 0, len(repo.db.table))
	for _, ev := range repo.db.table {
		matches = append(matches, *ev)
	}

	field, asc := "date", false
	if len(ordering) > 0 {
		field, asc = ordering[0].Field, ordering[0].Ascending
	}
	sort.SliceStable(matches, func(i, j int) bool {
		var less bool
		switch field {
		case "title":
			less = matches[i].Title < matches[j].Title
		default:
			if matches[i].Date.Equal(matches[j].Date) {
				less = matches[i].ID < matches[j].ID
			} else {
				less = matches[i].Date.Before(matches[j].Date)
			}
		}
		if asc {
			return less
		}
		return !less
	})

	count := len(matches)
	lo := p.Offset()
	if lo > count {
		lo = count
	}
	hi := lo + p.Limit()
	if hi > count {
		hi = count
	}

	events := make([]event.Rendered, 0, hi-lo)
	for _, ev := range matches[lo:hi] {
		events = append(events, repo.render(ev))
	}
	return events, count, nil
}

func (repo *eventRepository) DeleteEventBySlug(_ context.Context, slug string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, ev := range repo.db.table {
		if ev.Slug == slug {
			delete(repo.db.table, id)
			return nil
		}
	}
	return event.ErrNotFound
}
