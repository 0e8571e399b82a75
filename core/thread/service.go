package thread

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("thread not found")
	ErrParentNotFound = errors.New("parent thread not found")
)

type (
	Repository interface {
		CreateThread(ctx context.Context, th Thread) (Thread, error)
		GetThreadByID(ctx context.Context, id int) (Thread, error)
		// QueryThreads returns one page of summaries plus the total match count.
		// Root listings order by created_at DESC, reply listings by created_at
		// ASC; id breaks ties either way so pagination stays deterministic.
		QueryThreads(ctx context.Context, filter Filter, p core.Pagination, ordering ...core.DBOrdering) ([]Summary, int, error)
		// QueryReplies returns all direct children of a thread, oldest first.
		QueryReplies(ctx context.Context, parentID int) ([]Summary, error)
		GetSummary(ctx context.Context, id int) (Summary, error)
		// DeleteThreadTree removes a thread and all of its descendants
		// atomically: either the whole subtree goes or none of it does.
		DeleteThreadTree(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
		conf *core.Config
		rnd  *rand.Rand
	}
)

// NewService builds a thread Service. rnd drives the default color pick and
// is injectable for tests; it falls back to a time-seeded source.
func NewService(repo Repository, conf *core.Config, rnd *rand.Rand) *Service {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{repo: repo, conf: conf, rnd: rnd}
}

// ListRoots returns one page of root threads, newest first, optionally
// narrowed to a category and/or a search keyword.
func (svc *Service) ListRoots(ctx context.Context, p core.Pagination, category, search string, ordering ...core.DBOrdering) ([]Summary, int, error) {
	filter := Filter{
		RootsOnly: true,
		Category:  cleanCategory(category),
		Search:    core.CleanString(search),
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at", Ascending: false}}
	}
	return svc.repo.QueryThreads(ctx, filter, svc.clean(p), ordering...)
}

// ListByParent returns one page of direct replies to parentID, oldest first.
// A parentID that matches no thread yields an empty page, consistent with
// filter semantics.
func (svc *Service) ListByParent(ctx context.Context, parentID int, p core.Pagination, ordering ...core.DBOrdering) ([]Summary, int, error) {
	filter := Filter{ParentID: &parentID}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at", Ascending: true}}
	}
	return svc.repo.QueryThreads(ctx, filter, svc.clean(p), ordering...)
}

// GetDetail returns a thread with its direct replies expanded one level,
// oldest reply first.
func (svc *Service) GetDetail(ctx context.Context, id int) (Detail, error) {
	summary, err := svc.repo.GetSummary(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	replies, err := svc.repo.QueryReplies(ctx, id)
	if err != nil {
		return Detail{}, errors.Wrap(err, "querying replies")
	}
	if replies == nil {
		replies = []Summary{}
	}
	return Detail{Summary: summary, Replies: replies}, nil
}

// Create persists a new thread authored by usr. The parent, when given,
// must exist; the color defaults to a uniform random palette pick.
func (svc *Service) Create(ctx context.Context, usr user.User, nt NewThread) (Summary, error) {
	if nt.ParentID != nil {
		if _, err := svc.repo.GetThreadByID(ctx, *nt.ParentID); err != nil {
			if err == ErrNotFound {
				return Summary{}, ErrParentNotFound
			}
			return Summary{}, errors.Wrap(err, "checking parent thread")
		}
	}

	color := strings.ToUpper(nt.Color)
	if color == "" {
		color = svc.pickColor()
	}

	th := Thread{
		Title:     nt.Title,
		Content:   nt.Content,
		UserID:    usr.ID,
		ParentID:  nt.ParentID,
		Color:     color,
		Subject:   canonicalSubject(nt.Subject),
		CreatedAt: time.Now().UTC(),
	}
	th, err := svc.repo.CreateThread(ctx, th)
	if err != nil {
		return Summary{}, errors.Wrap(err, "creating thread")
	}
	return Summary{Thread: th, User: usr.Public()}, nil
}

// Delete removes the thread and its whole reply subtree.
func (svc *Service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetThreadByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteThreadTree(ctx, id)
}

func (svc *Service) Get(ctx context.Context, id int) (Thread, error) {
	return svc.repo.GetThreadByID(ctx, id)
}

func (svc *Service) clean(p core.Pagination) core.Pagination {
	return p.Clean(svc.conf.Server.PageSize, svc.conf.Server.MaxPageSize)
}

func (svc *Service) pickColor() string {
	return Palette[svc.rnd.Intn(len(Palette))].Value
}

// cleanCategory normalizes the category filter; "all" means no filter.
func cleanCategory(category string) string {
	category = core.CleanString(category)
	if strings.EqualFold(category, "all") {
		return ""
	}
	return category
}

// canonicalSubject maps a case-insensitive subject to its canonical casing.
func canonicalSubject(subject string) string {
	for _, s := range Subjects {
		if strings.EqualFold(s, subject) {
			return s
		}
	}
	return ""
}
