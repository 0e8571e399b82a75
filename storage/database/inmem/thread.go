package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/thread"
	"github.com/trezcool/baraza/core/user"
)

type threadRepository struct {
	db    *threadTable
	users *userTable
}

var _ thread.Repository = (*threadRepository)(nil) // interface compliance check

func NewThreadRepository(db *DB) *threadRepository {
	return &threadRepository{db: db.thread, users: db.user}
}

func (repo *threadRepository) query() []thread.Thread {
	threads := make([]thread.Thread, 0, len(repo.db.table))
	for _, th := range repo.db.table {
		threads = append(threads, *th)
	}
	return threads
}

// summarize builds a Summary under the thread table's read lock.
func (repo *threadRepository) summarize(th thread.Thread) thread.Summary {
	replyCount := 0
	for _, other := range repo.db.table {
		if other.ParentID != nil && *other.ParentID == th.ID {
			replyCount++
		}
	}

	var author user.PublicInfo
	repo.users.RLock()
	if usr, ok := repo.users.table[th.UserID]; ok {
		author = usr.Public()
	} else {
		author = user.PublicInfo{UID: th.UserID}
	}
	repo.users.RUnlock()

	return thread.Summary{Thread: th, User: author, ReplyCount: replyCount}
}

func (repo *threadRepository) CreateThread(_ context.Context, th thread.Thread) (thread.Thread, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	th.ID = repo.db.pkCount
	repo.db.table[th.ID] = &th
	return th, nil
}

func (repo *threadRepository) GetThreadByID(_ context.Context, id int) (thread.Thread, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if th, ok := repo.db.table[id]; ok {
		return *th, nil
	}
	return thread.Thread{}, thread.ErrNotFound
}

func (repo *threadRepository) GetSummary(_ context.Context, id int) (thread.Summary, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	th, ok := repo.db.table[id]
	if !ok {
		return thread.Summary{}, thread.ErrNotFound
	}
	return repo.summarize(*th), nil
}

func (repo *threadRepository) QueryThreads(_ context.Context, filter thread.Filter, p core.Pagination, ordering ...core.DBOrdering) ([]thread.Summary, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var matches []thread.Thread
	for _, th := range repo.query() {
		if filter.RootsOnly && !th.IsRoot() {
			continue
		}
		if filter.ParentID != nil && (th.ParentID == nil || *th.ParentID != *filter.ParentID) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(th.Subject, filter.Category) {
			continue
		}
		if filter.Search != "" && !repo.matchesSearch(th, filter.Search) {
			continue
		}
		matches = append(matches, th)
	}

	sortThreads(matches, ordering)
	count := len(matches)

	// page slice
	lo := p.Offset()
	if lo > count {
		lo = count
	}
	hi := lo + p.Limit()
	if hi > count {
		hi = count
	}

	summaries := make([]thread.Summary, 0, hi-lo)
	for _, th := range matches[lo:hi] {
		summaries = append(summaries, repo.summarize(th))
	}
	return summaries, count, nil
}

func (repo *threadRepository) QueryReplies(_ context.Context, parentID int) ([]thread.Summary, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var replies []thread.Thread
	for _, th := range repo.query() {
		if th.ParentID != nil && *th.ParentID == parentID {
			replies = append(replies, th)
		}
	}
	sortThreads(replies, []core.DBOrdering{{Field: "created_at", Ascending: true}})

	summaries := make([]thread.Summary, 0, len(replies))
	for _, th := range replies {
		summaries = append(summaries, repo.summarize(th))
	}
	return summaries, nil
}

func (repo *threadRepository) DeleteThreadTree(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return thread.ErrNotFound
	}

	// collect the subtree breadth-first, then drop it all at once
	doomed := []int{id}
	for i := 0; i < len(doomed); i++ {
		for _, th := range repo.db.table {
			if th.ParentID != nil && *th.ParentID == doomed[i] {
				doomed = append(doomed, th.ID)
			}
		}
	}
	for _, tid := range doomed {
		delete(repo.db.table, tid)
	}
	return nil
}

func (repo *threadRepository) matchesSearch(th thread.Thread, search string) bool {
	kw := strings.ToLower(search)
	if strings.Contains(strings.ToLower(th.Title), kw) || strings.Contains(strings.ToLower(th.Content), kw) {
		return true
	}
	repo.users.RLock()
	defer repo.users.RUnlock()
	if usr, ok := repo.users.table[th.UserID]; ok {
		return strings.Contains(strings.ToLower(usr.FirstName), kw) ||
			strings.Contains(strings.ToLower(usr.LastName), kw)
	}
	return false
}

func sortThreads(threads []thread.Thread, ordering []core.DBOrdering) {
	field, asc := "created_at", false
	if len(ordering) > 0 {
		field, asc = ordering[0].Field, ordering[0].Ascending
	}
	sort.SliceStable(threads, func(i, j int) bool {
		var less bool
		switch field {
		case "id":
			less = threads[i].ID < threads[j].ID
		default:
			if threads[i].CreatedAt.Equal(threads[j].CreatedAt) {
				less = threads[i].ID < threads[j].ID
			} else {
				less = threads[i].CreatedAt.Before(threads[j].CreatedAt)
			}
		}
		if asc {
			return less
		}
		return !less
	})
}
