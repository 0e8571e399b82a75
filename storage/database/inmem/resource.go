package inmem

import (
	"context"
	"sort"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/resource"
)

type resourceRepository struct {
	db *resourceTable
}

var _ resource.Repository = (*resourceRepository)(nil) // interface compliance check

func NewResourceRepository(db *DB) *resourceRepository {
	return &resourceRepository{db: db.resource}
}

func (repo *resourceRepository) CreateResource(_ context.Context, res resource.Resource) (resource.Resource, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	res.ID = repo.db.pkCount
	repo.db.table[res.ID] = &res
	return res, nil
}

func (repo *resourceRepository) GetResourceByID(_ context.Context, id int) (resource.Resource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if res, ok := repo.db.table[id]; ok {
		return *res, nil
	}
	return resource.Resource{}, resource.ErrNotFound
}

func (repo *resourceRepository) QueryResources(_ context.Context, p core.Pagination, ordering ...core.DBOrdering) ([]resource.Resource, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	matches := make([]resource.Resource, 0, len(repo.db.table))
	for _, res := range repo.db.table {
		matches = append(matches, *res)
	}

	field, asc := "date", false
	if len(ordering) > 0 {
		field, asc = ordering[0].Field, ordering[0].Ascending
	}
	sort.SliceStable(matches, func(i, j int) bool {
		var less bool
		switch field {
		case "downloads":
			less = matches[i].Downloads < matches[j].Downloads
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
	return matches[lo:hi], count, nil
}

func (repo *resourceRepository) DeleteResourceByID(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return resource.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
