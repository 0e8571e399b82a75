package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/blog"
)

type blogRepository struct {
	db    *blogTable
	users *userTable
}

var _ blog.Repository = (*blogRepository)(nil) // interface compliance check

func NewBlogRepository(db *DB) *blogRepository {
	return &blogRepository{db: db.blog, users: db.user}
}

func (repo *blogRepository) render(b blog.Blog) blog.Rendered {
	rendered := blog.Rendered{Blog: b}
	if b.AuthorID != nil {
		repo.users.RLock()
		if usr, ok := repo.users.table[*b.AuthorID]; ok {
			pub := usr.Public()
			rendered.Author = &pub
		}
		repo.users.RUnlock()
	}
	return rendered
}

func (repo *blogRepository) CreateBlog(_ context.Context, b blog.Blog) (blog.Blog, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	b.ID = repo.db.pkCount
	repo.db.table[b.ID] = &b
	return b, nil
}

func (repo *blogRepository) GetBlogBySlug(_ context.Context, slug string) (blog.Rendered, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, b := range repo.db.table {
		if b.Slug == slug {
			return repo.render(*b), nil
		}
	}
	return blog.Rendered{}, blog.ErrNotFound
}

func (repo *blogRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, b := range repo.db.table {
		if b.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (repo *blogRepository) QueryBlogs(_ context.Context, filter blog.Filter, p core.Pagination, ordering ...core.DBOrdering) ([]blog.Rendered, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var matches []blog.Blog
	for _, b := range repo.db.table {
		if filter.Category != "" && !strings.EqualFold(b.Category, filter.Category) {
			continue
		}
		if filter.Featured != nil && b.Featured != *filter.Featured {
			continue
		}
		if filter.IsPremium != nil && b.IsPremium != *filter.IsPremium {
			continue
		}
		if filter.Title != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.Title)) {
			continue
		}
		if filter.MinReadTime != nil && b.ReadTime < *filter.MinReadTime {
			continue
		}
		if filter.MaxReadTime != nil && b.ReadTime > *filter.MaxReadTime {
			continue
		}
		if filter.Search != "" {
			kw := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(b.Title), kw) &&
				!strings.Contains(strings.ToLower(b.Excerpt), kw) &&
				!strings.Contains(strings.ToLower(b.Content), kw) {
				continue
			}
		}
		matches = append(matches, *b)
	}

	field, asc := "published_at", false
	if len(ordering) > 0 {
		field, asc = ordering[0].Field, ordering[0].Ascending
	}
	sort.SliceStable(matches, func(i, j int) bool {
		var less bool
		switch field {
		case "views":
			less = matches[i].Views < matches[j].Views
		case "likes":
			less = matches[i].Likes < matches[j].Likes
		case "read_time":
			less = matches[i].ReadTime < matches[j].ReadTime
		default:
			if matches[i].PublishedAt.Equal(matches[j].PublishedAt) {
				less = matches[i].ID < matches[j].ID
			} else {
				less = matches[i].PublishedAt.Before(matches[j].PublishedAt)
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

	blogs := make([]blog.Rendered, 0, hi-lo)
	for _, b := range matches[lo:hi] {
		blogs = append(blogs, repo.render(b))
	}
	return blogs, count, nil
}

func (repo *blogRepository) UpdateBlog(_ context.Context, b blog.Blog) (blog.Blog, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[b.ID]; !ok {
		return blog.Blog{}, blog.ErrNotFound
	}
	repo.db.table[b.ID] = &b
	return b, nil
}

func (repo *blogRepository) DeleteBlogBySlug(_ context.Context, slug string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, b := range repo.db.table {
		if b.Slug == slug {
			delete(repo.db.table, id)
			return nil
		}
	}
	return blog.ErrNotFound
}
