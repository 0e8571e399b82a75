package blog

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/user"
)

var ErrNotFound = errors.New("blog not found")

type (
	Repository interface {
		CreateBlog(ctx context.Context, b Blog) (Blog, error)
		GetBlogBySlug(ctx context.Context, slug string) (Rendered, error)
		SlugExists(ctx context.Context, slug string) (bool, error)
		QueryBlogs(ctx context.Context, filter Filter, p core.Pagination, ordering ...core.DBOrdering) ([]Rendered, int, error)
		UpdateBlog(ctx context.Context, b Blog) (Blog, error)
		DeleteBlogBySlug(ctx context.Context, slug string) error
	}

	Service struct {
		repo Repository
		conf *core.Config
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, conf: conf}
}

func (svc *Service) Create(ctx context.Context, author user.User, nb NewBlog) (Rendered, error) {
	category := nb.Category
	if category == "" {
		category = DefaultCategory
	}
	tags := nb.Tags
	if tags == nil {
		tags = []string{}
	}

	slug, err := svc.uniqueSlug(ctx, nb.Title)
	if err != nil {
		return Rendered{}, errors.Wrap(err, "generating slug")
	}

	authorID := author.ID
	b := Blog{
		Title:       nb.Title,
		Slug:        slug,
		AuthorID:    &authorID,
		Category:    category,
		Tags:        tags,
		Excerpt:     nb.Excerpt,
		Content:     nb.Content,
		CoverImage:  nb.CoverImage,
		PublishedAt: time.Now().UTC(),
		ReadTime:    nb.ReadTime,
		Featured:    nb.Featured,
		IsPremium:   nb.IsPremium,
	}
	b, err = svc.repo.CreateBlog(ctx, b)
	if err != nil {
		return Rendered{}, errors.Wrap(err, "creating blog")
	}
	pub := author.Public()
	return Rendered{Blog: b, Author: &pub}, nil
}

func (svc *Service) GetBySlug(ctx context.Context, slug string) (Rendered, error) {
	return svc.repo.GetBlogBySlug(ctx, slug)
}

func (svc *Service) Query(ctx context.Context, filter Filter, p core.Pagination, ordering ...core.DBOrdering) ([]Rendered, int, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "published_at", Ascending: false}}
	}
	p = p.Clean(svc.conf.Server.PageSize, svc.conf.Server.MaxPageSize)
	return svc.repo.QueryBlogs(ctx, filter, p, ordering...)
}

func (svc *Service) Update(ctx context.Context, slug string, ub UpdateBlog) (Rendered, error) {
	cur, err := svc.repo.GetBlogBySlug(ctx, slug)
	if err != nil {
		return Rendered{}, err
	}

	b := cur.Blog
	if ub.Title != "" {
		b.Title = ub.Title
	}
	if ub.Category != "" {
		b.Category = ub.Category
	}
	if ub.Tags != nil {
		b.Tags = ub.Tags
	}
	if ub.Excerpt != "" {
		b.Excerpt = ub.Excerpt
	}
	if ub.Content != "" {
		b.Content = ub.Content
	}
	if ub.CoverImage != "" {
		b.CoverImage = ub.CoverImage
	}
	if ub.ReadTime != nil {
		b.ReadTime = *ub.ReadTime
	}
	if ub.Featured != nil {
		b.Featured = *ub.Featured
	}
	if ub.IsPremium != nil {
		b.IsPremium = *ub.IsPremium
	}

	b, err = svc.repo.UpdateBlog(ctx, b)
	if err != nil {
		return Rendered{}, errors.Wrap(err, "updating blog")
	}
	cur.Blog = b
	return cur, nil
}

func (svc *Service) Delete(ctx context.Context, slug string) error {
	return svc.repo.DeleteBlogBySlug(ctx, slug)
}

// uniqueSlug slugifies the title, suffixing -1, -2, ... until unused.
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
