package resource

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/baraza/core"
)

var ErrNotFound = errors.New("resource not found")

type (
	Repository interface {
		CreateResource(ctx context.Context, res Resource) (Resource, error)
		GetResourceByID(ctx context.Context, id int) (Resource, error)
		QueryResources(ctx context.Context, p core.Pagination, ordering ...core.DBOrdering) ([]Resource, int, error)
		DeleteResourceByID(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
		conf *core.Config
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, conf: conf}
}

func (svc *Service) Create(ctx context.Context, nr NewResource) (Resource, error) {
	date, err := time.Parse("2006-01-02", nr.Date)
	if err != nil {
		return Resource{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: "invalid date"})
	}

	category := nr.Category
	if category == "" {
		category = DefaultCategory
	}

	res := Resource{
		Title:       nr.Title,
		Category:    category,
		Description: nr.Description,
		Link:        nr.Link,
		Date:        date,
		Author:      nr.Author,
		Thumbnail:   nr.Thumbnail,
	}
	res, err = svc.repo.CreateResource(ctx, res)
	if err != nil {
		return Resource{}, errors.Wrap(err, "creating resource")
	}
	return res, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Resource, error) {
	return svc.repo.GetResourceByID(ctx, id)
}

// Query lists resources newest first.
func (svc *Service) Query(ctx context.Context, p core.Pagination, ordering ...core.DBOrdering) ([]Resource, int, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "date", Ascending: false}}
	}
	p = p.Clean(svc.conf.Server.PageSize, svc.conf.Server.MaxPageSize)
	return svc.repo.QueryResources(ctx, p, ordering...)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteResourceByID(ctx, id)
}
