package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/resource"
)

type resourceRepository struct {
	db *sqlx.DB
}

var _ resource.Repository = (*resourceRepository)(nil) // interface compliance check

func NewResourceRepository(db *sqlx.DB) *resourceRepository {
	return &resourceRepository{db: db}
}

type resourceRow struct {
	ID          int         `db:"id"`
	Title       string      `db:"title"`
	Category    string      `db:"category"`
	Description string      `db:"description"`
	Link        string      `db:"link"`
	Date        time.Time   `db:"date"`
	Author      string      `db:"author"`
	Thumbnail   null.String `db:"thumbnail"`
	Downloads   int         `db:"downloads"`
}

func (r resourceRow) toResource() resource.Resource {
	return resource.Resource{
		ID:          r.ID,
		Title:       r.Title,
		Category:    r.Category,
		Description: r.Description,
		Link:        r.Link,
		Date:        r.Date,
		Author:      r.Author,
		Thumbnail:   r.Thumbnail.String,
		Downloads:   r.Downloads,
	}
}

const resourceColumns = `id, title, category, description, link, date, author, thumbnail, downloads`

func (repo resourceRepository) CreateResource(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	query := `
		INSERT INTO resource (title, category, description, link, date, author, thumbnail, downloads)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := repo.db.QueryRowxContext(
		ctx, query,
		res.Title,
		res.Category,
		res.Description,
		res.Link,
		res.Date,
		res.Author,
		null.NewString(res.Thumbnail, res.Thumbnail != ""),
		res.Downloads,
	).Scan(&res.ID)
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "inserting resource")
	}
	return res, nil
}

func (repo resourceRepository) GetResourceByID(ctx context.Context, id int) (resource.Resource, error) {
	var row resourceRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+resourceColumns+` FROM resource WHERE id = $1`, id)
	if err != nil {
		return resource.Resource{}, trapNoRowsErr(err, resource.ErrNotFound, "getting resource by id")
	}
	return row.toResource(), nil
}

func (repo resourceRepository) QueryResources(ctx context.Context, p core.Pagination, ordering ...core.DBOrdering) ([]resource.Resource, int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM resource`); err != nil {
		return nil, 0, errors.Wrap(err, "counting resources")
	}

	allowed := map[string]string{"date": "date, id", "downloads": "downloads", "title": "title"}
	query := `SELECT ` + resourceColumns + ` FROM resource` + orderBy(ordering, allowed, "date DESC, id DESC") + limitOffset(p)

	var rows []resourceRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, 0, errors.Wrap(err, "querying resources")
	}
	resources := make([]resource.Resource, 0, len(rows))
	for _, r := range rows {
		resources = append(resources, r.toResource())
	}
	return resources, count, nil
}

func (repo resourceRepository) DeleteResourceByID(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM resource WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting resource")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return resource.ErrNotFound
	}
	return nil
}
