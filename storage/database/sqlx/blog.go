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
	"github.com/trezcool/baraza/core/blog"
	"github.com/trezcool/baraza/core/user"
)

type blogRepository struct {
	db *sqlx.DB
}

var _ blog.Repository = (*blogRepository)(nil) // interface compliance check

func NewBlogRepository(db *sqlx.DB) *blogRepository {
	return &blogRepository{db: db}
}

type blogRow struct {
	ID          int         `db:"id"`
	Title       string      `db:"title"`
	Slug        string      `db:"slug"`
	AuthorID    null.Int    `db:"author_id"`
	Category    string      `db:"category"`
	Tags        []byte      `db:"tags"`
	Excerpt     string      `db:"excerpt"`
	Content     string      `db:"content"`
	CoverImage  null.String `db:"cover_image"`
	PublishedAt time.Time   `db:"published_at"`
	ReadTime    int         `db:"read_time"`
	Views       int         `db:"views"`
	Likes       int         `db:"likes"`
	Featured    bool        `db:"featured"`
	IsPremium   bool        `db:"is_premium"`
}

type blogRenderedRow struct {
	blogRow
	AuthorFirstName null.String `db:"author_first_name"`
	AuthorLastName  null.String `db:"author_last_name"`
	AuthorPhotoURL  null.String `db:"author_photo_url"`
	AuthorInstitute null.String `db:"author_institute"`
	AuthorBio       null.String `db:"author_bio"`
}

func (r blogRow) toBlog() (blog.Blog, error) {
	tags := []string{}
	if len(r.Tags) > 0 {
		if err := json.Unmarshal(r.Tags, &tags); err != nil {
			return blog.Blog{}, errors.Wrap(err, "unmarshalling blog tags")
		}
	}
	b := blog.Blog{
		ID:          r.ID,
		Title:       r.Title,
		Slug:        r.Slug,
		Category:    r.Category,
		Tags:        tags,
		Excerpt:     r.Excerpt,
		Content:     r.Content,
		CoverImage:  r.CoverImage.String,
		PublishedAt: r.PublishedAt,
		ReadTime:    r.ReadTime,
		Views:       r.Views,
		Likes:       r.Likes,
		Featured:    r.Featured,
		IsPremium:   r.IsPremium,
	}
	if r.AuthorID.Valid {
		aid := int(r.AuthorID.Int)
		b.AuthorID = &aid
	}
	return b, nil
}

func (r blogRenderedRow) toRendered() (blog.Rendered, error) {
	b, err := r.toBlog()
	if err != nil {
		return blog.Rendered{}, err
	}
	rendered := blog.Rendered{Blog: b}
	if r.AuthorID.Valid {
		rendered.Author = &user.PublicInfo{
			UID:         int(r.AuthorID.Int),
			DisplayName: strings.TrimSpace(r.AuthorFirstName.String + " " + r.AuthorLastName.String),
			PhotoURL:    r.AuthorPhotoURL.String,
			Institute:   r.AuthorInstitute.String,
			Bio:         r.AuthorBio.String,
		}
	}
	return rendered, nil
}

const blogSelect = `
	SELECT b.id, b.title, b.slug, b.author_id, b.category, b.tags, b.excerpt, b.content, b.cover_image,
	       b.published_at, b.read_time, b.views, b.likes, b.featured, b.is_premium,
	       u.first_name AS author_first_name, u.last_name AS author_last_name,
	       u.photo_url AS author_photo_url, u.institute AS author_institute, u.bio AS author_bio
	FROM blog b
	         LEFT JOIN "user" u ON u.id = b.author_id`

func (repo blogRepository) CreateBlog(ctx context.Context, b blog.Blog) (blog.Blog, error) {
	tags, err := json.Marshal(b.Tags)
	if err != nil {
		return blog.Blog{}, errors.Wrap(err, "marshalling blog tags")
	}
	query := `
		INSERT INTO blog (title, slug, author_id, category, tags, excerpt, content, cover_image,
			published_at, read_time, views, likes, featured, is_premium)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	err = repo.db.QueryRowxContext(
		ctx, query,
		b.Title,
		b.Slug,
		null.IntFromPtr(b.AuthorID),
		b.Category,
		tags,
		b.Excerpt,
		b.Content,
		null.NewString(b.CoverImage, b.CoverImage != ""),
		b.PublishedAt.UTC(),
		b.ReadTime,
		b.Views,
		b.Likes,
		b.Featured,
		b.IsPremium,
	).Scan(&b.ID)
	if err != nil {
		return blog.Blog{}, errors.Wrap(err, "inserting blog")
	}
	return b, nil
}

func (repo blogRepository) GetBlogBySlug(ctx context.Context, slug string) (blog.Rendered, error) {
	var row blogRenderedRow
	if err := repo.db.GetContext(ctx, &row, blogSelect+` WHERE b.slug = $1`, slug); err != nil {
		return blog.Rendered{}, trapNoRowsErr(err, blog.ErrNotFound, "getting blog by slug")
	}
	return row.toRendered()
}

func (repo blogRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM blog WHERE slug = $1)`
	if err := repo.db.GetContext(ctx, &exists, query, slug); err != nil {
		return false, errors.Wrap(err, "checking blog slug")
	}
	return exists, nil
}

func (repo blogRepository) QueryBlogs(ctx context.Context, filter blog.Filter, p core.Pagination, ordering ...core.DBOrdering) ([]blog.Rendered, int, error) {
	var clauses []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.Category != "" {
		clauses = append(clauses, `LOWER(b.category) = LOWER(`+arg(filter.Category)+`)`)
	}
	if filter.Featured != nil {
		clauses = append(clauses, `b.featured = `+arg(*filter.Featured))
	}
	if filter.IsPremium != nil {
		clauses = append(clauses, `b.is_premium = `+arg(*filter.IsPremium))
	}
	if filter.Title != "" {
		clauses = append(clauses, `b.title ILIKE `+arg("%"+filter.Title+"%"))
	}
	if filter.MinReadTime != nil {
		clauses = append(clauses, `b.read_time >= `+arg(*filter.MinReadTime))
	}
	if filter.MaxReadTime != nil {
		clauses = append(clauses, `b.read_time <= `+arg(*filter.MaxReadTime))
	}
	if filter.Search != "" {
		kw := "%" + filter.Search + "%"
		pm := arg(kw)
		clauses = append(clauses, `(b.title ILIKE `+pm+` OR b.excerpt ILIKE `+pm+` OR b.content ILIKE `+pm+`)`)
	}

	var where string
	if len(clauses) > 0 {
		where = ` WHERE ` + strings.Join(clauses, " AND ")
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM blog b`+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting blogs")
	}

	allowed := map[string]string{
		"published_at": "b.published_at, b.id",
		"views":        "b.views",
		"likes":        "b.likes",
		"read_time":    "b.read_time",
	}
	query := blogSelect + where + orderBy(ordering, allowed, "b.published_at DESC, b.id DESC") + limitOffset(p)

	var rows []blogRenderedRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying blogs")
	}
	blogs := make([]blog.Rendered, 0, len(rows))
	for _, r := range rows {
		rendered, err := r.toRendered()
		if err != nil {
			return nil, 0, err
		}
		blogs = append(blogs, rendered)
	}
	return blogs, count, nil
}

func (repo blogRepository) UpdateBlog(ctx context.Context, b blog.Blog) (blog.Blog, error) {
	tags, err := json.Marshal(b.Tags)
	if err != nil {
		return blog.Blog{}, errors.Wrap(err, "marshalling blog tags")
	}
	query := `
		UPDATE blog SET title = $2, category = $3, tags = $4, excerpt = $5, content = $6,
			cover_image = $7, read_time = $8, views = $9, likes = $10, featured = $11, is_premium = $12
		WHERE id = $1`
	res, err := repo.db.ExecContext(
		ctx, query,
		b.ID,
		b.Title,
		b.Category,
		tags,
		b.Excerpt,
		b.Content,
		null.NewString(b.CoverImage, b.CoverImage != ""),
		b.ReadTime,
		b.Views,
		b.Likes,
		b.Featured,
		b.IsPremium,
	)
	if err != nil {
		return blog.Blog{}, errors.Wrap(err, "updating blog")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return blog.Blog{}, blog.ErrNotFound
	}
	return b, nil
}

func (repo blogRepository) DeleteBlogBySlug(ctx context.Context, slug string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM blog WHERE slug = $1`, slug)
	if err != nil {
		return errors.Wrap(err, "deleting blog")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return blog.ErrNotFound
	}
	return nil
}
