package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/thread"
	"github.com/trezcool/baraza/core/user"
)

type threadRepository struct {
	db *sqlx.DB
}

var _ thread.Repository = (*threadRepository)(nil) // interface compliance check

func NewThreadRepository(db *sqlx.DB) *threadRepository {
	return &threadRepository{db: db}
}

type threadRow struct {
	ID        int         `db:"id"`
	Title     string      `db:"title"`
	Content   string      `db:"content"`
	UserID    int         `db:"user_id"`
	ParentID  null.Int    `db:"parent_id"`
	Color     string      `db:"color"`
	Subject   null.String `db:"subject"`
	CreatedAt time.Time   `db:"created_at"`
}

type threadSummaryRow struct {
	threadRow
	AuthorFirstName string      `db:"author_first_name"`
	AuthorLastName  string      `db:"author_last_name"`
	AuthorPhotoURL  null.String `db:"author_photo_url"`
	AuthorInstitute null.String `db:"author_institute"`
	AuthorBio       null.String `db:"author_bio"`
	ReplyCount      int         `db:"reply_count"`
}

func (r threadRow) toThread() thread.Thread {
	th := thread.Thread{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		UserID:    r.UserID,
		Color:     r.Color,
		Subject:   r.Subject.String,
		CreatedAt: r.CreatedAt,
	}
	if r.ParentID.Valid {
		pid := int(r.ParentID.Int)
		th.ParentID = &pid
	}
	return th
}

func (r threadSummaryRow) toSummary() thread.Summary {
	return thread.Summary{
		Thread: r.toThread(),
		User: user.PublicInfo{
			UID:         r.UserID,
			DisplayName: strings.TrimSpace(r.AuthorFirstName + " " + r.AuthorLastName),
			PhotoURL:    r.AuthorPhotoURL.String,
			Institute:   r.AuthorInstitute.String,
			Bio:         r.AuthorBio.String,
		},
		ReplyCount: r.ReplyCount,
	}
}

// summarySelect joins the author and counts direct replies only; descendants
// past the first level never contribute to reply_count.
const summarySelect = `
	SELECT t.id, t.title, t.content, t.user_id, t.parent_id, t.color, t.subject, t.created_at,
	       u.first_name AS author_first_name, u.last_name AS author_last_name,
	       u.photo_url AS author_photo_url, u.institute AS author_institute, u.bio AS author_bio,
	       (SELECT COUNT(*) FROM thread c WHERE c.parent_id = t.id) AS reply_count
	FROM thread t
	         JOIN "user" u ON u.id = t.user_id`

func (repo threadRepository) CreateThread(ctx context.Context, th thread.Thread) (thread.Thread, error) {
	query := `
		INSERT INTO thread (title, content, user_id, parent_id, color, subject, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := repo.db.QueryRowxContext(
		ctx, query,
		th.Title,
		th.Content,
		th.UserID,
		null.IntFromPtr(th.ParentID),
		th.Color,
		null.NewString(th.Subject, th.Subject != ""),
		th.CreatedAt.UTC(),
	).Scan(&th.ID)
	if err != nil {
		return thread.Thread{}, errors.Wrap(err, "inserting thread")
	}
	return th, nil
}

func (repo threadRepository) GetThreadByID(ctx context.Context, id int) (thread.Thread, error) {
	var row threadRow
	query := `SELECT id, title, content, user_id, parent_id, color, subject, created_at FROM thread WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return thread.Thread{}, trapNoRowsErr(err, thread.ErrNotFound, "getting thread by id")
	}
	return row.toThread(), nil
}

func (repo threadRepository) GetSummary(ctx context.Context, id int) (thread.Summary, error) {
	var row threadSummaryRow
	if err := repo.db.GetContext(ctx, &row, summarySelect+` WHERE t.id = $1`, id); err != nil {
		return thread.Summary{}, trapNoRowsErr(err, thread.ErrNotFound, "getting thread summary")
	}
	return row.toSummary(), nil
}

func (repo threadRepository) QueryThreads(ctx context.Context, filter thread.Filter, p core.Pagination, ordering ...core.DBOrdering) ([]thread.Summary, int, error) {
	var clauses []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.RootsOnly {
		clauses = append(clauses, `t.parent_id IS NULL`)
	}
	if filter.ParentID != nil {
		clauses = append(clauses, `t.parent_id = `+arg(*filter.ParentID))
	}
	if filter.Category != "" {
		clauses = append(clauses, `LOWER(t.subject) = LOWER(`+arg(filter.Category)+`)`)
	}
	if filter.Search != "" {
		kw := "%" + filter.Search + "%"
		pm := arg(kw)
		clauses = append(clauses, `(t.title ILIKE `+pm+` OR t.content ILIKE `+pm+
			` OR u.first_name ILIKE `+pm+` OR u.last_name ILIKE `+pm+`)`)
	}

	var where string
	if len(clauses) > 0 {
		where = ` WHERE ` + strings.Join(clauses, " AND ")
	}

	var count int
	countQuery := `SELECT COUNT(*) FROM thread t JOIN "user" u ON u.id = t.user_id` + where
	if err := repo.db.GetContext(ctx, &count, countQuery, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting threads")
	}

	// id breaks created_at ties so page boundaries stay deterministic
	allowed := map[string]string{"created_at": "t.created_at, t.id", "id": "t.id"}
	query := summarySelect + where + orderBy(ordering, allowed, "t.created_at DESC, t.id DESC") + limitOffset(p)

	var rows []threadSummaryRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying threads")
	}
	summaries := make([]thread.Summary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, r.toSummary())
	}
	return summaries, count, nil
}

func (repo threadRepository) QueryReplies(ctx context.Context, parentID int) ([]thread.Summary, error) {
	query := summarySelect + ` WHERE t.parent_id = $1 ORDER BY t.created_at ASC, t.id ASC`
	var rows []threadSummaryRow
	if err := repo.db.SelectContext(ctx, &rows, query, parentID); err != nil {
		return nil, errors.Wrap(err, "querying replies")
	}
	summaries := make([]thread.Summary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, r.toSummary())
	}
	return summaries, nil
}

// DeleteThreadTree removes the thread; the self-referencing FK is declared
// ON DELETE CASCADE so the whole subtree goes in this one atomic statement.
func (repo threadRepository) DeleteThreadTree(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM thread WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting thread tree")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return thread.ErrNotFound
	}
	return nil
}
