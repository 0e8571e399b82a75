package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type userRow struct {
	ID               int         `db:"id"`
	Email            string      `db:"email"`
	Username         null.String `db:"username"`
	FirstName        string      `db:"first_name"`
	LastName         string      `db:"last_name"`
	PhotoURL         null.String `db:"photo_url"`
	Role             string      `db:"role"`
	MembershipStatus null.String `db:"membership_status"`
	Institute        null.String `db:"institute"`
	Course           null.String `db:"course"`
	Bio              null.String `db:"bio"`
	ParasStones      int         `db:"paras_stones"`
	Coins            int         `db:"coins"`
	IsActive         bool        `db:"is_active"`
	PasswordHash     null.Bytes  `db:"password_hash"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
	LastLogin        null.Time   `db:"last_login"`
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:               r.ID,
		Email:            r.Email,
		Username:         r.Username.String,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		PhotoURL:         r.PhotoURL.String,
		Role:             r.Role,
		MembershipStatus: r.MembershipStatus.String,
		Institute:        r.Institute.String,
		Course:           r.Course.String,
		Bio:              r.Bio.String,
		ParasStones:      r.ParasStones,
		Coins:            r.Coins,
		IsActive:         r.IsActive,
		PasswordHash:     r.PasswordHash.Bytes,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		LastLogin:        r.LastLogin.Time,
	}
}

const userColumns = `id, email, username, first_name, last_name, photo_url, role, membership_status,
	institute, course, bio, paras_stones, coins, is_active, password_hash, created_at, updated_at, last_login`

// trapNoRowsErr maps psql "no rows" err to the domain's notFound error
func trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	query := `SELECT username = $1 FROM "user" WHERE (username = $1 OR email = $2)`
	args := []interface{}{null.NewString(username, username != ""), email}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		q, inArgs, err := sqlx.In(query+` AND id NOT IN (?)`, args[0], args[1], ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
		query, args = repo.db.Rebind(q), inArgs
	}

	var usernameTaken null.Bool
	err := repo.db.QueryRowxContext(ctx, query, args...).Scan(&usernameTaken)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if usernameTaken.Bool {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	query := `
		INSERT INTO "user" (email, username, first_name, last_name, photo_url, role, membership_status,
			institute, course, bio, paras_stones, coins, is_active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`
	err := repo.db.QueryRowxContext(
		ctx, query,
		usr.Email,
		null.NewString(usr.Username, usr.Username != ""),
		usr.FirstName,
		usr.LastName,
		null.NewString(usr.PhotoURL, usr.PhotoURL != ""),
		usr.Role,
		null.NewString(usr.MembershipStatus, usr.MembershipStatus != ""),
		null.NewString(usr.Institute, usr.Institute != ""),
		null.NewString(usr.Course, usr.Course != ""),
		null.NewString(usr.Bio, usr.Bio != ""),
		usr.ParasStones,
		usr.Coins,
		usr.IsActive,
		null.BytesFrom(usr.PasswordHash),
		usr.CreatedAt.UTC(),
		usr.UpdatedAt.UTC(),
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM "user" WHERE id = $1`, id)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user by id")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, uname string) (user.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM "user" WHERE username = $1 OR email = $1`
	if err := repo.db.GetContext(ctx, &row, query, uname); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user by username or email")
	}
	return row.toUser(), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	query := `SELECT ` + userColumns + ` FROM "user"`
	var clauses []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			kw := "%" + filter.Search + "%"
			p := arg(kw)
			clauses = append(clauses, `(first_name ILIKE `+p+` OR last_name ILIKE `+p+` OR username ILIKE `+p+` OR email ILIKE `+p+`)`)
		}
		if filter.Role != "" {
			clauses = append(clauses, `role = `+arg(filter.Role))
		}
		if filter.IsActive != nil {
			clauses = append(clauses, `is_active = `+arg(*filter.IsActive))
		}
		if !filter.CreatedFrom.IsZero() {
			clauses = append(clauses, `created_at >= `+arg(filter.CreatedFrom.UTC()))
		}
		if !filter.CreatedTo.IsZero() {
			clauses = append(clauses, `created_at <= `+arg(filter.CreatedTo.UTC()))
		}
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += orderBy(ordering, map[string]string{"created_at": "created_at", "email": "email", "id": "id"}, "email ASC")

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	if isActive != nil {
		usr.IsActive = *isActive
	}
	query := `
		UPDATE "user" SET email = $2, username = $3, first_name = $4, last_name = $5, photo_url = $6,
			role = $7, membership_status = $8, institute = $9, course = $10, bio = $11,
			paras_stones = $12, coins = $13, is_active = $14, password_hash = $15, updated_at = $16
		WHERE id = $1`
	res, err := repo.db.ExecContext(
		ctx, query,
		usr.ID,
		usr.Email,
		null.NewString(usr.Username, usr.Username != ""),
		usr.FirstName,
		usr.LastName,
		null.NewString(usr.PhotoURL, usr.PhotoURL != ""),
		usr.Role,
		null.NewString(usr.MembershipStatus, usr.MembershipStatus != ""),
		null.NewString(usr.Institute, usr.Institute != ""),
		null.NewString(usr.Course, usr.Course != ""),
		null.NewString(usr.Bio, usr.Bio != ""),
		usr.ParasStones,
		usr.Coins,
		usr.IsActive,
		null.BytesFrom(usr.PasswordHash),
		usr.UpdatedAt.UTC(),
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	usr.LastLogin = time.Now().UTC()
	query := `UPDATE "user" SET last_login = $2 WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, query, usr.ID, usr.LastLogin); err != nil {
		return user.User{}, errors.Wrap(err, "setting last login")
	}
	return usr, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
