package data

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"

	"github.com/benchkit/invoker/internal/data/pgxutil"
	"github.com/benchkit/invoker/internal/domain/model"
	apperrors "github.com/benchkit/invoker/internal/errors"
)

// UserRepo provides database operations for the user directory that backs
// target-call authentication.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a new UserRepo instance with the given database connection.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

const userColumns = `
  username,
  password
`

// RandomUser returns a uniformly random directory entry. An empty directory is a
// NotFound AppError: runs require seeded users.
func (r *UserRepo) RandomUser(ctx context.Context) (*model.User, error) {
	return r.getByQuery(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY random()
		LIMIT 1
	`)
}

// FindByUsername returns the entry for the given username.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := r.getByQuery(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1
	`, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundf("user %q not found", username)
		}
		return nil, err
	}
	return user, nil
}

// Create inserts a directory entry. Used by the dev seeder and tests.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	if user == nil || user.Username == "" {
		return apperrors.Validation("username is required")
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		ON CONFLICT (username) DO NOTHING
	`, user.Username, user.Password)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

func (r *UserRepo) getByQuery(ctx context.Context, query string, args ...any) (*model.User, error) {
	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		collected, collectErr := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		if collectErr != nil {
			return collectErr
		}
		out = collected
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}
