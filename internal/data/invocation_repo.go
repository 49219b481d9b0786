// Package data provides the Postgres-backed repositories for the invoker system.
package data

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/benchkit/invoker/internal/data/pgxutil"
	"github.com/benchkit/invoker/internal/domain/model"
	apperrors "github.com/benchkit/invoker/internal/errors"
)

// InvocationRepo provides database operations for invocation records. The
// invocations table is keyed by name (primary key doubles as the unique index),
// so duplicate creates surface as conflicts rather than being retried.
type InvocationRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewInvocationRepo creates a new InvocationRepo instance with the given database connection.
func NewInvocationRepo(db *sql.DB, logger *slog.Logger) *InvocationRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvocationRepo{DB: db, logger: logger}
}

const invocationColumns = `
  name,
  username,
  message,
  state
`

// Create inserts a new invocation record with the state it carries.
// A duplicate name maps to a Conflict AppError so the scheduler can skip the
// iteration and keep going instead of aborting the batch.
func (r *InvocationRepo) Create(ctx context.Context, inv *model.Invocation) error {
	if inv == nil {
		return errors.New("invocation is required")
	}
	if inv.Name == "" {
		return apperrors.Validation("invocation name is required")
	}
	state := inv.State
	if state == "" {
		state = model.StateUnknown
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO invocations (name, username, message, state)
		VALUES ($1, $2, $3, $4)
	`, inv.Name, inv.Username, inv.Message, state)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// FindByName looks up an invocation record by its unique name.
func (r *InvocationRepo) FindByName(ctx context.Context, name string) (*model.Invocation, error) {
	var out model.Invocation
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, `
			SELECT `+invocationColumns+`
			FROM invocations
			WHERE name = $1
		`, name)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		collected, collectErr := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Invocation])
		if collectErr != nil {
			return collectErr
		}
		out = collected
		return nil
	})
	if err != nil {
		mapped := apperrors.MapDBError(err)
		if apperrors.IsNotFound(mapped) {
			return nil, apperrors.NotFoundf("invocation %q not found", name)
		}
		return nil, mapped
	}
	return &out, nil
}

// UpdateState atomically finds the record by name and sets its state in a single
// UPDATE statement. Returns whether a matching record existed. The row can never
// be observed half-applied, which is what the worker's at-most-once bookkeeping
// rests on.
func (r *InvocationRepo) UpdateState(
	ctx context.Context,
	name string,
	state model.InvocationState,
) (bool, error) {
	if !state.Valid() {
		return false, apperrors.Validation("invalid invocation state")
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE invocations SET state = $2 WHERE name = $1
	`, name, state)
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return affected > 0, nil
}
