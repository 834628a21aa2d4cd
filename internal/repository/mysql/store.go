// Package mysql implements the repository contracts on MySQL through database/sql.
package mysql

import (
	"context"
	"database/sql"

	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type scanner interface {
	Scan(dest ...interface{}) error
}

type repositories struct {
	q querier
}

func (r repositories) Users() repository.UserRepository {
	return &UserRepository{q: r.q}
}

func (r repositories) Businesses() repository.BusinessRepository {
	return &BusinessRepository{q: r.q}
}

func (r repositories) Stores() repository.StoreRepository {
	return &StoreRepository{q: r.q}
}

func (r repositories) Products() repository.ProductRepository {
	return &ProductRepository{q: r.q}
}

func (r repositories) Orders() repository.OrderRepository {
	return &OrderRepository{q: r.q}
}

func (r repositories) Sessions() repository.SessionRepository {
	return &SessionRepository{q: r.q}
}

type Store struct {
	repositories
	db *sql.DB
}

// NewStore wraps db. The DSN must enable ClientFoundRows so that conditional
// updates report matched rows rather than changed rows.
func NewStore(db *sql.DB) *Store {
	return &Store{repositories: repositories{q: db}, db: db}
}

func (s *Store) Transaction(ctx context.Context, fn func(r repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}

	if err := fn(repositories{q: tx}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

// execAffecting runs an update and reports ErrNotFound when it matched no row.
func execAffecting(ctx context.Context, q querier, query string, args ...interface{}) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
