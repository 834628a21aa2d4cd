// Package memdb implements the repository contracts on hashicorp/go-memdb.
// It backs STORE_DRIVER=memory and the service tests.
package memdb

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"

	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

// runner executes operations either in their own go-memdb transaction or,
// inside Store.Transaction, in the shared write transaction.
type runner struct {
	db  *memdb.MemDB
	txn *memdb.Txn
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return nil
}

func (r runner) read(ctx context.Context, fn func(txn *memdb.Txn) error) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if r.txn != nil {
		return fn(r.txn)
	}
	txn := r.db.Txn(false)
	defer txn.Abort()
	return fn(txn)
}

func (r runner) write(ctx context.Context, fn func(txn *memdb.Txn) error) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if r.txn != nil {
		return fn(r.txn)
	}
	txn := r.db.Txn(true)
	defer txn.Abort()
	if err := fn(txn); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (r runner) Users() repository.UserRepository {
	return &UserRepository{r}
}

func (r runner) Businesses() repository.BusinessRepository {
	return &BusinessRepository{r}
}

func (r runner) Stores() repository.StoreRepository {
	return &StoreRepository{r}
}

func (r runner) Products() repository.ProductRepository {
	return &ProductRepository{r}
}

func (r runner) Orders() repository.OrderRepository {
	return &OrderRepository{r}
}

func (r runner) Sessions() repository.SessionRepository {
	return &SessionRepository{r}
}

type Store struct {
	runner
}

func NewStore() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, err
	}
	return &Store{runner{db: db}}, nil
}

// Transaction runs fn in a single write transaction. Writers are serialized,
// so fn must not call back into the Store itself.
func (s *Store) Transaction(ctx context.Context, fn func(r repository.Repositories) error) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	txn := s.db.Txn(true)
	defer txn.Abort()

	if err := fn(runner{db: s.db, txn: txn}); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// first returns a copy of the first object matching the index lookup.
func first[T any](txn *memdb.Txn, table, index string, args ...interface{}) (*T, error) {
	raw, err := txn.First(table, index, args...)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, repository.ErrNotFound
	}
	obj := *raw.(*T)
	return &obj, nil
}

// collect returns copies of the objects matching the index lookup that pass keep.
func collect[T any](txn *memdb.Txn, keep func(*T) bool, table, index string, args ...interface{}) ([]T, error) {
	it, err := txn.Get(table, index, args...)
	if err != nil {
		return nil, err
	}

	var out []T
	for raw := it.Next(); raw != nil; raw = it.Next() {
		obj := raw.(*T)
		if keep == nil || keep(obj) {
			out = append(out, *obj)
		}
	}
	return out, nil
}

func exists(txn *memdb.Txn, table, index string, args ...interface{}) (bool, error) {
	raw, err := txn.First(table, index, args...)
	return raw != nil, err
}
