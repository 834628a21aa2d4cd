package memdb

import (
	"context"
	"sort"

	"github.com/hashicorp/go-memdb"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

type BusinessRepository struct {
	r runner
}

func (br *BusinessRepository) Create(ctx context.Context, business *entity.Business) error {
	return br.r.write(ctx, func(txn *memdb.Txn) error {
		if ok, err := exists(txn, tableBusinesses, "id", business.ID); err != nil || ok {
			return conflictOr(err)
		}
		if ok, err := exists(txn, tableBusinesses, "owner", business.OwnerID); err != nil || ok {
			return conflictOr(err)
		}
		if ok, err := exists(txn, tableUsers, "id", business.OwnerID); err != nil || !ok {
			return notFoundOr(err)
		}
		b := *business
		return txn.Insert(tableBusinesses, &b)
	})
}

func (br *BusinessRepository) FindByID(ctx context.Context, id string) (*entity.Business, error) {
	var business *entity.Business
	err := br.r.read(ctx, func(txn *memdb.Txn) (err error) {
		business, err = first[entity.Business](txn, tableBusinesses, "id", id)
		return err
	})
	return business, err
}

func (br *BusinessRepository) FindByOwner(ctx context.Context, ownerID string) (*entity.Business, error) {
	var business *entity.Business
	err := br.r.read(ctx, func(txn *memdb.Txn) (err error) {
		business, err = first[entity.Business](txn, tableBusinesses, "owner", ownerID)
		return err
	})
	return business, err
}

type StoreRepository struct {
	r runner
}

func (sr *StoreRepository) Create(ctx context.Context, store *entity.Store) error {
	return sr.r.write(ctx, func(txn *memdb.Txn) error {
		if ok, err := exists(txn, tableStores, "id", store.ID); err != nil || ok {
			return conflictOr(err)
		}
		if ok, err := exists(txn, tableBusinesses, "id", store.BusinessID); err != nil || !ok {
			return notFoundOr(err)
		}
		s := *store
		return txn.Insert(tableStores, &s)
	})
}

func (sr *StoreRepository) FindByID(ctx context.Context, id string) (*entity.Store, error) {
	var store *entity.Store
	err := sr.r.read(ctx, func(txn *memdb.Txn) (err error) {
		store, err = first[entity.Store](txn, tableStores, "id", id)
		return err
	})
	return store, err
}

func (sr *StoreRepository) List(ctx context.Context) ([]entity.Store, error) {
	return sr.list(ctx, "id")
}

func (sr *StoreRepository) ListByBusiness(ctx context.Context, businessID string) ([]entity.Store, error) {
	return sr.list(ctx, "business", businessID)
}

func (sr *StoreRepository) list(ctx context.Context, index string, args ...interface{}) ([]entity.Store, error) {
	var stores []entity.Store
	err := sr.r.read(ctx, func(txn *memdb.Txn) (err error) {
		stores, err = collect[entity.Store](txn, nil, tableStores, index, args...)
		return err
	})
	sort.SliceStable(stores, func(i, j int) bool {
		return stores[i].CreatedAt.Before(stores[j].CreatedAt)
	})
	return stores, err
}

// notFoundOr returns err when the lookup failed and ErrNotFound otherwise.
// It stands in for a foreign key violation.
func notFoundOr(err error) error {
	if err != nil {
		return err
	}
	return repository.ErrNotFound
}
