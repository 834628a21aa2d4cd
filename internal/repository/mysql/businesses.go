package mysql

import (
	"context"
	"database/sql"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
)

type BusinessRepository struct {
	q querier
}

func scanBusiness(row scanner) (*entity.Business, error) {
	var business entity.Business
	var address, registrationNumber sql.NullString
	err := row.Scan(&business.ID, &business.Name, &address, &registrationNumber, &business.OwnerID, &business.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	business.Address = address.String
	business.RegistrationNumber = registrationNumber.String
	return &business, nil
}

func (r *BusinessRepository) Create(ctx context.Context, business *entity.Business) error {
	query := `INSERT INTO businesses (id, name, address, registration_number, owner_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query, business.ID, business.Name, nullString(business.Address),
		nullString(business.RegistrationNumber), business.OwnerID, business.CreatedAt)
	return mapError(err)
}

func (r *BusinessRepository) FindByID(ctx context.Context, id string) (*entity.Business, error) {
	query := `SELECT id, name, address, registration_number, owner_id, created_at FROM businesses WHERE id = ?`
	return scanBusiness(r.q.QueryRowContext(ctx, query, id))
}

func (r *BusinessRepository) FindByOwner(ctx context.Context, ownerID string) (*entity.Business, error) {
	query := `SELECT id, name, address, registration_number, owner_id, created_at FROM businesses WHERE owner_id = ?`
	return scanBusiness(r.q.QueryRowContext(ctx, query, ownerID))
}

type StoreRepository struct {
	q querier
}

func (r *StoreRepository) Create(ctx context.Context, store *entity.Store) error {
	query := `INSERT INTO stores (id, name, business_id, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query, store.ID, store.Name, store.BusinessID, store.CreatedAt)
	return mapError(err)
}

func (r *StoreRepository) FindByID(ctx context.Context, id string) (*entity.Store, error) {
	var store entity.Store
	query := `SELECT id, name, business_id, created_at FROM stores WHERE id = ?`
	err := r.q.QueryRowContext(ctx, query, id).Scan(&store.ID, &store.Name, &store.BusinessID, &store.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &store, nil
}

func (r *StoreRepository) List(ctx context.Context) ([]entity.Store, error) {
	return r.queryStores(ctx, `SELECT id, name, business_id, created_at FROM stores ORDER BY created_at`)
}

func (r *StoreRepository) ListByBusiness(ctx context.Context, businessID string) ([]entity.Store, error) {
	return r.queryStores(ctx, `SELECT id, name, business_id, created_at FROM stores WHERE business_id = ? ORDER BY created_at`, businessID)
}

func (r *StoreRepository) queryStores(ctx context.Context, query string, args ...interface{}) ([]entity.Store, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var stores []entity.Store
	for rows.Next() {
		var store entity.Store
		if err := rows.Scan(&store.ID, &store.Name, &store.BusinessID, &store.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		stores = append(stores, store)
	}
	return stores, mapError(rows.Err())
}
