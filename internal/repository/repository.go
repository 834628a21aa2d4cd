// Package repository declares the data-access contracts of the service.
// Implementations live in the mysql and memdb subpackages.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
)

var (
	// ErrNotFound is returned when no row matches, including updates that matched nothing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("unique constraint violation")
	// ErrInsufficientStock is returned by a conditional stock decrement that would go negative.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrUnavailable marks connection loss, deadlines and lock timeouts.
	ErrUnavailable = errors.New("data store unavailable")
)

type UserRepository interface {
	// Create fails with ErrConflict when an active user already has the email.
	Create(ctx context.Context, user *entity.User) error
	// FindByID returns active users only.
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// FindAnyByID also returns soft-deleted users.
	FindAnyByID(ctx context.Context, id string) (*entity.User, error)
	// FindByEmail returns the active user with the email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	ListActive(ctx context.Context) ([]entity.User, error)
	ListActiveByRole(ctx context.Context, role entity.Role) ([]entity.User, error)
	ListActiveByStore(ctx context.Context, storeID string) ([]entity.User, error)
	Update(ctx context.Context, id string, update entity.UserUpdate) (*entity.User, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// Restore fails with ErrConflict when another active user took the email meanwhile.
	Restore(ctx context.Context, id string) (*entity.User, error)
}

type BusinessRepository interface {
	// Create fails with ErrConflict when the owner already has a business.
	Create(ctx context.Context, business *entity.Business) error
	FindByID(ctx context.Context, id string) (*entity.Business, error)
	FindByOwner(ctx context.Context, ownerID string) (*entity.Business, error)
}

type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	FindByID(ctx context.Context, id string) (*entity.Store, error)
	List(ctx context.Context) ([]entity.Store, error)
	ListByBusiness(ctx context.Context, businessID string) ([]entity.Store, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, id string, update entity.ProductUpdate) (*entity.Product, error)
	SoftDelete(ctx context.Context, id, updatedBy string, at time.Time) (*entity.Product, error)

	// CreateInventory fails with ErrConflict when the product is already stocked at the store.
	CreateInventory(ctx context.Context, inventory *entity.ProductInventory) error
	// FindInventory returns the (product, store) inventory row joined with its product.
	FindInventory(ctx context.Context, productID, storeID string) (*entity.InventoryItem, error)
	ListInventoriesByProduct(ctx context.Context, productID string) ([]entity.ProductInventory, error)
	// ListStoreInventory returns the store's inventory rows of active products.
	ListStoreInventory(ctx context.Context, storeID string) ([]entity.InventoryItem, error)
	// DecrementStock subtracts quantity in one atomic step guarded by stock >= quantity.
	// It returns ErrNotFound when the row is missing and ErrInsufficientStock when
	// the guard fails.
	DecrementStock(ctx context.Context, productID, storeID string, quantity int) (*entity.ProductInventory, error)
}

type OrderRepository interface {
	// Create stores the order and its items.
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	// Confirm marks the order confirmed by cashierID in one conditional update.
	// A non-empty storeID restricts the match to orders of that store; no match
	// returns ErrNotFound.
	Confirm(ctx context.Context, id, cashierID, storeID string) (*entity.Order, error)
	ListByStore(ctx context.Context, storeID string) ([]entity.Order, error)
	ListByCashier(ctx context.Context, cashierID string) ([]entity.Order, error)
}

type SessionRepository interface {
	// Create fails with ErrConflict on a duplicate session code.
	Create(ctx context.Context, session *entity.CashierSession) error
	FindActiveByCashier(ctx context.Context, cashierID string) (*entity.CashierSession, error)
	Deactivate(ctx context.Context, id string) error
}

// Repositories groups the per-entity repositories bound to one connection or transaction.
type Repositories interface {
	Users() UserRepository
	Businesses() BusinessRepository
	Stores() StoreRepository
	Products() ProductRepository
	Orders() OrderRepository
	Sessions() SessionRepository
}

// Store is the transactional data store.
type Store interface {
	Repositories

	// Transaction runs fn atomically. fn must only use the Repositories it is
	// given; any error returned by fn rolls back every write made through them.
	Transaction(ctx context.Context, fn func(r Repositories) error) error
}
