package memdb

import (
	"context"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

type OrderRepository struct {
	r runner
}

func cloneOrder(order entity.Order) *entity.Order {
	order.Items = append([]entity.OrderItem(nil), order.Items...)
	return &order
}

func (o *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	return o.r.write(ctx, func(txn *memdb.Txn) error {
		if ok, err := exists(txn, tableOrders, "id", order.ID); err != nil || ok {
			return conflictOr(err)
		}
		if order.IdempotencyKey != "" {
			if ok, err := exists(txn, tableOrders, "idempotency", order.IdempotencyKey); err != nil || ok {
				return conflictOr(err)
			}
		}
		if ok, err := exists(txn, tableStores, "id", order.StoreID); err != nil || !ok {
			return notFoundOr(err)
		}
		return txn.Insert(tableOrders, cloneOrder(*order))
	})
}

func (o *OrderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	var order *entity.Order
	err := o.r.read(ctx, func(txn *memdb.Txn) error {
		found, err := first[entity.Order](txn, tableOrders, "id", id)
		if err != nil {
			return err
		}
		order = cloneOrder(*found)
		return nil
	})
	return order, err
}

func (o *OrderRepository) Confirm(ctx context.Context, id, cashierID, storeID string) (*entity.Order, error) {
	var order *entity.Order
	err := o.r.write(ctx, func(txn *memdb.Txn) error {
		found, err := first[entity.Order](txn, tableOrders, "id", id)
		if err != nil {
			return err
		}
		if storeID != "" && found.StoreID != storeID {
			return repository.ErrNotFound
		}
		order = cloneOrder(*found)
		order.CashierConfirmed = true
		order.CashierID = cashierID
		order.UpdatedAt = time.Now().UTC()
		return txn.Insert(tableOrders, cloneOrder(*order))
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (o *OrderRepository) ListByStore(ctx context.Context, storeID string) ([]entity.Order, error) {
	return o.list(ctx, "store", storeID)
}

func (o *OrderRepository) ListByCashier(ctx context.Context, cashierID string) ([]entity.Order, error) {
	return o.list(ctx, "cashier", cashierID)
}

func (o *OrderRepository) list(ctx context.Context, index string, args ...interface{}) ([]entity.Order, error) {
	var orders []entity.Order
	err := o.r.read(ctx, func(txn *memdb.Txn) error {
		found, err := collect[entity.Order](txn, nil, tableOrders, index, args...)
		if err != nil {
			return err
		}
		for i := range found {
			orders = append(orders, *cloneOrder(found[i]))
		}
		return nil
	})
	// newest first
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, err
}
