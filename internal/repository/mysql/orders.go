package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
)

const orderColumns = `id, customer_id, store_id, total, paid_online, cashier_confirmed, cashier_id, idempotency_key, created_at, updated_at`

type OrderRepository struct {
	q querier
}

func scanOrder(row scanner) (*entity.Order, error) {
	var order entity.Order
	var cashierID, idempotencyKey sql.NullString
	err := row.Scan(&order.ID, &order.CustomerID, &order.StoreID, &order.Total, &order.PaidOnline,
		&order.CashierConfirmed, &cashierID, &idempotencyKey, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	order.CashierID = cashierID.String
	order.IdempotencyKey = idempotencyKey.String
	return &order, nil
}

// Create inserts the order and its items. Called outside a transaction it opens its own.
func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	if db, ok := r.q.(*sql.DB); ok {
		// Start a transaction
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return mapError(err)
		}
		if err := (&OrderRepository{q: tx}).Create(ctx, order); err != nil {
			tx.Rollback()
			return err
		}
		return mapError(tx.Commit())
	}

	orderQuery := `INSERT INTO orders (id, customer_id, store_id, total, paid_online, cashier_confirmed, cashier_id, idempotency_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, orderQuery, order.ID, order.CustomerID, order.StoreID, order.Total, order.PaidOnline,
		order.CashierConfirmed, nullString(order.CashierID), nullString(order.IdempotencyKey), order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	if len(order.Items) == 0 {
		return nil
	}

	// Insert order items with batch
	itemQuery := `
		INSERT INTO order_items (order_id, position, product_id, quantity, unit_price, line_total)
		VALUES `

	var values []interface{}
	for i, item := range order.Items {
		itemQuery += "(?, ?, ?, ?, ?, ?),"
		values = append(values, order.ID, i, item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal)
	}

	// Remove the trailing comma
	itemQuery = itemQuery[:len(itemQuery)-1]

	_, err = r.q.ExecContext(ctx, itemQuery, values...)
	return mapError(err)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	order, err := scanOrder(r.q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	orders := []entity.Order{*order}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *OrderRepository) Confirm(ctx context.Context, id, cashierID, storeID string) (*entity.Order, error) {
	query := `UPDATE orders SET cashier_confirmed = 1, cashier_id = ?, updated_at = ? WHERE id = ?`
	args := []interface{}{cashierID, time.Now().UTC(), id}
	if storeID != "" {
		query += ` AND store_id = ?`
		args = append(args, storeID)
	}

	if err := execAffecting(ctx, r.q, query, args...); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *OrderRepository) ListByStore(ctx context.Context, storeID string) ([]entity.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE store_id = ? ORDER BY created_at DESC`, storeID)
}

func (r *OrderRepository) ListByCashier(ctx context.Context, cashierID string) ([]entity.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE cashier_id = ? ORDER BY created_at DESC`, cashierID)
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]entity.Order, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}

	var orders []entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, mapError(err)
	}
	rows.Close()

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadItems fills Items of every order with a single query.
func (r *OrderRepository) loadItems(ctx context.Context, orders []entity.Order) error {
	if len(orders) == 0 {
		return nil
	}

	index := make(map[string]int, len(orders))
	args := make([]interface{}, 0, len(orders))
	for i, order := range orders {
		index[order.ID] = i
		args = append(args, order.ID)
	}

	query := `SELECT order_id, product_id, quantity, unit_price, line_total FROM order_items
		WHERE order_id IN (` + strings.TrimSuffix(strings.Repeat("?,", len(orders)), ",") + `)
		ORDER BY order_id, position`
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item entity.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return mapError(err)
		}
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return mapError(rows.Err())
}
