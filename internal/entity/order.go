package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID               string          `json:"id"`
	CustomerID       string          `json:"customer_id"`
	StoreID          string          `json:"store_id"`
	Items            []OrderItem     `json:"items"`
	Total            decimal.Decimal `json:"total"`
	PaidOnline       bool            `json:"paid_online"`
	CashierConfirmed bool            `json:"cashier_confirmed"`
	CashierID        string          `json:"cashier_id,omitempty"`
	IdempotencyKey   string          `json:"-"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// OrderItem is the snapshot of one order line at checkout time.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CashierSession struct {
	ID          string    `json:"id"`
	SessionCode string    `json:"session_code"`
	QRCode      string    `json:"qr_code"`
	CashierID   string    `json:"cashier_id"`
	StoreID     string    `json:"store_id"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

/*
Mysql Table

CREATE TABLE orders (
	id CHAR(36) PRIMARY KEY,
	customer_id CHAR(36) NOT NULL,
	store_id CHAR(36) NOT NULL,
	total DECIMAL(12,2) NOT NULL,
	...
);

CREATE TABLE order_items (
	order_id CHAR(36) NOT NULL REFERENCES orders(id),
	position INT NOT NULL,
	product_id CHAR(36) NOT NULL,
	quantity INT NOT NULL,
	unit_price DECIMAL(12,2) NOT NULL,
	line_total DECIMAL(12,2) NOT NULL,
	PRIMARY KEY (order_id, position)
);

*/
