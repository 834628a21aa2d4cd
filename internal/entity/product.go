package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Unit        string          `json:"unit,omitempty"`
	Category    string          `json:"category"`
	Barcode     string          `json:"barcode"`
	SKU         string          `json:"sku,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedBy   string          `json:"created_by,omitempty"`
	UpdatedBy   string          `json:"updated_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// ProductUpdate is a partial product update. Nil fields are left as is.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	CostPrice   *decimal.Decimal
	Unit        *string
	Category    *string
	Barcode     *string
	SKU         *string
	IsActive    *bool
	UpdatedBy   string
}

// ProductInventory is the stock and price of one product at one store.
type ProductInventory struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	StoreID   string          `json:"store_id"`
	Stock     int             `json:"stock"`
	Price     decimal.Decimal `json:"price"`
	SKU       string          `json:"sku,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// InventoryItem is an inventory row joined with its product.
type InventoryItem struct {
	ProductInventory
	Product Product `json:"product"`
}

/*
Mysql Schema:
CREATE TABLE product_inventories (
	id CHAR(36) PRIMARY KEY,
	product_id CHAR(36) NOT NULL,
	store_id CHAR(36) NOT NULL,
	stock INT NOT NULL,
	price DECIMAL(12,2) NOT NULL,
	sku VARCHAR(64) NULL,
	UNIQUE KEY product_store_idx (product_id, store_id),
	CHECK (stock >= 0)
);
*/
