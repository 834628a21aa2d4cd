package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

const productColumns = `p.id, p.name, p.description, p.price, p.cost_price, p.unit, p.category, p.barcode, p.sku,
	p.is_active, p.created_by, p.updated_by, p.created_at, p.updated_at, p.deleted_at`

const inventoryColumns = `i.id, i.product_id, i.store_id, i.stock, i.price, i.sku, i.created_at, i.updated_at`

type ProductRepository struct {
	q querier
}

func productDest(p *entity.Product, nulls *productNulls) []interface{} {
	return []interface{}{&p.ID, &p.Name, &nulls.description, &p.Price, &p.CostPrice, &nulls.unit, &p.Category,
		&p.Barcode, &nulls.sku, &p.IsActive, &nulls.createdBy, &nulls.updatedBy, &p.CreatedAt, &p.UpdatedAt, &nulls.deletedAt}
}

type productNulls struct {
	description, unit, sku, createdBy, updatedBy sql.NullString
	deletedAt                                    sql.NullTime
}

func (n *productNulls) apply(p *entity.Product) {
	p.Description = n.description.String
	p.Unit = n.unit.String
	p.SKU = n.sku.String
	p.CreatedBy = n.createdBy.String
	p.UpdatedBy = n.updatedBy.String
	if n.deletedAt.Valid {
		t := n.deletedAt.Time
		p.DeletedAt = &t
	}
}

func inventoryDest(inv *entity.ProductInventory, sku *sql.NullString) []interface{} {
	return []interface{}{&inv.ID, &inv.ProductID, &inv.StoreID, &inv.Stock, &inv.Price, sku, &inv.CreatedAt, &inv.UpdatedAt}
}

func scanProduct(row scanner) (*entity.Product, error) {
	var product entity.Product
	var nulls productNulls
	if err := row.Scan(productDest(&product, &nulls)...); err != nil {
		return nil, mapError(err)
	}
	nulls.apply(&product)
	return &product, nil
}

func scanInventoryItem(row scanner) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	var sku sql.NullString
	var nulls productNulls

	dest := append(inventoryDest(&item.ProductInventory, &sku), productDest(&item.Product, &nulls)...)
	if err := row.Scan(dest...); err != nil {
		return nil, mapError(err)
	}
	item.SKU = sku.String
	nulls.apply(&item.Product)
	return &item, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	query := `INSERT INTO products (id, name, description, price, cost_price, unit, category, barcode, sku, is_active,
		created_by, updated_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query, product.ID, product.Name, nullString(product.Description), product.Price,
		product.CostPrice, nullString(product.Unit), product.Category, product.Barcode, nullString(product.SKU),
		product.IsActive, nullString(product.CreatedBy), nullString(product.UpdatedBy), product.CreatedAt, product.UpdatedAt)
	return mapError(err)
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = ?`
	return scanProduct(r.q.QueryRowContext(ctx, query, id))
}

func (r *ProductRepository) Update(ctx context.Context, id string, update entity.ProductUpdate) (*entity.Product, error) {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.Description != nil {
		set("description", nullString(*update.Description))
	}
	if update.Price != nil {
		set("price", *update.Price)
	}
	if update.CostPrice != nil {
		set("cost_price", *update.CostPrice)
	}
	if update.Unit != nil {
		set("unit", nullString(*update.Unit))
	}
	if update.Category != nil {
		set("category", *update.Category)
	}
	if update.Barcode != nil {
		set("barcode", *update.Barcode)
	}
	if update.SKU != nil {
		set("sku", nullString(*update.SKU))
	}
	if update.IsActive != nil {
		set("is_active", *update.IsActive)
	}
	set("updated_by", nullString(update.UpdatedBy))
	set("updated_at", time.Now().UTC())
	args = append(args, id)

	query := `UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND deleted_at IS NULL`
	if err := execAffecting(ctx, r.q, query, args...); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *ProductRepository) SoftDelete(ctx context.Context, id, updatedBy string, at time.Time) (*entity.Product, error) {
	query := `UPDATE products SET is_active = 0, deleted_at = ?, updated_by = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
	if err := execAffecting(ctx, r.q, query, at, nullString(updatedBy), at, id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *ProductRepository) CreateInventory(ctx context.Context, inventory *entity.ProductInventory) error {
	query := `INSERT INTO product_inventories (id, product_id, store_id, stock, price, sku, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query, inventory.ID, inventory.ProductID, inventory.StoreID, inventory.Stock,
		inventory.Price, nullString(inventory.SKU), inventory.CreatedAt, inventory.UpdatedAt)
	return mapError(err)
}

func (r *ProductRepository) FindInventory(ctx context.Context, productID, storeID string) (*entity.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + `, ` + productColumns + `
		FROM product_inventories i JOIN products p ON p.id = i.product_id
		WHERE i.product_id = ? AND i.store_id = ?`
	return scanInventoryItem(r.q.QueryRowContext(ctx, query, productID, storeID))
}

func (r *ProductRepository) ListInventoriesByProduct(ctx context.Context, productID string) ([]entity.ProductInventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM product_inventories i WHERE i.product_id = ? ORDER BY i.created_at`
	rows, err := r.q.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var inventories []entity.ProductInventory
	for rows.Next() {
		var inv entity.ProductInventory
		var sku sql.NullString
		if err := rows.Scan(inventoryDest(&inv, &sku)...); err != nil {
			return nil, mapError(err)
		}
		inv.SKU = sku.String
		inventories = append(inventories, inv)
	}
	return inventories, mapError(rows.Err())
}

func (r *ProductRepository) ListStoreInventory(ctx context.Context, storeID string) ([]entity.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + `, ` + productColumns + `
		FROM product_inventories i JOIN products p ON p.id = i.product_id
		WHERE i.store_id = ? AND p.deleted_at IS NULL AND p.is_active = 1
		ORDER BY p.name`
	rows, err := r.q.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var items []entity.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, mapError(rows.Err())
}

func (r *ProductRepository) DecrementStock(ctx context.Context, productID, storeID string, quantity int) (*entity.ProductInventory, error) {
	query := `UPDATE product_inventories SET stock = stock - ?, updated_at = ?
		WHERE product_id = ? AND store_id = ? AND stock >= ?`
	res, err := r.q.ExecContext(ctx, query, quantity, time.Now().UTC(), productID, storeID, quantity)
	if err != nil {
		return nil, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, mapError(err)
	}
	if n == 0 {
		// tell a missing row apart from a failed guard
		var stock int
		err := r.q.QueryRowContext(ctx, `SELECT stock FROM product_inventories WHERE product_id = ? AND store_id = ?`,
			productID, storeID).Scan(&stock)
		if err != nil {
			return nil, mapError(err)
		}
		return nil, repository.ErrInsufficientStock
	}

	item, err := r.FindInventory(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}
	return &item.ProductInventory, nil
}
