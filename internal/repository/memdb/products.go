package memdb

import (
	"context"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

type ProductRepository struct {
	r runner
}

func (pr *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	return pr.r.write(ctx, func(txn *memdb.Txn) error {
		if ok, err := exists(txn, tableProducts, "id", product.ID); err != nil || ok {
			return conflictOr(err)
		}
		p := *product
		return txn.Insert(tableProducts, &p)
	})
}

func (pr *ProductRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	var product *entity.Product
	err := pr.r.read(ctx, func(txn *memdb.Txn) (err error) {
		product, err = first[entity.Product](txn, tableProducts, "id", id)
		return err
	})
	return product, err
}

func findLiveProduct(txn *memdb.Txn, id string) (*entity.Product, error) {
	product, err := first[entity.Product](txn, tableProducts, "id", id)
	if err != nil {
		return nil, err
	}
	if product.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	return product, nil
}

func (pr *ProductRepository) Update(ctx context.Context, id string, update entity.ProductUpdate) (*entity.Product, error) {
	var product *entity.Product
	err := pr.r.write(ctx, func(txn *memdb.Txn) (err error) {
		product, err = findLiveProduct(txn, id)
		if err != nil {
			return err
		}

		setString := func(dst *string, src *string) {
			if src != nil {
				*dst = *src
			}
		}
		setString(&product.Name, update.Name)
		setString(&product.Description, update.Description)
		setString(&product.Unit, update.Unit)
		setString(&product.Category, update.Category)
		setString(&product.Barcode, update.Barcode)
		setString(&product.SKU, update.SKU)
		if update.Price != nil {
			product.Price = *update.Price
		}
		if update.CostPrice != nil {
			product.CostPrice = *update.CostPrice
		}
		if update.IsActive != nil {
			product.IsActive = *update.IsActive
		}
		product.UpdatedBy = update.UpdatedBy
		product.UpdatedAt = time.Now().UTC()

		p := *product
		return txn.Insert(tableProducts, &p)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (pr *ProductRepository) SoftDelete(ctx context.Context, id, updatedBy string, at time.Time) (*entity.Product, error) {
	var product *entity.Product
	err := pr.r.write(ctx, func(txn *memdb.Txn) (err error) {
		product, err = findLiveProduct(txn, id)
		if err != nil {
			return err
		}
		product.IsActive = false
		product.DeletedAt = &at
		product.UpdatedBy = updatedBy
		product.UpdatedAt = at

		p := *product
		return txn.Insert(tableProducts, &p)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (pr *ProductRepository) CreateInventory(ctx context.Context, inventory *entity.ProductInventory) error {
	return pr.r.write(ctx, func(txn *memdb.Txn) error {
		if ok, err := exists(txn, tableInventories, "id", inventory.ID); err != nil || ok {
			return conflictOr(err)
		}
		if ok, err := exists(txn, tableInventories, "product_store", inventory.ProductID, inventory.StoreID); err != nil || ok {
			return conflictOr(err)
		}
		if ok, err := exists(txn, tableProducts, "id", inventory.ProductID); err != nil || !ok {
			return notFoundOr(err)
		}
		if ok, err := exists(txn, tableStores, "id", inventory.StoreID); err != nil || !ok {
			return notFoundOr(err)
		}
		if inventory.Stock < 0 {
			return repository.ErrInsufficientStock
		}
		inv := *inventory
		return txn.Insert(tableInventories, &inv)
	})
}

func joinProduct(txn *memdb.Txn, inv entity.ProductInventory) (*entity.InventoryItem, error) {
	product, err := first[entity.Product](txn, tableProducts, "id", inv.ProductID)
	if err != nil {
		return nil, err
	}
	return &entity.InventoryItem{ProductInventory: inv, Product: *product}, nil
}

func (pr *ProductRepository) FindInventory(ctx context.Context, productID, storeID string) (*entity.InventoryItem, error) {
	var item *entity.InventoryItem
	err := pr.r.read(ctx, func(txn *memdb.Txn) error {
		inv, err := first[entity.ProductInventory](txn, tableInventories, "product_store", productID, storeID)
		if err != nil {
			return err
		}
		item, err = joinProduct(txn, *inv)
		return err
	})
	return item, err
}

func (pr *ProductRepository) ListInventoriesByProduct(ctx context.Context, productID string) ([]entity.ProductInventory, error) {
	var inventories []entity.ProductInventory
	err := pr.r.read(ctx, func(txn *memdb.Txn) (err error) {
		inventories, err = collect[entity.ProductInventory](txn, nil, tableInventories, "product", productID)
		return err
	})
	sort.SliceStable(inventories, func(i, j int) bool {
		return inventories[i].CreatedAt.Before(inventories[j].CreatedAt)
	})
	return inventories, err
}

func (pr *ProductRepository) ListStoreInventory(ctx context.Context, storeID string) ([]entity.InventoryItem, error) {
	var items []entity.InventoryItem
	err := pr.r.read(ctx, func(txn *memdb.Txn) error {
		inventories, err := collect[entity.ProductInventory](txn, nil, tableInventories, "store", storeID)
		if err != nil {
			return err
		}
		for _, inv := range inventories {
			item, err := joinProduct(txn, inv)
			if err != nil {
				return err
			}
			if item.Product.IsActive && item.Product.DeletedAt == nil {
				items = append(items, *item)
			}
		}
		return nil
	})
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Product.Name < items[j].Product.Name
	})
	return items, err
}

func (pr *ProductRepository) DecrementStock(ctx context.Context, productID, storeID string, quantity int) (*entity.ProductInventory, error) {
	var inventory *entity.ProductInventory
	err := pr.r.write(ctx, func(txn *memdb.Txn) (err error) {
		inventory, err = first[entity.ProductInventory](txn, tableInventories, "product_store", productID, storeID)
		if err != nil {
			return err
		}
		if inventory.Stock < quantity {
			return repository.ErrInsufficientStock
		}
		inventory.Stock -= quantity
		inventory.UpdatedAt = time.Now().UTC()

		inv := *inventory
		return txn.Insert(tableInventories, &inv)
	})
	if err != nil {
		return nil, err
	}
	return inventory, nil
}
