package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Austinpowers7/storehive-backend/internal/apperr"
	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/entity"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Unit        string          `json:"unit"`
	Category    string          `json:"category"`
	Barcode     string          `json:"barcode"`
	SKU         string          `json:"sku"`
	StoreID     string          `json:"store_id"`
	Stock       int             `json:"stock"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	Unit        *string          `json:"unit"`
	Category    *string          `json:"category"`
	Barcode     *string          `json:"barcode"`
	SKU         *string          `json:"sku"`
	IsActive    *bool            `json:"is_active"`
}

type AddToStoreRequest struct {
	ProductID string          `json:"product_id"`
	StoreID   string          `json:"store_id"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	SKU       string          `json:"sku"`
}

type StockRequest struct {
	ProductID string `json:"product_id"`
	StoreID   string `json:"store_id"`
	Quantity  int    `json:"quantity"`
}

// ProductDetail is a product with its inventory rows.
type ProductDetail struct {
	*entity.Product
	Inventories []entity.ProductInventory `json:"inventories"`
}

type ProductService struct {
	store repository.Store
	authz *authz.Evaluator
	now   func() time.Time
}

func NewProductService(store repository.Store, evaluator *authz.Evaluator) *ProductService {
	return &ProductService{
		store: store,
		authz: evaluator,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProductService) ListStoreProducts(ctx context.Context, storeID string) ([]entity.InventoryItem, error) {
	_, err := s.store.Stores().FindByID(ctx, storeID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("store not found")
	}
	if err != nil {
		return nil, fail(err, "finding store")
	}

	items, err := s.store.Products().ListStoreInventory(ctx, storeID)
	if err != nil {
		return nil, fail(err, "listing store products")
	}
	return items, nil
}

func (s *ProductService) findLive(ctx context.Context, r repository.Repositories, id string) (*entity.Product, error) {
	product, err := r.Products().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && product.DeletedAt != nil) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, fail(err, "finding product")
	}
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*ProductDetail, error) {
	product, err := s.findLive(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	inventories, err := s.store.Products().ListInventoriesByProduct(ctx, id)
	if err != nil {
		return nil, fail(err, "listing product inventories")
	}
	return &ProductDetail{Product: product, Inventories: inventories}, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, actor authz.Actor, req CreateProductRequest) (*ProductDetail, error) {
	if err := missingFields([2]string{"name", req.Name}, [2]string{"store_id", req.StoreID}); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() || req.CostPrice.IsNegative() {
		return nil, apperr.Validation("price must not be negative")
	}
	if req.Stock < 0 {
		return nil, apperr.Validation("stock must not be negative")
	}

	storeID := strings.TrimSpace(req.StoreID)
	if err := s.authz.Authorize(ctx, actor, authz.ManageProduct, authz.Target{StoreID: storeID}); err != nil {
		return nil, fail(err, "authorizing product creation")
	}

	now := s.now()
	product := &entity.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Unit:        req.Unit,
		Category:    req.Category,
		Barcode:     req.Barcode,
		SKU:         req.SKU,
		IsActive:    true,
		CreatedBy:   actor.ID,
		UpdatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	inventory := entity.ProductInventory{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		StoreID:   storeID,
		Stock:     req.Stock,
		Price:     req.Price,
		SKU:       req.SKU,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		if _, err := r.Stores().FindByID(ctx, storeID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound("store not found")
			}
			return err
		}
		if err := r.Products().Create(ctx, product); err != nil {
			return err
		}
		return r.Products().CreateInventory(ctx, &inventory)
	})
	if err != nil {
		return nil, fail(err, "creating product")
	}
	return &ProductDetail{Product: product, Inventories: []entity.ProductInventory{inventory}}, nil
}

// authorizeProduct allows actors that may manage products in at least one
// store carrying the product. A product stocked nowhere is left to admins.
func (s *ProductService) authorizeProduct(ctx context.Context, actor authz.Actor, productID string) error {
	if actor.Role == entity.RoleAdmin {
		return nil
	}
	inventories, err := s.store.Products().ListInventoriesByProduct(ctx, productID)
	if err != nil {
		return fail(err, "listing product inventories")
	}

	for _, inv := range inventories {
		ok, err := s.authz.CanAct(ctx, actor, authz.ManageProduct, authz.Target{StoreID: inv.StoreID})
		if err != nil {
			return fail(err, "authorizing product management")
		}
		if ok {
			return nil
		}
	}
	logger.Warn().Msgf("Denied product management of %s for user %s", productID, actor.ID)
	return apperr.PermissionDenied("access denied")
}

func (s *ProductService) UpdateProduct(ctx context.Context, actor authz.Actor, id string, req UpdateProductRequest) (*entity.Product, error) {
	if _, err := s.findLive(ctx, s.store, id); err != nil {
		return nil, err
	}
	if err := s.authorizeProduct(ctx, actor, id); err != nil {
		return nil, err
	}
	if (req.Price != nil && req.Price.IsNegative()) || (req.CostPrice != nil && req.CostPrice.IsNegative()) {
		return nil, apperr.Validation("price must not be negative")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, apperr.Validation("name must not be empty")
	}

	product, err := s.store.Products().Update(ctx, id, entity.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Unit:        req.Unit,
		Category:    req.Category,
		Barcode:     req.Barcode,
		SKU:         req.SKU,
		IsActive:    req.IsActive,
		UpdatedBy:   actor.ID,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, fail(err, "updating product")
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, actor authz.Actor, id string) (*entity.Product, error) {
	if _, err := s.findLive(ctx, s.store, id); err != nil {
		return nil, err
	}
	if err := s.authorizeProduct(ctx, actor, id); err != nil {
		return nil, err
	}

	product, err := s.store.Products().SoftDelete(ctx, id, actor.ID, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, fail(err, "deleting product")
	}
	return product, nil
}

func (s *ProductService) AddProductToStore(ctx context.Context, actor authz.Actor, req AddToStoreRequest) (*entity.ProductInventory, error) {
	if err := missingFields([2]string{"product_id", req.ProductID}, [2]string{"store_id", req.StoreID}); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, apperr.Validation("price must not be negative")
	}
	if req.Stock < 0 {
		return nil, apperr.Validation("stock must not be negative")
	}
	if err := s.authz.Authorize(ctx, actor, authz.ManageProduct, authz.Target{StoreID: req.StoreID}); err != nil {
		return nil, fail(err, "authorizing product stocking")
	}

	now := s.now()
	inventory := &entity.ProductInventory{
		ID:        uuid.NewString(),
		ProductID: req.ProductID,
		StoreID:   req.StoreID,
		Stock:     req.Stock,
		Price:     req.Price,
		SKU:       req.SKU,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		if _, err := s.findLive(ctx, r, req.ProductID); err != nil {
			return err
		}
		if _, err := r.Stores().FindByID(ctx, req.StoreID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound("store not found")
			}
			return err
		}
		err := r.Products().CreateInventory(ctx, inventory)
		if errors.Is(err, repository.ErrConflict) {
			return apperr.Conflict("product already exists in this store")
		}
		return err
	})
	if err != nil {
		return nil, fail(err, "adding product to store")
	}
	return inventory, nil
}

func (s *ProductService) DecrementStock(ctx context.Context, actor authz.Actor, req StockRequest) (*entity.ProductInventory, error) {
	if err := missingFields([2]string{"product_id", req.ProductID}, [2]string{"store_id", req.StoreID}); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, apperr.Validation("quantity must be greater than zero")
	}
	if err := s.authz.Authorize(ctx, actor, authz.ManageProduct, authz.Target{StoreID: req.StoreID}); err != nil {
		return nil, fail(err, "authorizing stock update")
	}

	inventory, err := s.store.Products().DecrementStock(ctx, req.ProductID, req.StoreID, req.Quantity)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.ProductNotFound(req.ProductID)
	case errors.Is(err, repository.ErrInsufficientStock):
		logger.Warn().Msgf("Insufficient stock for product %s in store %s", req.ProductID, req.StoreID)
		return nil, apperr.InsufficientStock(req.ProductID, "")
	case err != nil:
		return nil, fail(err, "decrementing stock")
	}
	return inventory, nil
}
