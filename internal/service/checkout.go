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

type OrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	StoreID    string             `json:"store_id"`
	CustomerID string             `json:"customer_id"`
	Items      []OrderItemRequest `json:"items"`
	PaidOnline bool               `json:"paid_online"`
	// IdempotencyKey comes from the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

func (r *CreateOrderRequest) validate() error {
	r.StoreID = strings.TrimSpace(r.StoreID)
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.IdempotencyKey = strings.TrimSpace(r.IdempotencyKey)

	if r.StoreID == "" {
		return apperr.Validation("store id is required")
	}
	if len(r.Items) == 0 {
		return apperr.Validation("order must contain at least one item")
	}
	for i, item := range r.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return apperr.Validationf("item %d: product id is required", i)
		}
		if item.Quantity <= 0 {
			return apperr.Validationf("item %d: quantity must be greater than zero", i)
		}
	}
	return nil
}

// CheckoutService creates and confirms orders against live inventory.
type CheckoutService struct {
	store       repository.Store
	authz       *authz.Evaluator
	idempotency IdempotencyGuard
	events      EventPublisher
	now         func() time.Time
}

// NewCheckoutService creates a new instance of CheckoutService. A nil guard or
// publisher disables idempotency keys or events.
func NewCheckoutService(store repository.Store, evaluator *authz.Evaluator, idempotency IdempotencyGuard, events EventPublisher) *CheckoutService {
	if idempotency == nil {
		idempotency = NoopIdempotency{}
	}
	if events == nil {
		events = NoopPublisher{}
	}
	return &CheckoutService{
		store:       store,
		authz:       evaluator,
		idempotency: idempotency,
		events:      events,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder validates every item against the store's inventory, decrements
// stock and persists the order in one transaction.
func (s *CheckoutService) CreateOrder(ctx context.Context, actor authz.Actor, req CreateOrderRequest) (*entity.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, actor, authz.CreateOrder, authz.Target{StoreID: req.StoreID}); err != nil {
		return nil, fail(err, "authorizing order creation")
	}

	now := s.now()
	order := &entity.Order{
		ID:             uuid.NewString(),
		CustomerID:     actor.ID,
		StoreID:        req.StoreID,
		PaidOnline:     req.PaidOnline,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	// assigned is set when the caller names a customer other than itself
	assigned := false
	switch actor.Role {
	case entity.RoleCashier:
		// cashier-assisted sale
		order.CashierID = actor.ID
		order.CashierConfirmed = true
		order.CustomerID = entity.WalkInCustomerID
		if req.CustomerID != "" {
			order.CustomerID = req.CustomerID
			assigned = true
		}
	case entity.RoleAdmin:
		if req.CustomerID != "" {
			order.CustomerID = req.CustomerID
			assigned = true
		}
	}

	if req.IdempotencyKey != "" {
		claimed, err := s.idempotency.Claim(ctx, req.IdempotencyKey)
		if err != nil {
			logger.Error().Err(err).Msgf("Error claiming idempotency key %s", req.IdempotencyKey)
			return nil, apperr.Transient(err)
		}
		if !claimed {
			return nil, apperr.Conflict("idempotency key already used")
		}
	}

	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		if assigned {
			if err := checkCustomer(ctx, r.Users(), order.CustomerID); err != nil {
				return err
			}
		}
		return s.placeOrder(ctx, r, order, req.Items)
	})
	if err != nil {
		if req.IdempotencyKey != "" {
			if relErr := s.idempotency.Release(context.WithoutCancel(ctx), req.IdempotencyKey); relErr != nil {
				logger.Error().Err(relErr).Msgf("Error releasing idempotency key %s", req.IdempotencyKey)
			}
		}
		if apperr.Is(err, apperr.KindInsufficientStock) || apperr.Is(err, apperr.KindNotFound) {
			logger.Warn().Msgf("Order rejected for store %s: %v", req.StoreID, err)
		}
		return nil, fail(err, "creating order")
	}

	s.publish(ctx, EventOrderCreated, order)
	return order, nil
}

// checkCustomer accepts the walk-in customer or an active CUSTOMER.
func checkCustomer(ctx context.Context, users repository.UserRepository, id string) error {
	if id == entity.WalkInCustomerID {
		return nil
	}
	user, err := users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && user.Role != entity.RoleCustomer) {
		return apperr.Validation("invalid customer id")
	}
	return err
}

func (s *CheckoutService) placeOrder(ctx context.Context, r repository.Repositories, order *entity.Order, items []OrderItemRequest) error {
	products := r.Products()

	total := decimal.Zero
	for _, item := range items {
		inv, err := products.FindInventory(ctx, item.ProductID, order.StoreID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ProductNotFound(item.ProductID)
		}
		if err != nil {
			return err
		}
		if !inv.Product.IsActive || inv.Product.DeletedAt != nil {
			return apperr.ProductNotFound(item.ProductID)
		}
		if inv.Stock < item.Quantity {
			return apperr.InsufficientStock(item.ProductID, inv.Product.Name)
		}

		lineTotal := inv.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)
		order.Items = append(order.Items, entity.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: inv.Price,
			LineTotal: lineTotal,
		})
	}
	order.Total = total

	for _, item := range order.Items {
		_, err := products.DecrementStock(ctx, item.ProductID, order.StoreID, item.Quantity)
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			return apperr.InsufficientStock(item.ProductID, "")
		case errors.Is(err, repository.ErrNotFound):
			return apperr.ProductNotFound(item.ProductID)
		case err != nil:
			return err
		}
	}

	err := r.Orders().Create(ctx, order)
	if errors.Is(err, repository.ErrConflict) {
		return apperr.Conflict("idempotency key already used")
	}
	return err
}

// ConfirmOrder marks an order of the cashier's store as confirmed. Orders of
// other stores are reported as not found.
func (s *CheckoutService) ConfirmOrder(ctx context.Context, actor authz.Actor, orderID string) (*entity.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, apperr.Validation("order id is required")
	}
	if err := s.authz.Authorize(ctx, actor, authz.ConfirmOrder, authz.Target{}); err != nil {
		return nil, fail(err, "authorizing order confirmation")
	}

	storeScope := actor.StoreID
	if actor.Role == entity.RoleAdmin {
		storeScope = ""
	} else if storeScope == "" {
		return nil, apperr.NotFound("order not found")
	}

	var order *entity.Order
	err := s.store.Transaction(ctx, func(r repository.Repositories) (err error) {
		order, err = r.Orders().Confirm(ctx, orderID, actor.ID, storeScope)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, fail(err, "confirming order")
	}

	s.publish(ctx, EventOrderConfirmed, order)
	return order, nil
}

func (s *CheckoutService) ListOrdersByStore(ctx context.Context, actor authz.Actor, storeID string) ([]entity.Order, error) {
	if strings.TrimSpace(storeID) == "" {
		return nil, apperr.Validation("store id is required")
	}
	if err := s.authz.Authorize(ctx, actor, authz.ListOrders, authz.Target{StoreID: storeID}); err != nil {
		return nil, fail(err, "authorizing order listing")
	}

	orders, err := s.store.Orders().ListByStore(ctx, storeID)
	if err != nil {
		return nil, fail(err, "listing orders by store")
	}
	return orders, nil
}

func (s *CheckoutService) ListOrdersByCashier(ctx context.Context, actor authz.Actor, cashierID string) ([]entity.Order, error) {
	if strings.TrimSpace(cashierID) == "" {
		return nil, apperr.Validation("cashier id is required")
	}
	if err := s.authz.Authorize(ctx, actor, authz.ListOrders, authz.Target{}); err != nil {
		return nil, fail(err, "authorizing order listing")
	}

	orders, err := s.store.Orders().ListByCashier(ctx, cashierID)
	if err != nil {
		return nil, fail(err, "listing orders by cashier")
	}
	return orders, nil
}

// publish logs failures instead of returning them: the order is already committed.
func (s *CheckoutService) publish(ctx context.Context, event string, order *entity.Order) {
	if err := s.events.PublishOrder(ctx, event, order); err != nil {
		logger.Error().Err(err).Msgf("Error publishing order %s event for order %s", event, order.ID)
	}
}
