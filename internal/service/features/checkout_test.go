package features

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/Austinpowers7/storehive-backend/internal/apperr"
	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/entity"
	"github.com/Austinpowers7/storehive-backend/internal/repository/memdb"
	"github.com/Austinpowers7/storehive-backend/internal/service"
)

type checkoutTestContext struct {
	store    *memdb.Store
	checkout *service.CheckoutService
	order    *entity.Order
	err      error
}

func (c *checkoutTestContext) reset() error {
	store, err := memdb.NewStore()
	if err != nil {
		return err
	}
	evaluator := authz.NewEvaluator(authz.NewRepositoryDirectory(store))
	c.store = store
	c.checkout = service.NewCheckoutService(store, evaluator, nil, nil)
	c.order = nil
	c.err = nil
	return nil
}

func (c *checkoutTestContext) aBusinessOwnedByWithStores(businessID, ownerID, store1, store2 string) error {
	ctx := context.Background()
	now := time.Now().UTC()
	if err := c.store.Users().Create(ctx, &entity.User{ID: ownerID, Email: ownerID + "@example.com", Role: entity.RoleOwner, CreatedAt: now}); err != nil {
		return err
	}
	if err := c.store.Businesses().Create(ctx, &entity.Business{ID: businessID, Name: businessID, OwnerID: ownerID, CreatedAt: now}); err != nil {
		return err
	}
	for _, id := range []string{store1, store2} {
		if err := c.store.Stores().Create(ctx, &entity.Store{ID: id, Name: id, BusinessID: businessID, CreatedAt: now}); err != nil {
			return err
		}
	}
	return nil
}

func (c *checkoutTestContext) productPricedAtWithStockIn(productID, price string, stock int, storeID string) error {
	ctx := context.Background()
	now := time.Now().UTC()
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	if err := c.store.Products().Create(ctx, &entity.Product{ID: productID, Name: "Product " + productID, Price: amount, IsActive: true, CreatedAt: now}); err != nil {
		return err
	}
	return c.store.Products().CreateInventory(ctx, &entity.ProductInventory{
		ID: "inv-" + productID + "-" + storeID, ProductID: productID, StoreID: storeID, Stock: stock, Price: amount, CreatedAt: now,
	})
}

func (c *checkoutTestContext) theStockOfInIsSetTo(productID, storeID string, stock int) error {
	current, err := c.currentStock(productID, storeID)
	if err != nil {
		return err
	}
	if current < stock {
		return fmt.Errorf("cannot raise stock from %d to %d", current, stock)
	}
	if current == stock {
		return nil
	}
	_, err = c.store.Products().DecrementStock(context.Background(), productID, storeID, current-stock)
	return err
}

func (c *checkoutTestContext) place(actor authz.Actor, storeID string, items ...service.OrderItemRequest) {
	c.order, c.err = c.checkout.CreateOrder(context.Background(), actor, service.CreateOrderRequest{StoreID: storeID, Items: items})
}

func customerActor(id string) authz.Actor {
	return authz.Actor{ID: id, Role: entity.RoleCustomer}
}

func (c *checkoutTestContext) customerOrdersOfAt(customerID string, qty int, productID, storeID string) error {
	c.place(customerActor(customerID), storeID, service.OrderItemRequest{ProductID: productID, Quantity: qty})
	return nil
}

func (c *checkoutTestContext) customerOrderedOfAt(customerID string, qty int, productID, storeID string) error {
	c.place(customerActor(customerID), storeID, service.OrderItemRequest{ProductID: productID, Quantity: qty})
	return c.err
}

func (c *checkoutTestContext) customerOrdersTwoItemsAt(customerID string, qty1 int, product1 string, qty2 int, product2, storeID string) error {
	c.place(customerActor(customerID), storeID,
		service.OrderItemRequest{ProductID: product1, Quantity: qty1},
		service.OrderItemRequest{ProductID: product2, Quantity: qty2},
	)
	return nil
}

func (c *checkoutTestContext) cashierOfConfirmsTheOrder(cashierID, storeID string) error {
	if c.order == nil {
		return errors.New("no order placed")
	}
	actor := authz.Actor{ID: cashierID, Role: entity.RoleCashier, StoreID: storeID}
	confirmed, err := c.checkout.ConfirmOrder(context.Background(), actor, c.order.ID)
	c.err = err
	if err == nil {
		c.order = confirmed
	}
	return nil
}

func (c *checkoutTestContext) cashierOfSellsOf(cashierID, storeID string, qty int, productID string) error {
	actor := authz.Actor{ID: cashierID, Role: entity.RoleCashier, StoreID: storeID}
	c.place(actor, storeID, service.OrderItemRequest{ProductID: productID, Quantity: qty})
	return c.err
}

func (c *checkoutTestContext) theOrderSucceedsWithTotal(total string) error {
	if c.err != nil {
		return fmt.Errorf("expected order but got error: %v", c.err)
	}
	if got := c.order.Total.StringFixed(2); got != total {
		return fmt.Errorf("expected total %s, got %s", total, got)
	}
	return nil
}

func (c *checkoutTestContext) theOrderFailsWith(kind string) error {
	if c.err == nil {
		return errors.New("expected error but order succeeded")
	}
	if got := apperr.KindOf(c.err).String(); got != kind {
		return fmt.Errorf("expected %s, got %s: %v", kind, got, c.err)
	}
	return nil
}

func (c *checkoutTestContext) theErrorMessageContains(substr string) error {
	if c.err == nil {
		return errors.New("expected error but got none")
	}
	if !strings.Contains(c.err.Error(), substr) {
		return fmt.Errorf("expected error containing %q, got %q", substr, c.err.Error())
	}
	return nil
}

func (c *checkoutTestContext) currentStock(productID, storeID string) (int, error) {
	item, err := c.store.Products().FindInventory(context.Background(), productID, storeID)
	if err != nil {
		return 0, err
	}
	return item.Stock, nil
}

func (c *checkoutTestContext) theStockOfInIs(productID, storeID string, want int) error {
	got, err := c.currentStock(productID, storeID)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected stock %d, got %d", want, got)
	}
	return nil
}

func (c *checkoutTestContext) storeHasOrders(storeID string, want int) error {
	orders, err := c.store.Orders().ListByStore(context.Background(), storeID)
	if err != nil {
		return err
	}
	if len(orders) != want {
		return fmt.Errorf("expected %d orders, got %d", want, len(orders))
	}
	return nil
}

func (c *checkoutTestContext) storedOrder() (*entity.Order, error) {
	if c.order == nil {
		return nil, errors.New("no order placed")
	}
	return c.store.Orders().FindByID(context.Background(), c.order.ID)
}

func (c *checkoutTestContext) theOrderIsNotConfirmed() error {
	order, err := c.storedOrder()
	if err != nil {
		return err
	}
	if order.CashierConfirmed || order.CashierID != "" {
		return fmt.Errorf("expected unconfirmed order, got confirmed by %q", order.CashierID)
	}
	return nil
}

func (c *checkoutTestContext) theOrderIsConfirmedBy(cashierID string) error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %v", c.err)
	}
	order, err := c.storedOrder()
	if err != nil {
		return err
	}
	if !order.CashierConfirmed || order.CashierID != cashierID {
		return fmt.Errorf("expected confirmation by %s, got confirmed=%v cashier=%q", cashierID, order.CashierConfirmed, order.CashierID)
	}
	return nil
}

func (c *checkoutTestContext) theOrderCustomerIs(customerID string) error {
	order, err := c.storedOrder()
	if err != nil {
		return err
	}
	if order.CustomerID != customerID {
		return fmt.Errorf("expected customer %s, got %s", customerID, order.CustomerID)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})

	// Given steps
	ctx.Step(`^a business "([^"]*)" owned by "([^"]*)" with stores "([^"]*)" and "([^"]*)"$`, tc.aBusinessOwnedByWithStores)
	ctx.Step(`^product "([^"]*)" priced at "([^"]*)" with stock (\d+) in "([^"]*)"$`, tc.productPricedAtWithStockIn)
	ctx.Step(`^the stock of "([^"]*)" in "([^"]*)" is set to (\d+)$`, tc.theStockOfInIsSetTo)
	ctx.Step(`^customer "([^"]*)" ordered (\d+) of "([^"]*)" at "([^"]*)"$`, tc.customerOrderedOfAt)

	// When steps
	ctx.Step(`^customer "([^"]*)" orders (\d+) of "([^"]*)" at "([^"]*)"$`, tc.customerOrdersOfAt)
	ctx.Step(`^customer "([^"]*)" orders (\d+) of "([^"]*)" and (\d+) of "([^"]*)" at "([^"]*)"$`, tc.customerOrdersTwoItemsAt)
	ctx.Step(`^cashier "([^"]*)" of "([^"]*)" confirms the order$`, tc.cashierOfConfirmsTheOrder)
	ctx.Step(`^cashier "([^"]*)" of "([^"]*)" sells (\d+) of "([^"]*)"$`, tc.cashierOfSellsOf)

	// Then steps
	ctx.Step(`^the order succeeds with total "([^"]*)"$`, tc.theOrderSucceedsWithTotal)
	ctx.Step(`^the order fails with "([^"]*)"$`, tc.theOrderFailsWith)
	ctx.Step(`^the error message contains "([^"]*)"$`, tc.theErrorMessageContains)
	ctx.Step(`^the stock of "([^"]*)" in "([^"]*)" is (\d+)$`, tc.theStockOfInIs)
	ctx.Step(`^store "([^"]*)" has (\d+) orders$`, tc.storeHasOrders)
	ctx.Step(`^the order is not confirmed$`, tc.theOrderIsNotConfirmed)
	ctx.Step(`^the order is confirmed by "([^"]*)"$`, tc.theOrderIsConfirmedBy)
	ctx.Step(`^the order customer is "([^"]*)"$`, tc.theOrderCustomerIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
