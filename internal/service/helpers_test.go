package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Austinpowers7/storehive-backend/internal/auth"
	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/entity"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
	"github.com/Austinpowers7/storehive-backend/internal/repository/memdb"
)

const (
	testOwnerID = "owner-1"
	testStore1  = "store-1"
	testStore2  = "store-2"
)

var (
	admin     = authz.Actor{ID: "admin-1", Role: entity.RoleAdmin}
	owner     = authz.Actor{ID: testOwnerID, Role: entity.RoleOwner}
	manager   = authz.Actor{ID: "manager-1", Role: entity.RoleManager, StoreID: testStore1}
	cashier   = authz.Actor{ID: "cashier-1", Role: entity.RoleCashier, StoreID: testStore1}
	cashier2  = authz.Actor{ID: "cashier-2", Role: entity.RoleCashier, StoreID: testStore2}
	customer  = authz.Actor{ID: "customer-1", Role: entity.RoleCustomer}
	testPrice = map[string]string{"p1": "10.00", "p2": "5.00"}
)

type recordedEvent struct {
	event   string
	orderID string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) PublishOrder(ctx context.Context, event string, order *entity.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{event: event, orderID: order.ID})
	return p.err
}

func (p *recordingPublisher) recorded() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (g *memoryIdempotency) Claim(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	return true, nil
}

func (g *memoryIdempotency) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}

type testEnv struct {
	store    *memdb.Store
	events   *recordingPublisher
	checkout *CheckoutService
	auth     *AuthService
	users    *UserService
	stores   *StoreService
	products *ProductService
	tokens   *auth.TokenIssuer
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := memdb.NewStore()
	require.NoError(t, err)
	return newEnvWithStore(t, store, store)
}

// newEnvWithStore builds the services on svcStore while seeding and
// inspection go through the plain memdb store.
func newEnvWithStore(t *testing.T, store *memdb.Store, svcStore repository.Store) *testEnv {
	t.Helper()
	evaluator := authz.NewEvaluator(authz.NewRepositoryDirectory(store))
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	events := &recordingPublisher{}

	return &testEnv{
		store:    store,
		events:   events,
		checkout: NewCheckoutService(svcStore, evaluator, &memoryIdempotency{keys: map[string]bool{}}, events),
		auth:     NewAuthService(svcStore, evaluator, hasher, tokens),
		users:    NewUserService(svcStore, evaluator, hasher),
		stores:   NewStoreService(svcStore, evaluator),
		products: NewProductService(svcStore, evaluator),
		tokens:   tokens,
	}
}

// seed creates owner-1 with business biz-1 and stores store-1 and store-2.
// Products p1 and p2 are stocked at store-1 with the given stock.
func (e *testEnv) seed(t *testing.T, stockP1, stockP2 int) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, e.store.Users().Create(ctx, &entity.User{ID: testOwnerID, Email: "owner@example.com", Role: entity.RoleOwner, CreatedAt: now}))
	require.NoError(t, e.store.Businesses().Create(ctx, &entity.Business{ID: "biz-1", Name: "Acme", OwnerID: testOwnerID, CreatedAt: now}))
	require.NoError(t, e.store.Stores().Create(ctx, &entity.Store{ID: testStore1, Name: "Main", BusinessID: "biz-1", CreatedAt: now}))
	require.NoError(t, e.store.Stores().Create(ctx, &entity.Store{ID: testStore2, Name: "Branch", BusinessID: "biz-1", CreatedAt: now.Add(time.Second)}))

	for id, stock := range map[string]int{"p1": stockP1, "p2": stockP2} {
		price := decimal.RequireFromString(testPrice[id])
		require.NoError(t, e.store.Products().Create(ctx, &entity.Product{ID: id, Name: "Product " + id, Price: price, IsActive: true, CreatedAt: now}))
		require.NoError(t, e.store.Products().CreateInventory(ctx, &entity.ProductInventory{
			ID: "inv-" + id, ProductID: id, StoreID: testStore1, Stock: stock, Price: price, CreatedAt: now,
		}))
	}
}

func (e *testEnv) stock(t *testing.T, productID, storeID string) int {
	t.Helper()
	item, err := e.store.Products().FindInventory(context.Background(), productID, storeID)
	require.NoError(t, err)
	return item.Stock
}

// failingBusinessStore fails every business write made inside a transaction.
type failingBusinessStore struct {
	repository.Store
}

func (s failingBusinessStore) Transaction(ctx context.Context, fn func(r repository.Repositories) error) error {
	return s.Store.Transaction(ctx, func(r repository.Repositories) error {
		return fn(failingBusinessRepos{r})
	})
}

type failingBusinessRepos struct {
	repository.Repositories
}

func (r failingBusinessRepos) Businesses() repository.BusinessRepository {
	return failingBusinesses{r.Repositories.Businesses()}
}

type failingBusinesses struct {
	repository.BusinessRepository
}

func (failingBusinesses) Create(ctx context.Context, business *entity.Business) error {
	return errors.New("disk full")
}
