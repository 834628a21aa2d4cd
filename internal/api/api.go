// Package api exposes the services over HTTP with echo.
package api

import (
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Austinpowers7/storehive-backend/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type Services struct {
	Checkout *service.CheckoutService
	Auth     *service.AuthService
	Users    *service.UserService
	Stores   *service.StoreService
	Products *service.ProductService
}

// RegisterRoutes mounts every route under /api. All routes except health,
// register and login require a bearer token signed with signingKey.
func RegisterRoutes(e *echo.Echo, signingKey []byte, svc Services) {
	checkout := NewCheckoutHandler(svc.Checkout)
	authH := NewAuthHandler(svc.Auth)
	users := NewUserHandler(svc.Users)
	stores := NewStoreHandler(svc.Stores, svc.Users, svc.Products)
	products := NewProductHandler(svc.Products)

	api := e.Group("/api")
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": "storehive-backend",
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)

	secured := api.Group("", jwtMiddleware(signingKey))

	secured.POST("/auth/session", withActor(authH.CreateSession))
	secured.DELETE("/auth/session", withActor(authH.EndSession))

	secured.POST("/checkout", withActor(checkout.CreateOrder))
	secured.POST("/checkout/confirm/:orderId", withActor(checkout.ConfirmOrder))
	secured.GET("/checkout/stores/:storeId/orders", withActor(checkout.ListByStore))
	secured.GET("/checkout/cashiers/:cashierId/orders", withActor(checkout.ListByCashier))

	secured.GET("/users/active", withActor(users.ListActive))
	secured.GET("/users/:id", users.Get)
	secured.PUT("/users/:id", withActor(users.Update))
	secured.DELETE("/users/:id", withActor(users.Delete))
	secured.POST("/users/:id/restore", withActor(users.Restore))

	secured.POST("/admins", withActor(users.CreateAdmin))
	secured.GET("/admins", withActor(users.ListAdmins))
	secured.PUT("/admins/:id", withActor(users.UpdateAdmin))
	secured.DELETE("/admins/:id", withActor(users.DeleteAdmin))

	secured.POST("/stores", withActor(stores.Create))
	secured.GET("/stores", stores.List)
	secured.GET("/stores/business/:businessId", stores.ListByBusiness)
	secured.GET("/stores/:storeId", stores.Get)
	secured.GET("/stores/:storeId/users", withActor(stores.ListUsers))
	secured.GET("/stores/:storeId/products", stores.ListProducts)

	secured.POST("/products", withActor(products.Create))
	secured.POST("/products/add-to-store", withActor(products.AddToStore))
	secured.PATCH("/products/stock", withActor(products.DecrementStock))
	secured.GET("/products/:id", products.Get)
	secured.PUT("/products/:id", withActor(products.Update))
	secured.DELETE("/products/:id", withActor(products.Delete))
}
