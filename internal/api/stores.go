package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/service"
)

type StoreHandler struct {
	storeService   *service.StoreService
	userService    *service.UserService
	productService *service.ProductService
}

func NewStoreHandler(storeService *service.StoreService, userService *service.UserService, productService *service.ProductService) *StoreHandler {
	return &StoreHandler{
		storeService:   storeService,
		userService:    userService,
		productService: productService,
	}
}

// Create opens a store, creating the owner's business when needed --> /stores
func (h *StoreHandler) Create(c echo.Context, actor authz.Actor) error {
	var req service.CreateStoreRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}

	store, err := h.storeService.CreateStore(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, store)
}

func (h *StoreHandler) List(c echo.Context) error {
	stores, err := h.storeService.ListStores(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stores)
}

func (h *StoreHandler) Get(c echo.Context) error {
	store, err := h.storeService.GetStore(c.Request().Context(), c.Param("storeId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) ListByBusiness(c echo.Context) error {
	stores, err := h.storeService.ListStoresByBusiness(c.Request().Context(), c.Param("businessId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stores)
}

// ListUsers lists the active users assigned to a store --> /stores/:storeId/users
func (h *StoreHandler) ListUsers(c echo.Context, actor authz.Actor) error {
	users, err := h.userService.ListStoreUsers(c.Request().Context(), actor, c.Param("storeId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// ListProducts lists the store's inventory --> /stores/:storeId/products
func (h *StoreHandler) ListProducts(c echo.Context) error {
	items, err := h.productService.ListStoreProducts(c.Request().Context(), c.Param("storeId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}
