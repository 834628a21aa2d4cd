package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create adds a product and stocks it at a store --> /products
func (h *ProductHandler) Create(c echo.Context, actor authz.Actor) error {
	var req service.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}

	product, err := h.productService.CreateProduct(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.productService.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Update(c echo.Context, actor authz.Actor) error {
	var req service.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}

	product, err := h.productService.UpdateProduct(c.Request().Context(), actor, c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c echo.Context, actor authz.Actor) error {
	product, err := h.productService.DeleteProduct(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// AddToStore stocks an existing product at another store --> /products/add-to-store
func (h *ProductHandler) AddToStore(c echo.Context, actor authz.Actor) error {
	var req service.AddToStoreRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}

	inventory, err := h.productService.AddProductToStore(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, inventory)
}

// DecrementStock --> /products/stock
func (h *ProductHandler) DecrementStock(c echo.Context, actor authz.Actor) error {
	var req service.StockRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}

	inventory, err := h.productService.DecrementStock(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, inventory)
}
