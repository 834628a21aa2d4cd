package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/service"
)

const idempotencyHeader = "Idempotency-Key"

type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// CreateOrder places a sale and decrements stock --> /checkout
func (h *CheckoutHandler) CreateOrder(c echo.Context, actor authz.Actor) error {
	var req service.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}
	req.IdempotencyKey = c.Request().Header.Get(idempotencyHeader)

	order, err := h.checkoutService.CreateOrder(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// ConfirmOrder marks an order confirmed --> /checkout/confirm/:orderId
func (h *CheckoutHandler) ConfirmOrder(c echo.Context, actor authz.Actor) error {
	order, err := h.checkoutService.ConfirmOrder(c.Request().Context(), actor, c.Param("orderId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *CheckoutHandler) ListByStore(c echo.Context, actor authz.Actor) error {
	orders, err := h.checkoutService.ListOrdersByStore(c.Request().Context(), actor, c.Param("storeId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *CheckoutHandler) ListByCashier(c echo.Context, actor authz.Actor) error {
	orders, err := h.checkoutService.ListOrdersByCashier(c.Request().Context(), actor, c.Param("cashierId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}
