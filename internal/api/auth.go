package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionRequest struct {
	StoreID string `json:"store_id"`
}

// Register creates a user account --> /auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}

	result, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// Login exchanges credentials for a bearer token --> /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateSession opens a cashier session with a QR code --> /auth/session
func (h *AuthHandler) CreateSession(c echo.Context, actor authz.Actor) error {
	var req sessionRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}

	session, err := h.authService.CreateCashierSession(c.Request().Context(), actor, req.StoreID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *AuthHandler) EndSession(c echo.Context, actor authz.Actor) error {
	if err := h.authService.EndCashierSession(c.Request().Context(), actor); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "session ended"})
}
