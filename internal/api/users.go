package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Get returns a user with its business and stores --> /users/:id
func (h *UserHandler) Get(c echo.Context) error {
	profile, err := h.userService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) Update(c echo.Context, actor authz.Actor) error {
	var req service.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), actor, c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c echo.Context, actor authz.Actor) error {
	if err := h.userService.DeleteUser(c.Request().Context(), actor, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "user deleted"})
}

func (h *UserHandler) Restore(c echo.Context, actor authz.Actor) error {
	user, err := h.userService.RestoreUser(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListActive(c echo.Context, actor authz.Actor) error {
	users, err := h.userService.ListActiveUsers(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// CreateAdmin adds another administrator --> /admins
func (h *UserHandler) CreateAdmin(c echo.Context, actor authz.Actor) error {
	var req service.CreateAdminRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}

	admin, err := h.userService.CreateAdmin(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, admin)
}

func (h *UserHandler) ListAdmins(c echo.Context, actor authz.Actor) error {
	admins, err := h.userService.ListActiveAdmins(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, admins)
}

func (h *UserHandler) UpdateAdmin(c echo.Context, actor authz.Actor) error {
	var req service.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}

	admin, err := h.userService.UpdateAdmin(c.Request().Context(), actor, c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, admin)
}

func (h *UserHandler) DeleteAdmin(c echo.Context, actor authz.Actor) error {
	if err := h.userService.DeleteAdmin(c.Request().Context(), actor, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "admin deleted"})
}
