package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/soleshop/soleshop/server/internal/errors"
	"github.com/soleshop/soleshop/server/middleware"
	"github.com/soleshop/soleshop/store"
)

// GetCurrentUser returns the bearer's profile.
// GET /api/v1/users/me
func (s *APIV1Service) GetCurrentUser(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)

	user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return apierrors.Internal("failed to load user", err)
	}
	if user == nil {
		return apierrors.NotFound("user not found")
	}
	return c.JSON(http.StatusOK, convertUser(user))
}

// ListUsers returns all shopper accounts. Admin accounts are excluded, the
// back office lists customers only.
// GET /api/v1/admin/users
func (s *APIV1Service) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	role := store.RoleUser

	users, err := s.Store.ListUsers(ctx, &store.FindUser{Role: &role})
	if err != nil {
		return apierrors.Internal("failed to list users", err)
	}
	response := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, convertUser(user))
	}
	return c.JSON(http.StatusOK, response)
}
