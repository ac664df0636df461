// Package middleware holds the echo middleware shared by all API routes.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/soleshop/soleshop/server/auth"
	apierrors "github.com/soleshop/soleshop/server/internal/errors"
	"github.com/soleshop/soleshop/store"
)

const (
	contextKeyUserID = "soleshop.user_id"
	contextKeyRole   = "soleshop.role"
)

// UserIDFromContext returns the authenticated user's ID, or "" for
// anonymous requests.
func UserIDFromContext(c echo.Context) string {
	id, _ := c.Get(contextKeyUserID).(string)
	return id
}

// RoleFromContext returns the authenticated user's role, or "".
func RoleFromContext(c echo.Context) string {
	role, _ := c.Get(contextKeyRole).(string)
	return role
}

// BearerAuth verifies the Authorization header and stores the caller's
// identity on the echo context.
func BearerAuth(signer *auth.Signer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return apierrors.Unauthorized("missing bearer token")
			}
			claims, err := signer.Verify(token)
			if err != nil {
				return apierrors.Unauthorized("invalid token")
			}
			c.Set(contextKeyUserID, claims.UserID)
			c.Set(contextKeyRole, claims.Role)
			return next(c)
		}
	}
}

// RequireAdmin rejects callers without the admin role. It must run after
// BearerAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if RoleFromContext(c) != store.RoleAdmin {
				return apierrors.Forbidden("admin only")
			}
			return next(c)
		}
	}
}
