// Package auth gates routes on the identity resolved earlier in the
// middleware chain.
package auth

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/models"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

func SetIdentity(c echo.Context, userID string, role models.Role) {
	c.Set(CtxUserID, userID)
	c.Set(CtxRole, role)
}

func Identity(c echo.Context) (string, models.Role, bool) {
	id, _ := c.Get(CtxUserID).(string)
	role, _ := c.Get(CtxRole).(models.Role)
	return id, role, id != ""
}

func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, _, ok := Identity(c); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "please login to continue")
		}
		return next(c)
	}
}

// RequireRole lets the request through when the caller holds one of the
// required roles: 401 without a session, 403 with the wrong role.
func RequireRole(required ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, role, ok := Identity(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "please login to continue")
			}
			if !slices.Contains(required, role) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights to see this page")
			}
			return next(c)
		}
	}
}
