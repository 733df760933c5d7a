package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
)

// AccountLookup loads the caller's current account row.
type AccountLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// ActiveAccount runs after JWTAuth. It reloads the caller so a
// deactivated account is refused at once, and replaces the role from the
// token with the role stored now.
func ActiveAccount(users AccountLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := c.Get(ContextUserID).(uint64)
			if !ok || uid == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "code": "UNAUTHORIZED"})
			}
			u, err := users.GetByID(c.Request().Context(), uid)
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "code": "UNAUTHORIZED"})
			}
			if err != nil {
				return err
			}
			if !u.IsActive {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled", "code": "FORBIDDEN"})
			}
			c.Set(ContextRole, u.Role())
			return next(c)
		}
	}
}
