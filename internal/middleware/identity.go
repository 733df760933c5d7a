package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user id for rate-limit keys,
// or "anon" when the route is public.
func currentUserID(c echo.Context) string {
	if uid, ok := c.Get(ContextUserID).(uint64); ok && uid != 0 {
		return strconv.FormatUint(uid, 10)
	}
	return "anon"
}
