package middleware

// identity.go provides the caller-identity lookup shared by the rate
// limit and cache key builders.  Public voice endpoints have no staff
// identity, so those requests fall back to "guest" and are keyed by ip.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// userID extracts the staff identifier stored in context by JWTAuth.
// It returns "guest" when the request is unauthenticated.
func userID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "guest"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return fmt.Sprintf("%.0f", t)
	case uint64:
		return fmt.Sprintf("%d", t)
	}
	return "guest"
}
