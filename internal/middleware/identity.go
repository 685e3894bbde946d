package middleware

// identity.go defines helper functions shared across middleware files.
// Currently it provides a userID extraction function that pulls the
// subject (sub) claim from the JWT stored in the Echo context. When no
// token is present or no relevant claim exists, "anon" is returned so
// rate-limit keys for unauthenticated browsing stay stable.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// subjectID extracts a user identifier for key building. It reads the
// value JWTAuth stored under "user_id", which may be any numeric type
// depending on how the claims were decoded.
func subjectID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return fmt.Sprintf("%.0f", t)
		case uint64:
			return fmt.Sprintf("%d", t)
		case int64:
			return fmt.Sprintf("%d", t)
		}
	}
	return "anon"
}
