// Package middleware contains reusable HTTP middleware for the staff and
// public route groups.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys populated by JWTAuth for downstream middleware and handlers.
const (
	CtxStaffID      = "staff_id"
	CtxRestaurantID = "restaurant_id"
	CtxRole         = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the staff id, restaurant id and role claims into the request
// context.  The provided secret must match the one used when issuing
// tokens.  Handlers read the identity via StaffFromContext.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			// Numeric claims decode as float64 from JSON.
			c.Set(CtxStaffID, claimUint64(claims["sub"]))
			c.Set(CtxRestaurantID, claimUint64(claims["rid"]))
			if role, ok := claims["role"].(string); ok {
				c.Set(CtxRole, role)
			}
			return next(c)
		}
	}
}

// claimUint64 coerces a decoded JWT claim into a uint64 id.
func claimUint64(v interface{}) uint64 {
	switch n := v.(type) {
	case float64:
		return uint64(n)
	case int64:
		return uint64(n)
	case uint64:
		return n
	}
	return 0
}
