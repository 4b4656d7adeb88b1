package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Role names as stored on the users table and carried in JWT claims.
const (
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
	RolePatient = "patient"
)

// RequireRole checks that the JWT claims carry one of the allowed roles.
// Authorization failures are reported before any handler runs, so a rejected
// caller never mutates state.
func RequireRole(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := GetClaims(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"status":  http.StatusUnauthorized,
					"message": "Missing or invalid JWT claims",
					"data":    nil,
				})
			}

			for _, role := range allowed {
				if claims.Role == role {
					return next(c)
				}
			}

			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"status":  http.StatusForbidden,
				"message": "You do not have access to this resource",
				"data":    nil,
			})
		}
	}
}
