package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/strmed/docfinder-backend/pkg/utils"
)

type contextKey string

const (
	// ContextKeyClaims is the echo context key the controllers read the
	// validated claims from.
	ContextKeyClaims contextKey = "claims"
)

// JWTMiddleware validates the Bearer token and stores the claims on the
// request context.
func JWTMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"status":  http.StatusUnauthorized,
				"message": "Authorization header missing",
				"data":    nil,
			})
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"status":  http.StatusUnauthorized,
				"message": "Invalid authorization header",
				"data":    nil,
			})
		}
		claims, err := utils.ValidateJWTToken(parts[1])
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"status":  http.StatusUnauthorized,
				"message": "Invalid token: " + err.Error(),
				"data":    nil,
			})
		}

		c.Set(string(ContextKeyClaims), claims)
		return next(c)
	}
}

// GetClaims pulls the validated claims back out of the echo context.
func GetClaims(c echo.Context) (*utils.Claims, bool) {
	claims, ok := c.Get(string(ContextKeyClaims)).(*utils.Claims)
	return claims, ok && claims != nil
}
