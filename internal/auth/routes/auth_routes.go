package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/strmed/docfinder-backend/internal/auth/controllers"
)

func RegisterAuthRoutes(e *echo.Echo, ac *controllers.AuthController) {
	e.POST("/api/auth/login", ac.Login)
}
