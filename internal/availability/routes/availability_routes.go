package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/strmed/docfinder-backend/internal/availability/controllers"
	"github.com/strmed/docfinder-backend/internal/common/middlewares"
)

func RegisterAvailabilityRoutes(e *echo.Echo, ac *controllers.AvailabilityController) {
	g := e.Group("/api/availability", middlewares.JWTMiddleware)

	g.PUT("", ac.SetAvailability, middlewares.RequireRole(middlewares.RoleDoctor))
	g.GET("/:doctorId", ac.GetAvailability, middlewares.RequireRole(middlewares.RolePatient))
}
