package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/strmed/docfinder-backend/internal/common/middlewares"
	"github.com/strmed/docfinder-backend/internal/matching/controllers"
)

func RegisterMatchingRoutes(e *echo.Echo, sc *controllers.SearchController) {
	g := e.Group("/api/doctors", middlewares.JWTMiddleware, middlewares.RequireRole(middlewares.RolePatient))

	g.GET("/search", sc.Search)
	g.GET("/emergency", sc.EmergencySearch)
}
