package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/strmed/docfinder-backend/internal/common/middlewares"
	"github.com/strmed/docfinder-backend/internal/dispatch/controllers"
)

func RegisterDispatchRoutes(e *echo.Echo, dc *controllers.DispatchController) {
	g := e.Group("/api/dispatch", middlewares.JWTMiddleware, middlewares.RequireRole(middlewares.RolePatient))

	g.POST("", dc.Dispatch)
}
