package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/strmed/docfinder-backend/internal/common/middlewares"
	"github.com/strmed/docfinder-backend/internal/verification/controllers"
)

func RegisterVerificationRoutes(e *echo.Echo, vc *controllers.VerificationController) {
	g := e.Group("/api/verification", middlewares.JWTMiddleware)

	g.POST("/documents", vc.SubmitDocument, middlewares.RequireRole(middlewares.RoleDoctor))
	g.POST("/submit", vc.SubmitForReview, middlewares.RequireRole(middlewares.RoleDoctor))
	g.GET("/status", vc.Status, middlewares.RequireRole(middlewares.RoleDoctor))
	g.GET("/pending", vc.ListPending, middlewares.RequireRole(middlewares.RoleAdmin))
	g.POST("/review", vc.Review, middlewares.RequireRole(middlewares.RoleAdmin))
}
