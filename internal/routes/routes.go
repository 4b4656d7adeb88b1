package routes

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	authControllers "github.com/strmed/docfinder-backend/internal/auth/controllers"
	authRoutes "github.com/strmed/docfinder-backend/internal/auth/routes"
	authServices "github.com/strmed/docfinder-backend/internal/auth/services"
	availabilityControllers "github.com/strmed/docfinder-backend/internal/availability/controllers"
	availabilityRoutes "github.com/strmed/docfinder-backend/internal/availability/routes"
	availabilityServices "github.com/strmed/docfinder-backend/internal/availability/services"
	"github.com/strmed/docfinder-backend/internal/common/middlewares"
	doctormodels "github.com/strmed/docfinder-backend/internal/doctor/models"
	"github.com/strmed/docfinder-backend/internal/doctor/repositories"
	dispatchControllers "github.com/strmed/docfinder-backend/internal/dispatch/controllers"
	dispatchRoutes "github.com/strmed/docfinder-backend/internal/dispatch/routes"
	dispatchServices "github.com/strmed/docfinder-backend/internal/dispatch/services"
	matchingControllers "github.com/strmed/docfinder-backend/internal/matching/controllers"
	matchingRoutes "github.com/strmed/docfinder-backend/internal/matching/routes"
	matchingServices "github.com/strmed/docfinder-backend/internal/matching/services"
	verificationControllers "github.com/strmed/docfinder-backend/internal/verification/controllers"
	verificationRoutes "github.com/strmed/docfinder-backend/internal/verification/routes"
	verificationServices "github.com/strmed/docfinder-backend/internal/verification/services"
	"github.com/strmed/docfinder-backend/pkg/docstore"
	"github.com/strmed/docfinder-backend/pkg/queue"
	"github.com/strmed/docfinder-backend/ws"
)

// Init wires repositories, services and controllers and registers every
// route on the echo instance. It returns the availability service so the
// caller can hang the expiry sweeper off it.
func Init(e *echo.Echo, db *sql.DB, store docstore.Store, producer queue.Producer, logger *logrus.Logger) *availabilityServices.AvailabilityService {
	doctorRepo := repositories.NewSQLDoctorRepository(db)
	documentRepo := repositories.NewSQLDocumentRepository(db)
	auditRepo := repositories.NewSQLDispatchAuditRepository(db)
	userRepo := repositories.NewSQLUserRepository(db)

	authService := authServices.NewAuthService(userRepo, logger)
	verificationService := verificationServices.NewVerificationService(
		doctorRepo, documentRepo, store, verificationServices.DefaultValidators(), logger)
	matchService := matchingServices.NewMatchService(doctorRepo, logger)
	availabilityService := availabilityServices.NewAvailabilityService(doctorRepo, logger)
	availabilityService.Notify = func(snapshot doctormodels.Availability) {
		ws.BroadcastAvailability(ws.HubInstance, snapshot)
	}
	dispatchService := dispatchServices.NewDispatchService(doctorRepo, auditRepo, producer, logger)

	authController := authControllers.NewAuthController(authService)
	verificationController := verificationControllers.NewVerificationController(verificationService)
	searchController := matchingControllers.NewSearchController(matchService)
	availabilityController := availabilityControllers.NewAvailabilityController(availabilityService)
	dispatchController := dispatchControllers.NewDispatchController(dispatchService)

	authRoutes.RegisterAuthRoutes(e, authController)
	verificationRoutes.RegisterVerificationRoutes(e, verificationController)
	matchingRoutes.RegisterMatchingRoutes(e, searchController)
	availabilityRoutes.RegisterAvailabilityRoutes(e, availabilityController)
	dispatchRoutes.RegisterDispatchRoutes(e, dispatchController)

	// Availability feed for connected waiting rooms.
	e.GET("/ws/availability", ws.ServeWS(ws.HubInstance), middlewares.JWTMiddleware)

	return availabilityService
}
