package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/strmed/docfinder-backend/internal/availability/services"
	"github.com/strmed/docfinder-backend/internal/common/middlewares"
)

type SetAvailabilityRequest struct {
	Online         bool   `json:"online"`
	StatusMessage  string `json:"status_message"`
	AvailableUntil string `json:"available_until"` // RFC3339, optional
}

type AvailabilityController struct {
	Service *services.AvailabilityService
}

func NewAvailabilityController(service *services.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{Service: service}
}

// SetAvailability lets a doctor flip their own online state. The service
// pushes the change to the availability feed on success.
func (ac *AvailabilityController) SetAvailability(c echo.Context) error {
	claims, ok := middlewares.GetClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Invalid or missing token claims",
			"data":    nil,
		})
	}

	var req SetAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}

	var availableUntil *time.Time
	if req.AvailableUntil != "" {
		parsed, err := time.Parse(time.RFC3339, req.AvailableUntil)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"status":  http.StatusBadRequest,
				"message": "available_until must be RFC3339",
				"data":    nil,
			})
		}
		availableUntil = &parsed
	}

	snapshot, err := ac.Service.SetAvailability(c.Request().Context(), claims.UserID, req.Online, req.StatusMessage, availableUntil)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDoctorNotFound):
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"status":  http.StatusNotFound,
				"message": "Doctor profile not found",
				"data":    nil,
			})
		case errors.Is(err, services.ErrUpdateConflict):
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"status":  http.StatusConflict,
				"message": "Availability is being updated concurrently, try again",
				"data":    nil,
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"status":  http.StatusInternalServerError,
				"message": "Failed to update availability: " + err.Error(),
				"data":    nil,
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Availability updated",
		"data":    snapshot,
	})
}

func (ac *AvailabilityController) GetAvailability(c echo.Context) error {
	doctorID, err := strconv.ParseInt(c.Param("doctorId"), 10, 64)
	if err != nil || doctorID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "Invalid doctorId parameter",
			"data":    nil,
		})
	}

	snapshot, err := ac.Service.GetAvailability(c.Request().Context(), doctorID)
	if err != nil {
		if errors.Is(err, services.ErrDoctorNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"status":  http.StatusNotFound,
				"message": "Doctor not found",
				"data":    nil,
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"status":  http.StatusInternalServerError,
			"message": "Failed to load availability: " + err.Error(),
			"data":    nil,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Availability",
		"data":    snapshot,
	})
}
