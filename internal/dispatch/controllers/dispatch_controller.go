package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/strmed/docfinder-backend/internal/common/middlewares"
	"github.com/strmed/docfinder-backend/internal/dispatch/models"
	"github.com/strmed/docfinder-backend/internal/dispatch/services"
)

type DispatchRequest struct {
	DoctorID int64  `json:"doctor_id"`
	Method   string `json:"method"`
}

type DispatchController struct {
	Service *services.DispatchService
}

func NewDispatchController(service *services.DispatchService) *DispatchController {
	return &DispatchController{Service: service}
}

func (dc *DispatchController) Dispatch(c echo.Context) error {
	claims, ok := middlewares.GetClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Invalid or missing token claims",
			"data":    nil,
		})
	}

	var req DispatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}
	if req.DoctorID <= 0 || req.Method == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "doctor_id and method are required",
			"data":    nil,
		})
	}

	outcome, err := dc.Service.Dispatch(c.Request().Context(), claims.UserID, req.DoctorID, models.Method(req.Method))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMethod):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"status":  http.StatusBadRequest,
				"message": "Unsupported contact method; use call, message or video_call",
				"data":    nil,
			})
		case errors.Is(err, services.ErrDoctorNotFound):
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"status":  http.StatusNotFound,
				"message": "Doctor not found",
				"data":    nil,
			})
		case errors.Is(err, services.ErrDoctorUnavailable):
			// Ordinary recoverable condition: the doctor changed state
			// between search and dispatch.
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"status":  http.StatusConflict,
				"message": "Doctor is no longer available, please search again",
				"data":    nil,
			})
		case errors.Is(err, services.ErrNoContactOnFile):
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"status":  http.StatusConflict,
				"message": "Doctor has no contact descriptor for this method",
				"data":    nil,
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"status":  http.StatusInternalServerError,
				"message": "Dispatch failed: " + err.Error(),
				"data":    nil,
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Contact dispatched",
		"data":    outcome,
	})
}
