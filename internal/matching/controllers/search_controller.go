package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/strmed/docfinder-backend/internal/matching/models"
	"github.com/strmed/docfinder-backend/internal/matching/services"
)

type SearchController struct {
	Service *services.MatchService
}

func NewSearchController(service *services.MatchService) *SearchController {
	return &SearchController{Service: service}
}

// parseLocation requires both lat and lng; omitting either is a client
// error, never a default.
func parseLocation(c echo.Context) (float64, float64, error) {
	latStr := c.QueryParam("lat")
	lngStr := c.QueryParam("lng")
	if latStr == "" || lngStr == "" {
		return 0, 0, errors.New("both lat and lng query parameters are required")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, errors.New("lat must be a number")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return 0, 0, errors.New("lng must be a number")
	}
	return lat, lng, nil
}

func parsePaging(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	return page, pageSize
}

func (sc *SearchController) Search(c echo.Context) error {
	lat, lng, err := parseLocation(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": err.Error(),
			"data":    nil,
		})
	}

	maxDistance, _ := strconv.ParseFloat(c.QueryParam("max_distance"), 64)
	page, pageSize := parsePaging(c)

	query := models.MatchQuery{
		Latitude:      lat,
		Longitude:     lng,
		Specialty:     c.QueryParam("specialty"),
		MaxDistanceKm: maxDistance,
		Page:          page,
		PageSize:      pageSize,
	}

	results, total, err := sc.Service.Match(c.Request().Context(), query)
	if err != nil {
		if errors.Is(err, services.ErrInvalidLocation) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"status":  http.StatusBadRequest,
				"message": "Location is outside the valid coordinate range",
				"data":    nil,
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"status":  http.StatusInternalServerError,
			"message": "Search failed: " + err.Error(),
			"data":    nil,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Search results",
		"data": map[string]interface{}{
			"results": results,
			"total":   total,
		},
	})
}

func (sc *SearchController) EmergencySearch(c echo.Context) error {
	lat, lng, err := parseLocation(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": err.Error(),
			"data":    nil,
		})
	}

	category := models.EmergencyCategory(c.QueryParam("category"))
	if category == "" {
		category = models.CategoryGeneral
	}

	maxDistance, _ := strconv.ParseFloat(c.QueryParam("max_distance"), 64)
	page, pageSize := parsePaging(c)
	requireSpecialist, _ := strconv.ParseBool(c.QueryParam("require_specialist"))

	query := models.MatchQuery{
		Latitude:          lat,
		Longitude:         lng,
		MaxDistanceKm:     maxDistance,
		Page:              page,
		PageSize:          pageSize,
		Emergency:         true,
		Category:          category,
		RequireSpecialist: requireSpecialist,
	}

	results, total, err := sc.Service.Match(c.Request().Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidLocation):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"status":  http.StatusBadRequest,
				"message": "Location is outside the valid coordinate range",
				"data":    nil,
			})
		case errors.Is(err, services.ErrInvalidCategory):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"status":  http.StatusBadRequest,
				"message": "Unknown emergency category",
				"data":    nil,
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"status":  http.StatusInternalServerError,
				"message": "Emergency search failed: " + err.Error(),
				"data":    nil,
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Emergency search results",
		"data": map[string]interface{}{
			"results": results,
			"total":   total,
			"metadata": models.EmergencyMetadata{
				Category:  category,
				Timestamp: time.Now(),
			},
		},
	})
}
