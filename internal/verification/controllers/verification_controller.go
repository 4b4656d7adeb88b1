package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/strmed/docfinder-backend/internal/common/middlewares"
	"github.com/strmed/docfinder-backend/internal/doctor/models"
	"github.com/strmed/docfinder-backend/internal/verification/services"
	"github.com/strmed/docfinder-backend/pkg/docstore"
)

type VerificationController struct {
	Service *services.VerificationService
}

func NewVerificationController(service *services.VerificationService) *VerificationController {
	return &VerificationController{Service: service}
}

// SubmitDocument accepts a multipart upload under the "document" field with
// the kind passed as a query parameter.
func (vc *VerificationController) SubmitDocument(c echo.Context) error {
	claims, ok := middlewares.GetClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Invalid or missing token claims",
			"data":    nil,
		})
	}

	kind := models.DocumentKind(c.QueryParam("kind"))
	if kind == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "kind query parameter is required",
			"data":    nil,
		})
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "document file is required: " + err.Error(),
			"data":    nil,
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"status":  http.StatusInternalServerError,
			"message": "Failed to open upload: " + err.Error(),
			"data":    nil,
		})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, docstore.MaxDocumentSize+1))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"status":  http.StatusInternalServerError,
			"message": "Failed to read upload: " + err.Error(),
			"data":    nil,
		})
	}

	doc, err := vc.Service.SubmitDocument(c.Request().Context(), claims.UserID, kind, data)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidKind):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"status":  http.StatusBadRequest,
				"message": "Unknown document kind",
				"data":    nil,
			})
		case errors.Is(err, docstore.ErrInvalidFormat):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"status":  http.StatusBadRequest,
				"message": "Unsupported document format; use PDF, JPEG, PNG or WEBP",
				"data":    nil,
			})
		case errors.Is(err, docstore.ErrTooLarge):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"status":  http.StatusBadRequest,
				"message": "Document exceeds the 10 MiB limit",
				"data":    nil,
			})
		case errors.Is(err, services.ErrDoctorNotFound):
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"status":  http.StatusNotFound,
				"message": "Doctor profile not found",
				"data":    nil,
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"status":  http.StatusInternalServerError,
				"message": "Failed to store document: " + err.Error(),
				"data":    nil,
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Document stored",
		"data": map[string]interface{}{
			"document_ref": doc.StorageRef,
			"kind":         doc.Kind,
			"uploaded_at":  doc.UploadedAt,
		},
	})
}

func (vc *VerificationController) SubmitForReview(c echo.Context) error {
	claims, ok := middlewares.GetClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Invalid or missing token claims",
			"data":    nil,
		})
	}

	var req services.SubmissionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}

	err := vc.Service.SubmitForReview(c.Request().Context(), claims.UserID, req)
	if err != nil {
		var missing *services.MissingDocumentsError
		var failed *services.ValidationFailedError
		var invalid *services.InvalidTransitionError
		switch {
		case errors.As(err, &missing):
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"status":  http.StatusConflict,
				"message": "Required documents are missing",
				"data":    map[string]interface{}{"missing_documents": missing.Missing},
			})
		case errors.As(err, &failed):
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"status":  http.StatusConflict,
				"message": "Submission blocked: " + failed.Reason,
				"data":    map[string]interface{}{"failed_check": failed.Check},
			})
		case errors.As(err, &invalid):
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"status":  http.StatusConflict,
				"message": err.Error(),
				"data":    nil,
			})
		case errors.Is(err, services.ErrDoctorNotFound):
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"status":  http.StatusNotFound,
				"message": "Doctor profile not found",
				"data":    nil,
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"status":  http.StatusInternalServerError,
				"message": "Failed to submit for review: " + err.Error(),
				"data":    nil,
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Submitted for review",
		"data":    nil,
	})
}

func (vc *VerificationController) Status(c echo.Context) error {
	claims, ok := middlewares.GetClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Invalid or missing token claims",
			"data":    nil,
		})
	}

	report, err := vc.Service.Status(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrDoctorNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"status":  http.StatusNotFound,
				"message": "Doctor profile not found",
				"data":    nil,
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"status":  http.StatusInternalServerError,
			"message": "Failed to load status: " + err.Error(),
			"data":    nil,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Verification status",
		"data":    report,
	})
}

func (vc *VerificationController) ListPending(c echo.Context) error {
	pending, err := vc.Service.ListPending(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"status":  http.StatusInternalServerError,
			"message": "Failed to list pending reviews: " + err.Error(),
			"data":    nil,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Pending reviews",
		"data":    pending,
	})
}

type ReviewRequest struct {
	DoctorID int64  `json:"doctor_id"`
	Approve  bool   `json:"approve"`
	Reason   string `json:"reason"`
}

func (vc *VerificationController) Review(c echo.Context) error {
	claims, ok := middlewares.GetClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Invalid or missing token claims",
			"data":    nil,
		})
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "Invalid request payload: " + err.Error(),
			"data":    nil,
		})
	}
	if req.DoctorID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": "doctor_id is required",
			"data":    nil,
		})
	}

	err := vc.Service.Review(c.Request().Context(), claims.UserID, claims.Role, req.DoctorID, req.Approve, req.Reason)
	if err != nil {
		var invalid *services.InvalidTransitionError
		switch {
		case errors.Is(err, services.ErrNotReviewer):
			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"status":  http.StatusForbidden,
				"message": "Only admins can review",
				"data":    nil,
			})
		case errors.Is(err, services.ErrReasonRequired):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"status":  http.StatusBadRequest,
				"message": "Rejection requires a reason",
				"data":    nil,
			})
		case errors.Is(err, services.ErrDoctorNotFound):
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"status":  http.StatusNotFound,
				"message": "Doctor " + strconv.FormatInt(req.DoctorID, 10) + " not found",
				"data":    nil,
			})
		case errors.As(err, &invalid):
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"status":  http.StatusConflict,
				"message": err.Error(),
				"data":    nil,
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"status":  http.StatusInternalServerError,
				"message": "Failed to apply review: " + err.Error(),
				"data":    nil,
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Review decision applied",
		"data":    nil,
	})
}
