package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/skill-tracker/internal/auth"
	"github.com/SAP-F-2025/skill-tracker/internal/blob"
	"github.com/SAP-F-2025/skill-tracker/internal/report"
	"github.com/SAP-F-2025/skill-tracker/internal/services"
	"github.com/SAP-F-2025/skill-tracker/internal/syncer"
	"github.com/SAP-F-2025/skill-tracker/internal/utils"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type BaseHandler struct {
	logger    utils.Logger
	validator *validator.Validator
}

func NewBaseHandler(logger utils.Logger, v *validator.Validator) BaseHandler {
	if v == nil {
		v = validator.New()
	}
	return BaseHandler{logger: logger, validator: v}
}

// LogRequest logs with the request-scoped logger.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c.Request.Context(), h.logger).Debug(msg, args...)
}

// bind decodes the JSON body into req and runs its validation tags. It
// writes the 400 response itself and reports false on failure.
func (h *BaseHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		h.handleServiceError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var mismatch *services.BackupMismatchError
	if errors.As(err, &mismatch) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Backup file does not match this account",
			Details: map[string]interface{}{
				"field":    mismatch.Field,
				"expected": mismatch.Expected,
				"actual":   mismatch.Actual,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidBackup), errors.Is(err, blob.ErrInvalidDataURL), errors.Is(err, blob.ErrInvalidKey):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid national id or password"})
	case errors.Is(err, services.ErrPermissionDenied), errors.Is(err, auth.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Access denied"})
	case services.IsNotFound(err), errors.Is(err, report.ErrDepartmentNotFound), errors.Is(err, blob.ErrObjectNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case syncer.IsPolicyRejection(err):
		kind, _ := syncer.KindOf(err)
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
			Details: map[string]interface{}{"kind": kind},
		})
	default:
		utils.FromContext(c.Request.Context(), h.logger).Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
			Details: err.Error(),
		})
	}
}

// parseYear reads the :year path parameter, or the year query parameter when
// the route has none.
func parseYear(c *gin.Context) (int, bool) {
	raw := c.Param("year")
	if raw == "" {
		raw = c.Query("year")
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid year",
			Details: raw,
		})
		return 0, false
	}
	return year, true
}
