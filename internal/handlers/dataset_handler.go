package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/skill-tracker/internal/services"
	"github.com/SAP-F-2025/skill-tracker/internal/utils"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

type DatasetHandler struct {
	BaseHandler
	authService   services.AuthService
	backupService services.BackupService
}

func NewDatasetHandler(authService services.AuthService, backupService services.BackupService, v *validator.Validator, logger utils.Logger) *DatasetHandler {
	return &DatasetHandler{
		BaseHandler:   NewBaseHandler(logger, v),
		authService:   authService,
		backupService: backupService,
	}
}

// Login checks credentials and returns the resolved principal. Later requests
// authenticate with the same credentials over Basic auth.
// @Router /auth/login [post]
func (h *DatasetHandler) Login(c *gin.Context) {
	var req validator.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	principal, err := h.authService.Login(c.Request.Context(), req.NationalID, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, principal)
}

// Me returns the authenticated principal.
// @Router /me [get]
func (h *DatasetHandler) Me(c *gin.Context) {
	principal, _ := GetPrincipal(c)
	c.JSON(http.StatusOK, principal)
}

// GetDataset returns the dataset pruned to what the principal may see.
// @Router /dataset [get]
func (h *DatasetHandler) GetDataset(c *gin.Context) {
	principal, _ := GetPrincipal(c)
	h.LogRequest(c, "Getting dataset view", "role", principal.Role)
	c.JSON(http.StatusOK, h.authService.View(c.Request.Context(), principal))
}

// ResetDataset empties the whole dataset.
// @Router /dataset [delete]
func (h *DatasetHandler) ResetDataset(c *gin.Context) {
	if err := h.backupService.ResetDataset(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportBackup downloads the principal's part of the dataset.
// @Router /backup [get]
func (h *DatasetHandler) ExportBackup(c *gin.Context) {
	principal, _ := GetPrincipal(c)
	b, err := h.backupService.Export(c.Request.Context(), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+b.Type+`.json"`)
	c.JSON(http.StatusOK, b)
}

// ImportBackup replaces the principal's part of the dataset with the uploaded
// backup file.
// @Router /backup [post]
func (h *DatasetHandler) ImportBackup(c *gin.Context) {
	principal, _ := GetPrincipal(c)
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.backupService.Import(c.Request.Context(), principal, raw); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
