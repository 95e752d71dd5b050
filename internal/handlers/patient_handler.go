package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/services"
	"github.com/SAP-F-2025/skill-tracker/internal/utils"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

type PatientHandler struct {
	BaseHandler
	patientService services.PatientService
}

func NewPatientHandler(patientService services.PatientService, v *validator.Validator, logger utils.Logger) *PatientHandler {
	return &PatientHandler{
		BaseHandler:    NewBaseHandler(logger, v),
		patientService: patientService,
	}
}

func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req validator.PatientRequest
	if !h.bind(c, &req) {
		return
	}
	req.ID = ""
	p := req.ToModel()
	if err := h.patientService.UpsertPatient(c.Request.Context(), c.Param("hospitalId"), c.Param("departmentId"), &p); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var req validator.PatientRequest
	if !h.bind(c, &req) {
		return
	}
	req.ID = c.Param("patientId")
	p := req.ToModel()
	if err := h.patientService.UpsertPatient(c.Request.Context(), c.Param("hospitalId"), c.Param("departmentId"), &p); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PatientHandler) DeletePatient(c *gin.Context) {
	if err := h.patientService.DeletePatient(c.Request.Context(), c.Param("hospitalId"), c.Param("departmentId"), c.Param("patientId")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AppendChatMessage posts to the patient's conversation. Patients speak as
// themselves; every other role answers as the department.
// @Router /hospitals/{hospitalId}/departments/{departmentId}/patients/{patientId}/chat [post]
func (h *PatientHandler) AppendChatMessage(c *gin.Context) {
	var req validator.ChatMessageRequest
	if !h.bind(c, &req) {
		return
	}
	principal, _ := GetPrincipal(c)
	sender := models.SenderManager
	if principal.Role == models.RolePatient {
		sender = models.SenderPatient
	}

	msg := req.ToModel(sender)
	err := h.patientService.AppendChatMessage(c.Request.Context(), c.Param("hospitalId"), c.Param("departmentId"), c.Param("patientId"), &msg)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
