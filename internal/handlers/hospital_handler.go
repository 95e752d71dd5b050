package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/services"
	"github.com/SAP-F-2025/skill-tracker/internal/utils"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

type HospitalHandler struct {
	BaseHandler
	hospitalService services.HospitalService
	needsService    services.NeedsService
}

func NewHospitalHandler(hospitalService services.HospitalService, needsService services.NeedsService, v *validator.Validator, logger utils.Logger) *HospitalHandler {
	return &HospitalHandler{
		BaseHandler:     NewBaseHandler(logger, v),
		hospitalService: hospitalService,
		needsService:    needsService,
	}
}

// CreateHospital adds a hospital.
// @Router /hospitals [post]
func (h *HospitalHandler) CreateHospital(c *gin.Context) {
	var req validator.HospitalRequest
	if !h.bind(c, &req) {
		return
	}
	req.ID = ""
	hospital := req.ToModel()
	if err := h.hospitalService.UpsertHospital(c.Request.Context(), &hospital); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, hospital)
}

// UpdateHospital edits the hospital named in the path, or creates it under
// that id.
// @Router /hospitals/{hospitalId} [put]
func (h *HospitalHandler) UpdateHospital(c *gin.Context) {
	var req validator.HospitalRequest
	if !h.bind(c, &req) {
		return
	}
	req.ID = c.Param("hospitalId")
	hospital := req.ToModel()
	if err := h.hospitalService.UpsertHospital(c.Request.Context(), &hospital); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, hospital)
}

// @Router /hospitals/{hospitalId} [delete]
func (h *HospitalHandler) DeleteHospital(c *gin.Context) {
	hospitalID := c.Param("hospitalId")
	h.LogRequest(c, "Deleting hospital", "hospital_id", hospitalID)
	if err := h.hospitalService.DeleteHospital(c.Request.Context(), hospitalID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== TEMPLATES =====

func (h *HospitalHandler) UpsertChecklistTemplate(c *gin.Context) {
	var req validator.ChecklistTemplateRequest
	if !h.bind(c, &req) {
		return
	}
	tpl := req.ToModel()
	if err := h.hospitalService.UpsertChecklistTemplate(c.Request.Context(), c.Param("hospitalId"), &tpl); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *HospitalHandler) DeleteChecklistTemplate(c *gin.Context) {
	if err := h.hospitalService.DeleteChecklistTemplate(c.Request.Context(), c.Param("hospitalId"), c.Param("templateId")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HospitalHandler) UpsertExamTemplate(c *gin.Context) {
	var req validator.ExamTemplateRequest
	if !h.bind(c, &req) {
		return
	}
	tpl := req.ToModel()
	if err := h.hospitalService.UpsertExamTemplate(c.Request.Context(), c.Param("hospitalId"), &tpl); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *HospitalHandler) DeleteExamTemplate(c *gin.Context) {
	if err := h.hospitalService.DeleteExamTemplate(c.Request.Context(), c.Param("hospitalId"), c.Param("templateId")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== CONTENT =====

func (h *HospitalHandler) AddNewsBanner(c *gin.Context) {
	var req validator.NewsBannerRequest
	if !h.bind(c, &req) {
		return
	}
	banner := req.ToModel()
	if err := h.hospitalService.AddNewsBanner(c.Request.Context(), c.Param("hospitalId"), &banner); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, banner)
}

func (h *HospitalHandler) DeleteNewsBanner(c *gin.Context) {
	if err := h.hospitalService.DeleteNewsBanner(c.Request.Context(), c.Param("hospitalId"), c.Param("bannerId")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HospitalHandler) AddAccreditationMaterial(c *gin.Context) {
	var req validator.MaterialRequest
	if !h.bind(c, &req) {
		return
	}
	m := req.ToModel()
	if err := h.hospitalService.AddAccreditationMaterial(c.Request.Context(), c.Param("hospitalId"), &m); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *HospitalHandler) DeleteAccreditationMaterial(c *gin.Context) {
	if err := h.hospitalService.DeleteAccreditationMaterial(c.Request.Context(), c.Param("hospitalId"), c.Param("materialId")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HospitalHandler) AddTrainingMaterial(c *gin.Context) {
	var req validator.TrainingMaterialRequest
	if !h.bind(c, &req) {
		return
	}
	m := req.Material.ToModel()
	if err := h.hospitalService.AddHospitalTrainingMaterial(c.Request.Context(), c.Param("hospitalId"), req.Month, &m); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *HospitalHandler) DeleteTrainingMaterial(c *gin.Context) {
	if err := h.hospitalService.DeleteHospitalTrainingMaterial(c.Request.Context(), c.Param("hospitalId"), c.Param("month"), c.Param("materialId")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HospitalHandler) AddAdminMessage(c *gin.Context) {
	var req validator.AdminMessageRequest
	if !h.bind(c, &req) {
		return
	}
	msg, err := h.hospitalService.AddAdminMessage(c.Request.Context(), c.Param("hospitalId"), req.Content)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *HospitalHandler) DeleteAdminMessage(c *gin.Context) {
	if err := h.hospitalService.DeleteAdminMessage(c.Request.Context(), c.Param("hospitalId"), c.Param("messageId")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== NEEDS ASSESSMENT =====

func (h *HospitalHandler) UpsertNeedsTopic(c *gin.Context) {
	var req validator.NeedsTopicRequest
	if !h.bind(c, &req) {
		return
	}
	topic := req.ToModel()
	if err := h.needsService.UpsertNeedsTopic(c.Request.Context(), c.Param("hospitalId"), req.Month, req.Year, &topic); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (h *HospitalHandler) DeleteNeedsTopic(c *gin.Context) {
	year, ok := parseYear(c)
	if !ok {
		return
	}
	if err := h.needsService.DeleteNeedsTopic(c.Request.Context(), c.Param("hospitalId"), c.Param("month"), year, c.Param("topicId")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitNeedsResponse records the authenticated staff member's answer.
func (h *HospitalHandler) SubmitNeedsResponse(c *gin.Context) {
	var req validator.NeedsResponseRequest
	if !h.bind(c, &req) {
		return
	}
	principal, _ := GetPrincipal(c)
	resp := models.TopicResponse{
		StaffID:   principal.StaffID,
		StaffName: principal.Name,
		Response:  req.Response,
	}
	if err := h.needsService.SubmitNeedsResponse(c.Request.Context(), c.Param("hospitalId"), req.Month, req.Year, c.Param("topicId"), resp); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
