package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/skill-tracker/internal/services"
	"github.com/SAP-F-2025/skill-tracker/internal/utils"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

type StaffHandler struct {
	BaseHandler
	staffService services.StaffService
}

func NewStaffHandler(staffService services.StaffService, v *validator.Validator, logger utils.Logger) *StaffHandler {
	return &StaffHandler{
		BaseHandler:  NewBaseHandler(logger, v),
		staffService: staffService,
	}
}

// @Router /hospitals/{hospitalId}/departments/{departmentId}/staff [post]
func (h *StaffHandler) CreateStaff(c *gin.Context) {
	var req validator.StaffRequest
	if !h.bind(c, &req) {
		return
	}
	req.ID = ""
	member := req.ToModel()
	if err := h.staffService.UpsertStaff(c.Request.Context(), c.Param("hospitalId"), c.Param("departmentId"), &member); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// @Router /hospitals/{hospitalId}/departments/{departmentId}/staff/{staffId} [put]
func (h *StaffHandler) UpdateStaff(c *gin.Context) {
	var req validator.StaffRequest
	if !h.bind(c, &req) {
		return
	}
	req.ID = c.Param("staffId")
	member := req.ToModel()
	if err := h.staffService.UpsertStaff(c.Request.Context(), c.Param("hospitalId"), c.Param("departmentId"), &member); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *StaffHandler) DeleteStaff(c *gin.Context) {
	if err := h.staffService.DeleteStaff(c.Request.Context(), c.Param("hospitalId"), c.Param("departmentId"), c.Param("staffId")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpsertAssessment stores the staff member's assessment for its month and
// year.
// @Router /hospitals/{hospitalId}/departments/{departmentId}/staff/{staffId}/assessments [put]
func (h *StaffHandler) UpsertAssessment(c *gin.Context) {
	var req validator.AssessmentRequest
	if !h.bind(c, &req) {
		return
	}
	a := req.ToModel()
	err := h.staffService.UpsertAssessment(c.Request.Context(), c.Param("hospitalId"), c.Param("departmentId"), c.Param("staffId"), &a)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *StaffHandler) DeleteAssessment(c *gin.Context) {
	err := h.staffService.DeleteAssessment(c.Request.Context(),
		c.Param("hospitalId"), c.Param("departmentId"), c.Param("staffId"), c.Param("assessmentId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetAssessmentMessage stores the caller's note; the role decides whether it
// is the manager's or the supervisor's.
func (h *StaffHandler) SetAssessmentMessage(c *gin.Context) {
	var req validator.AssessmentMessageRequest
	if !h.bind(c, &req) {
		return
	}
	principal, _ := GetPrincipal(c)
	err := h.staffService.SetAssessmentMessage(c.Request.Context(),
		c.Param("hospitalId"), c.Param("departmentId"), c.Param("staffId"), c.Param("assessmentId"),
		principal.Role, req.Message)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitExam grades and records an exam taken for an assessment.
// @Router /hospitals/{hospitalId}/departments/{departmentId}/staff/{staffId}/assessments/{assessmentId}/exams [post]
func (h *StaffHandler) SubmitExam(c *gin.Context) {
	var req validator.ExamSubmissionRequest
	if !h.bind(c, &req) {
		return
	}
	sub, err := h.staffService.SubmitExam(c.Request.Context(),
		c.Param("hospitalId"), c.Param("departmentId"), c.Param("staffId"), c.Param("assessmentId"),
		req.ExamID, req.ToAnswers())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *StaffHandler) UpsertWorkLog(c *gin.Context) {
	var req validator.WorkLogRequest
	if !h.bind(c, &req) {
		return
	}
	w := req.ToModel()
	err := h.staffService.UpsertWorkLog(c.Request.Context(), c.Param("hospitalId"), c.Param("departmentId"), c.Param("staffId"), &w)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}
