package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/skill-tracker/internal/report"
	"github.com/SAP-F-2025/skill-tracker/internal/services"
	"github.com/SAP-F-2025/skill-tracker/internal/syncer"
	"github.com/SAP-F-2025/skill-tracker/internal/utils"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DepartmentHandler struct {
	BaseHandler
	departmentService services.DepartmentService
	engine            *syncer.Engine
}

func NewDepartmentHandler(departmentService services.DepartmentService, engine *syncer.Engine, v *validator.Validator, logger utils.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		BaseHandler:       NewBaseHandler(logger, v),
		departmentService: departmentService,
		engine:            engine,
	}
}

// @Router /hospitals/{hospitalId}/departments [post]
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req validator.DepartmentRequest
	if !h.bind(c, &req) {
		return
	}
	req.ID = ""
	d := req.ToModel()
	if err := h.departmentService.UpsertDepartment(c.Request.Context(), c.Param("hospitalId"), &d); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// @Router /hospitals/{hospitalId}/departments/{departmentId} [put]
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	var req validator.DepartmentRequest
	if !h.bind(c, &req) {
		return
	}
	req.ID = c.Param("departmentId")
	d := req.ToModel()
	if err := h.departmentService.UpsertDepartment(c.Request.Context(), c.Param("hospitalId"), &d); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Router /hospitals/{hospitalId}/departments/{departmentId} [delete]
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	hospitalID, departmentID := c.Param("hospitalId"), c.Param("departmentId")
	h.LogRequest(c, "Deleting department", "hospital_id", hospitalID, "department_id", departmentID)
	if err := h.departmentService.DeleteDepartment(c.Request.Context(), hospitalID, departmentID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DepartmentHandler) AddTrainingMaterial(c *gin.Context) {
	var req validator.TrainingMaterialRequest
	if !h.bind(c, &req) {
		return
	}
	m := req.Material.ToModel()
	if err := h.departmentService.AddDepartmentTrainingMaterial(c.Request.Context(), c.Param("hospitalId"), c.Param("departmentId"), req.Month, &m); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *DepartmentHandler) DeleteTrainingMaterial(c *gin.Context) {
	err := h.departmentService.DeleteDepartmentTrainingMaterial(c.Request.Context(),
		c.Param("hospitalId"), c.Param("departmentId"), c.Param("month"), c.Param("materialId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DepartmentHandler) AddPatientEducationMaterial(c *gin.Context) {
	var req validator.MaterialRequest
	if !h.bind(c, &req) {
		return
	}
	m := req.ToModel()
	if err := h.departmentService.AddPatientEducationMaterial(c.Request.Context(), c.Param("hospitalId"), c.Param("departmentId"), &m); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *DepartmentHandler) DeletePatientEducationMaterial(c *gin.Context) {
	err := h.departmentService.DeletePatientEducationMaterial(c.Request.Context(),
		c.Param("hospitalId"), c.Param("departmentId"), c.Param("materialId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadReport streams the month's assessment workbook.
// @Router /hospitals/{hospitalId}/departments/{departmentId}/report [get]
func (h *DepartmentHandler) DownloadReport(c *gin.Context) {
	month := c.Query("month")
	year, ok := parseYear(c)
	if !ok {
		return
	}
	if errs := h.validator.GetBusinessValidator().ValidatePeriod(month, year); len(errs) > 0 {
		h.handleServiceError(c, errs)
		return
	}

	ds := h.engine.FetchDataset(c.Request.Context())
	f, err := report.DepartmentWorkbook(ds, c.Param("hospitalId"), c.Param("departmentId"), month, year)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.handleServiceError(c, fmt.Errorf("failed to render report: %w", err))
		return
	}
	filename := fmt.Sprintf("report-%s-%d.xlsx", c.Param("departmentId"), year)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
