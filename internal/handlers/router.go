package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/skill-tracker/internal/auth"
	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/services"
	"github.com/SAP-F-2025/skill-tracker/internal/syncer"
	"github.com/SAP-F-2025/skill-tracker/internal/utils"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

type HandlerManager struct {
	datasetHandler    *DatasetHandler
	hospitalHandler   *HospitalHandler
	departmentHandler *DepartmentHandler
	staffHandler      *StaffHandler
	patientHandler    *PatientHandler
	uploadHandler     *UploadHandler
	authMiddleware    *AuthMiddleware
	serviceManager    services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	engine *syncer.Engine,
	store BlobStore,
	policy *auth.Policy,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		datasetHandler:    NewDatasetHandler(serviceManager.Auth(), serviceManager.Backup(), validator, logger),
		hospitalHandler:   NewHospitalHandler(serviceManager.Hospital(), serviceManager.Needs(), validator, logger),
		departmentHandler: NewDepartmentHandler(serviceManager.Department(), engine, validator, logger),
		staffHandler:      NewStaffHandler(serviceManager.Staff(), validator, logger),
		patientHandler:    NewPatientHandler(serviceManager.Patient(), validator, logger),
		uploadHandler:     NewUploadHandler(store, validator, logger),
		authMiddleware:    NewAuthMiddleware(serviceManager.Auth(), policy, logger),
		serviceManager:    serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	am := hm.authMiddleware
	allow := am.Authorize

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", hm.datasetHandler.Login)

	api := v1.Group("")
	api.Use(am.Authenticate())
	{
		api.GET("/me", hm.datasetHandler.Me)
		api.GET("/dataset", allow(auth.ResourceDataset, auth.ActionRead), hm.datasetHandler.GetDataset)
		api.DELETE("/dataset", am.RequireRole(models.RoleAdmin), hm.datasetHandler.ResetDataset)

		api.GET("/backup", allow(auth.ResourceBackup, auth.ActionRead), hm.datasetHandler.ExportBackup)
		api.POST("/backup", allow(auth.ResourceBackup, auth.ActionWrite), hm.datasetHandler.ImportBackup)

		api.POST("/uploads", allow(auth.ResourceUpload, auth.ActionWrite), hm.uploadHandler.Upload)
		api.GET("/files/*path", allow(auth.ResourceDataset, auth.ActionRead), hm.uploadHandler.Download)

		api.POST("/hospitals", am.RequireRole(models.RoleAdmin), hm.hospitalHandler.CreateHospital)

		hospital := api.Group("/hospitals/:hospitalId")
		{
			hospital.PUT("", allow(auth.ResourceHospital, auth.ActionWrite), hm.hospitalHandler.UpdateHospital)
			hospital.DELETE("", allow(auth.ResourceHospital, auth.ActionDelete), hm.hospitalHandler.DeleteHospital)

			// Templates and hospital-wide content
			content := hospital.Group("")
			{
				content.PUT("/checklist-templates", allow(auth.ResourceContent, auth.ActionWrite), hm.hospitalHandler.UpsertChecklistTemplate)
				content.DELETE("/checklist-templates/:templateId", allow(auth.ResourceContent, auth.ActionDelete), hm.hospitalHandler.DeleteChecklistTemplate)
				content.PUT("/exam-templates", allow(auth.ResourceContent, auth.ActionWrite), hm.hospitalHandler.UpsertExamTemplate)
				content.DELETE("/exam-templates/:templateId", allow(auth.ResourceContent, auth.ActionDelete), hm.hospitalHandler.DeleteExamTemplate)
				content.POST("/banners", allow(auth.ResourceContent, auth.ActionWrite), hm.hospitalHandler.AddNewsBanner)
				content.DELETE("/banners/:bannerId", allow(auth.ResourceContent, auth.ActionDelete), hm.hospitalHandler.DeleteNewsBanner)
				content.POST("/accreditation", allow(auth.ResourceContent, auth.ActionWrite), hm.hospitalHandler.AddAccreditationMaterial)
				content.DELETE("/accreditation/:materialId", allow(auth.ResourceContent, auth.ActionDelete), hm.hospitalHandler.DeleteAccreditationMaterial)
				content.POST("/training", allow(auth.ResourceContent, auth.ActionWrite), hm.hospitalHandler.AddTrainingMaterial)
				content.DELETE("/training/:month/:materialId", allow(auth.ResourceContent, auth.ActionDelete), hm.hospitalHandler.DeleteTrainingMaterial)
			}

			// Admin messages - Admins only
			hospital.POST("/admin-messages", am.RequireRole(models.RoleAdmin), hm.hospitalHandler.AddAdminMessage)
			hospital.DELETE("/admin-messages/:messageId", am.RequireRole(models.RoleAdmin), hm.hospitalHandler.DeleteAdminMessage)

			// Needs assessment
			hospital.PUT("/needs/topics", allow(auth.ResourceNeeds, auth.ActionWrite), hm.hospitalHandler.UpsertNeedsTopic)
			hospital.DELETE("/needs/:year/:month/topics/:topicId", allow(auth.ResourceNeeds, auth.ActionDelete), hm.hospitalHandler.DeleteNeedsTopic)
			hospital.POST("/needs/topics/:topicId/responses", am.RequireRole(models.RoleStaff), allow(auth.ResourceNeeds, auth.ActionSubmit), hm.hospitalHandler.SubmitNeedsResponse)

			hospital.POST("/departments", allow(auth.ResourceDepartment, auth.ActionWrite), hm.departmentHandler.CreateDepartment)
		}

		department := hospital.Group("/departments/:departmentId")
		{
			department.PUT("", allow(auth.ResourceDepartment, auth.ActionWrite), hm.departmentHandler.UpdateDepartment)
			department.DELETE("", allow(auth.ResourceDepartment, auth.ActionDelete), hm.departmentHandler.DeleteDepartment)
			department.POST("/training", allow(auth.ResourceContent, auth.ActionWrite), hm.departmentHandler.AddTrainingMaterial)
			department.DELETE("/training/:month/:materialId", allow(auth.ResourceContent, auth.ActionDelete), hm.departmentHandler.DeleteTrainingMaterial)
			department.POST("/patient-education", allow(auth.ResourceContent, auth.ActionWrite), hm.departmentHandler.AddPatientEducationMaterial)
			department.DELETE("/patient-education/:materialId", allow(auth.ResourceContent, auth.ActionDelete), hm.departmentHandler.DeletePatientEducationMaterial)
			department.GET("/report", allow(auth.ResourceReport, auth.ActionRead), hm.departmentHandler.DownloadReport)

			department.POST("/staff", allow(auth.ResourceStaff, auth.ActionWrite), hm.staffHandler.CreateStaff)
			department.POST("/patients", allow(auth.ResourcePatient, auth.ActionWrite), hm.patientHandler.CreatePatient)
		}

		staff := department.Group("/staff/:staffId")
		{
			staff.PUT("", allow(auth.ResourceStaff, auth.ActionWrite), hm.staffHandler.UpdateStaff)
			staff.DELETE("", allow(auth.ResourceStaff, auth.ActionDelete), hm.staffHandler.DeleteStaff)
			staff.PUT("/assessments", allow(auth.ResourceAssessment, auth.ActionWrite), hm.staffHandler.UpsertAssessment)
			staff.DELETE("/assessments/:assessmentId", allow(auth.ResourceAssessment, auth.ActionDelete), hm.staffHandler.DeleteAssessment)
			staff.PUT("/assessments/:assessmentId/message", allow(auth.ResourceAssessment, auth.ActionWrite), hm.staffHandler.SetAssessmentMessage)
			staff.POST("/assessments/:assessmentId/exams", allow(auth.ResourceExam, auth.ActionSubmit), hm.staffHandler.SubmitExam)
			staff.PUT("/worklogs", allow(auth.ResourceWorkLog, auth.ActionWrite), hm.staffHandler.UpsertWorkLog)
		}

		patient := department.Group("/patients/:patientId")
		{
			patient.PUT("", allow(auth.ResourcePatient, auth.ActionWrite), hm.patientHandler.UpdatePatient)
			patient.DELETE("", allow(auth.ResourcePatient, auth.ActionDelete), hm.patientHandler.DeletePatient)
			patient.POST("/chat", allow(auth.ResourceChat, auth.ActionWrite), hm.patientHandler.AppendChatMessage)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "skill-tracker",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "skill-tracker",
		})
	})
}
