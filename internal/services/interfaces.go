package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/skill-tracker/internal/auth"
	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/syncer"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

// Dependencies wires the operators to the sync engine and blob storage.
type Dependencies struct {
	Engine    *syncer.Engine
	Blobs     BlobResolver
	Cleaner   syncer.BlobCleaner
	Resolver  *auth.Resolver
	Validator *validator.Validator
	Logger    *slog.Logger
}

// ===== SERVICE INTERFACES =====
// Every mutating method performs one fetch-modify-write cycle and returns
// nil on success.

type HospitalService interface {
	UpsertHospital(ctx context.Context, h *models.Hospital) error
	DeleteHospital(ctx context.Context, hospitalID string) error

	UpsertChecklistTemplate(ctx context.Context, hospitalID string, tpl *models.ChecklistTemplate) error
	DeleteChecklistTemplate(ctx context.Context, hospitalID, templateID string) error
	UpsertExamTemplate(ctx context.Context, hospitalID string, tpl *models.ExamTemplate) error
	DeleteExamTemplate(ctx context.Context, hospitalID, templateID string) error

	AddNewsBanner(ctx context.Context, hospitalID string, banner *models.NewsBanner) error
	DeleteNewsBanner(ctx context.Context, hospitalID, bannerID string) error
	AddAccreditationMaterial(ctx context.Context, hospitalID string, m *models.Material) error
	DeleteAccreditationMaterial(ctx context.Context, hospitalID, materialID string) error
	AddHospitalTrainingMaterial(ctx context.Context, hospitalID, month string, m *models.Material) error
	DeleteHospitalTrainingMaterial(ctx context.Context, hospitalID, month, materialID string) error

	AddAdminMessage(ctx context.Context, hospitalID, content string) (*models.AdminMessage, error)
	DeleteAdminMessage(ctx context.Context, hospitalID, messageID string) error
}

type DepartmentService interface {
	UpsertDepartment(ctx context.Context, hospitalID string, d *models.Department) error
	DeleteDepartment(ctx context.Context, hospitalID, departmentID string) error

	AddDepartmentTrainingMaterial(ctx context.Context, hospitalID, departmentID, month string, m *models.Material) error
	DeleteDepartmentTrainingMaterial(ctx context.Context, hospitalID, departmentID, month, materialID string) error
	AddPatientEducationMaterial(ctx context.Context, hospitalID, departmentID string, m *models.Material) error
	DeletePatientEducationMaterial(ctx context.Context, hospitalID, departmentID, materialID string) error
}

type StaffService interface {
	UpsertStaff(ctx context.Context, hospitalID, departmentID string, s *models.StaffMember) error
	DeleteStaff(ctx context.Context, hospitalID, departmentID, staffID string) error

	UpsertAssessment(ctx context.Context, hospitalID, departmentID, staffID string, a *models.Assessment) error
	DeleteAssessment(ctx context.Context, hospitalID, departmentID, staffID, assessmentID string) error
	SetAssessmentMessage(ctx context.Context, hospitalID, departmentID, staffID, assessmentID string, from models.UserRole, message string) error
	SubmitExam(ctx context.Context, hospitalID, departmentID, staffID, assessmentID, examID string, answers []models.ExamAnswer) (*models.ExamSubmission, error)

	UpsertWorkLog(ctx context.Context, hospitalID, departmentID, staffID string, w *models.WorkLog) error
}

type PatientService interface {
	UpsertPatient(ctx context.Context, hospitalID, departmentID string, p *models.Patient) error
	DeletePatient(ctx context.Context, hospitalID, departmentID, patientID string) error
	AppendChatMessage(ctx context.Context, hospitalID, departmentID, patientID string, msg *models.ChatMessage) error
}

type NeedsService interface {
	UpsertNeedsTopic(ctx context.Context, hospitalID, month string, year int, topic *models.NeedsAssessmentTopic) error
	DeleteNeedsTopic(ctx context.Context, hospitalID, month string, year int, topicID string) error
	SubmitNeedsResponse(ctx context.Context, hospitalID, month string, year int, topicID string, resp models.TopicResponse) error
}

type BackupService interface {
	Export(ctx context.Context, principal *models.Principal) (*Backup, error)
	Import(ctx context.Context, principal *models.Principal, raw []byte) error
	ResetDataset(ctx context.Context) error
}

type AuthService interface {
	Login(ctx context.Context, nationalID, password string) (*models.Principal, error)
	View(ctx context.Context, principal *models.Principal) *models.Dataset
}

// ServiceManager owns every service instance.
type ServiceManager interface {
	Hospital() HospitalService
	Department() DepartmentService
	Staff() StaffService
	Patient() PatientService
	Needs() NeedsService
	Backup() BackupService
	Auth() AuthService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
