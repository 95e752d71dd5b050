package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/syncer"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

type staffService struct {
	base
}

func NewStaffService(deps Dependencies) StaffService {
	return &staffService{base: newBase(deps)}
}

// UpsertStaff replaces the scalar fields of an existing staff member or adds
// a new one. Assessments and work logs are kept.
func (s *staffService) UpsertStaff(ctx context.Context, hospitalID, departmentID string, member *models.StaffMember) error {
	if strings.TrimSpace(member.Name) == "" {
		return validator.ValidationErrors{{Field: "name", Message: "is required", Rule: "required"}}
	}
	if member.ID == "" {
		member.ID = newID()
	}
	incoming := *member

	return s.mutate(ctx, "upsert staff", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		_, d, err := findDepartment(ds, hospitalID, departmentID)
		if err != nil {
			return err
		}
		existing := d.StaffMember(incoming.ID)
		if existing == nil {
			if incoming.Assessments == nil {
				incoming.Assessments = []models.Assessment{}
			}
			d.Staff = append(d.Staff, incoming)
			return nil
		}
		existing.Name = incoming.Name
		existing.Title = incoming.Title
		existing.NationalID = orStored(incoming.NationalID, existing.NationalID)
		existing.Password = orStored(incoming.Password, existing.Password)
		return nil
	})
}

func (s *staffService) DeleteStaff(ctx context.Context, hospitalID, departmentID, staffID string) error {
	return s.mutateVerified(ctx, "delete staff", func(ds *models.Dataset, _ *syncer.Change) error {
		_, d, err := findDepartment(ds, hospitalID, departmentID)
		if err != nil {
			return err
		}
		var ok bool
		d.Staff, ok = removeByID(d.Staff, staffID, func(m *models.StaffMember) string { return m.ID })
		if !ok {
			return fmt.Errorf("%w: %s", ErrStaffNotFound, staffID)
		}
		return nil
	}, func(ds *models.Dataset) bool {
		return ds.Staff(hospitalID, departmentID, staffID) != nil
	})
}

// UpsertAssessment stores the assessment as the staff member's single
// assessment for its month and year, replacing any other with the same id
// or period. Scores are clamped to the assessment's bounds, or to those of
// its checklist template, before they are written.
func (s *staffService) UpsertAssessment(ctx context.Context, hospitalID, departmentID, staffID string, a *models.Assessment) error {
	if errs := s.validator.GetBusinessValidator().ValidateAssessment(a); len(errs) > 0 {
		return errs
	}
	var stored models.Assessment

	err := s.mutate(ctx, "upsert assessment", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		h, member, err := findStaff(ds, hospitalID, departmentID, staffID)
		if err != nil {
			return err
		}

		incoming := *a
		var tpl *models.ChecklistTemplate
		if incoming.TemplateID != "" {
			tpl = h.ChecklistTemplate(incoming.TemplateID)
		}
		if incoming.MinScore == nil && tpl != nil {
			lo, hi := tpl.MinScore, tpl.MaxScore
			incoming.MinScore, incoming.MaxScore = &lo, &hi
		}
		if lo, hi, ok := incoming.ScoreBounds(tpl); ok {
			incoming.ClampScores(lo, hi)
		}

		member.Assessments, stored = replaceAssessment(member.Assessments, incoming)
		return nil
	})
	if err != nil {
		return err
	}
	*a = stored
	return nil
}

// replaceAssessment drops every assessment sharing incoming's id or period
// and puts incoming where the first of them was. Fields the caller left empty
// are carried over from the replaced assessment.
func replaceAssessment(list []models.Assessment, incoming models.Assessment) ([]models.Assessment, models.Assessment) {
	out := make([]models.Assessment, 0, len(list)+1)
	pos := -1
	var previous *models.Assessment
	for i := range list {
		e := list[i]
		sameID := incoming.ID != "" && e.ID == incoming.ID
		samePeriod := e.Month == incoming.Month && e.Year == incoming.Year
		if !sameID && !samePeriod {
			out = append(out, e)
			continue
		}
		if previous == nil {
			previous = &e
			pos = len(out)
		}
	}

	if previous != nil {
		if incoming.ID == "" {
			incoming.ID = previous.ID
		}
		if incoming.ExamSubmissions == nil {
			incoming.ExamSubmissions = previous.ExamSubmissions
		}
		if incoming.SupervisorMessage == "" {
			incoming.SupervisorMessage = previous.SupervisorMessage
		}
		if incoming.ManagerMessage == "" {
			incoming.ManagerMessage = previous.ManagerMessage
		}
	}
	if incoming.ID == "" {
		incoming.ID = newID()
	}

	if pos < 0 {
		return append(out, incoming), incoming
	}
	out = append(out, models.Assessment{})
	copy(out[pos+1:], out[pos:])
	out[pos] = incoming
	return out, incoming
}

func (s *staffService) DeleteAssessment(ctx context.Context, hospitalID, departmentID, staffID, assessmentID string) error {
	return s.mutateVerified(ctx, "delete assessment", func(ds *models.Dataset, _ *syncer.Change) error {
		_, member, err := findStaff(ds, hospitalID, departmentID, staffID)
		if err != nil {
			return err
		}
		var ok bool
		member.Assessments, ok = removeByID(member.Assessments, assessmentID, func(a *models.Assessment) string { return a.ID })
		if !ok {
			return fmt.Errorf("%w: %s", ErrAssessmentNotFound, assessmentID)
		}
		return nil
	}, func(ds *models.Dataset) bool {
		member := ds.Staff(hospitalID, departmentID, staffID)
		if member == nil {
			return false
		}
		for _, a := range member.Assessments {
			if a.ID == assessmentID {
				return true
			}
		}
		return false
	})
}

func findAssessment(member *models.StaffMember, assessmentID string) (*models.Assessment, error) {
	for i := range member.Assessments {
		if member.Assessments[i].ID == assessmentID {
			return &member.Assessments[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAssessmentNotFound, assessmentID)
}

// SetAssessmentMessage stores a supervisor's or manager's note on an
// assessment.
func (s *staffService) SetAssessmentMessage(ctx context.Context, hospitalID, departmentID, staffID, assessmentID string, from models.UserRole, message string) error {
	switch from {
	case models.RoleAdmin, models.RoleSupervisor, models.RoleManager:
	default:
		return fmt.Errorf("%w: %s cannot leave assessment notes", ErrPermissionDenied, from)
	}

	return s.mutate(ctx, "set assessment message", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		_, member, err := findStaff(ds, hospitalID, departmentID, staffID)
		if err != nil {
			return err
		}
		a, err := findAssessment(member, assessmentID)
		if err != nil {
			return err
		}
		if from == models.RoleManager {
			a.ManagerMessage = message
		} else {
			a.SupervisorMessage = message
		}
		return nil
	})
}

// SubmitExam grades answers against the hospital's exam template and records
// the result on the assessment. A second submission for the same exam
// replaces the first.
func (s *staffService) SubmitExam(ctx context.Context, hospitalID, departmentID, staffID, assessmentID, examID string, answers []models.ExamAnswer) (*models.ExamSubmission, error) {
	var submission models.ExamSubmission

	err := s.mutate(ctx, "submit exam", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		h, member, err := findStaff(ds, hospitalID, departmentID, staffID)
		if err != nil {
			return err
		}
		a, err := findAssessment(member, assessmentID)
		if err != nil {
			return err
		}
		tpl := h.ExamTemplate(examID)
		if tpl == nil {
			return fmt.Errorf("%w: %s", ErrTemplateNotFound, examID)
		}

		score, autoGraded := models.GradeExam(tpl.Questions, answers)
		submission = models.ExamSubmission{
			ID:                       newID(),
			ExamID:                   tpl.ID,
			ExamName:                 tpl.Name,
			Answers:                  append([]models.ExamAnswer{}, answers...),
			Score:                    score,
			TotalAutoGradedQuestions: autoGraded,
			SubmissionDate:           s.timestamp(),
			Questions:                freezeQuestions(tpl.Questions),
		}
		a.ExamSubmissions = upsertSubmission(a.ExamSubmissions, submission)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func freezeQuestions(questions []models.ExamQuestion) []models.ExamQuestion {
	out := make([]models.ExamQuestion, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

func upsertSubmission(list []models.ExamSubmission, sub models.ExamSubmission) []models.ExamSubmission {
	for i := range list {
		if list[i].ExamID == sub.ExamID {
			list[i] = sub
			return list
		}
	}
	return append(list, sub)
}

// UpsertWorkLog keeps one work log per month and year.
func (s *staffService) UpsertWorkLog(ctx context.Context, hospitalID, departmentID, staffID string, w *models.WorkLog) error {
	if errs := s.validator.GetBusinessValidator().ValidatePeriod(w.Month, w.Year); len(errs) > 0 {
		return errs
	}
	var stored models.WorkLog

	err := s.mutate(ctx, "upsert work log", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		_, member, err := findStaff(ds, hospitalID, departmentID, staffID)
		if err != nil {
			return err
		}
		stored = *w
		for i := range member.WorkLogs {
			if member.WorkLogs[i].Month == w.Month && member.WorkLogs[i].Year == w.Year {
				stored.ID = member.WorkLogs[i].ID
				member.WorkLogs[i] = stored
				return nil
			}
		}
		if stored.ID == "" {
			stored.ID = newID()
		}
		member.WorkLogs = append(member.WorkLogs, stored)
		return nil
	})
	if err != nil {
		return err
	}
	*w = stored
	return nil
}
