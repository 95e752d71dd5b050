package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/syncer"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

type departmentService struct {
	base
}

func NewDepartmentService(deps Dependencies) DepartmentService {
	return &departmentService{base: newBase(deps)}
}

// UpsertDepartment replaces the scalar fields of an existing department or
// adds a new one to the hospital. Staff, patients and materials are kept.
func (s *departmentService) UpsertDepartment(ctx context.Context, hospitalID string, d *models.Department) error {
	if strings.TrimSpace(d.Name) == "" {
		return validator.ValidationErrors{{Field: "name", Message: "is required", Rule: "required"}}
	}
	if d.ID == "" {
		d.ID = newID()
	}
	incoming := *d

	return s.mutate(ctx, "upsert department", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		existing := h.Department(incoming.ID)
		if existing == nil {
			if incoming.Staff == nil {
				incoming.Staff = []models.StaffMember{}
			}
			h.Departments = append(h.Departments, incoming)
			return nil
		}
		existing.Name = incoming.Name
		existing.ManagerName = incoming.ManagerName
		existing.ManagerNationalID = orStored(incoming.ManagerNationalID, existing.ManagerNationalID)
		existing.ManagerPassword = orStored(incoming.ManagerPassword, existing.ManagerPassword)
		existing.StaffCount = incoming.StaffCount
		existing.BedCount = incoming.BedCount
		return nil
	})
}

// DeleteDepartment removes the department with its staff and patients. Blobs
// of its training materials, education materials and chat attachments are
// cleaned up once the removal is confirmed.
func (s *departmentService) DeleteDepartment(ctx context.Context, hospitalID, departmentID string) error {
	return s.mutateVerified(ctx, "delete department", func(ds *models.Dataset, change *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		for i := range h.Departments {
			if h.Departments[i].ID == departmentID {
				change.Orphan(h.Departments[i].BlobPaths()...)
				h.Departments = append(h.Departments[:i], h.Departments[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrDepartmentNotFound, departmentID)
	}, func(ds *models.Dataset) bool {
		return ds.Department(hospitalID, departmentID) != nil
	})
}

func (s *departmentService) AddDepartmentTrainingMaterial(ctx context.Context, hospitalID, departmentID, month string, m *models.Material) error {
	if !models.IsValidMonth(month) {
		return validator.ValidationErrors{{Field: "month", Message: "must be a calendar month name", Value: month, Rule: "persian_month"}}
	}
	var up uploads
	if err := s.storeMaterial(ctx, &up, m); err != nil {
		return err
	}
	incoming := *m

	return s.mutate(ctx, "add department training material", up, func(ds *models.Dataset, _ *syncer.Change) error {
		_, d, err := findDepartment(ds, hospitalID, departmentID)
		if err != nil {
			return err
		}
		d.TrainingMaterials = addTraining(d.TrainingMaterials, month, incoming)
		return nil
	})
}

func (s *departmentService) DeleteDepartmentTrainingMaterial(ctx context.Context, hospitalID, departmentID, month, materialID string) error {
	return s.mutate(ctx, "delete department training material", nil, func(ds *models.Dataset, change *syncer.Change) error {
		_, d, err := findDepartment(ds, hospitalID, departmentID)
		if err != nil {
			return err
		}
		var removed *models.Material
		d.TrainingMaterials, removed = removeTraining(d.TrainingMaterials, month, materialID)
		if removed == nil {
			return fmt.Errorf("%w: %s", ErrMaterialNotFound, materialID)
		}
		change.Orphan(removed.Path)
		return nil
	})
}

func (s *departmentService) AddPatientEducationMaterial(ctx context.Context, hospitalID, departmentID string, m *models.Material) error {
	var up uploads
	if err := s.storeMaterial(ctx, &up, m); err != nil {
		return err
	}
	incoming := *m

	return s.mutate(ctx, "add patient education material", up, func(ds *models.Dataset, _ *syncer.Change) error {
		_, d, err := findDepartment(ds, hospitalID, departmentID)
		if err != nil {
			return err
		}
		d.PatientEducationMaterials = append(d.PatientEducationMaterials, incoming)
		return nil
	})
}

func (s *departmentService) DeletePatientEducationMaterial(ctx context.Context, hospitalID, departmentID, materialID string) error {
	return s.mutate(ctx, "delete patient education material", nil, func(ds *models.Dataset, change *syncer.Change) error {
		_, d, err := findDepartment(ds, hospitalID, departmentID)
		if err != nil {
			return err
		}
		var removed *models.Material
		d.PatientEducationMaterials, removed = removeMaterial(d.PatientEducationMaterials, materialID)
		if removed == nil {
			return fmt.Errorf("%w: %s", ErrMaterialNotFound, materialID)
		}
		change.Orphan(removed.Path)
		return nil
	})
}
