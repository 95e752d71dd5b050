package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/syncer"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

type hospitalService struct {
	base
}

func NewHospitalService(deps Dependencies) HospitalService {
	return &hospitalService{base: newBase(deps)}
}

// UpsertHospital replaces the scalar fields of an existing hospital or adds a
// new one. Child collections of an existing hospital are kept.
func (s *hospitalService) UpsertHospital(ctx context.Context, h *models.Hospital) error {
	if strings.TrimSpace(h.Name) == "" {
		return validator.ValidationErrors{{Field: "name", Message: "is required", Rule: "required"}}
	}
	if h.ID == "" {
		h.ID = newID()
	}
	incoming := *h

	return s.mutate(ctx, "upsert hospital", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		existing := ds.Hospital(incoming.ID)
		if existing == nil {
			if incoming.Departments == nil {
				incoming.Departments = []models.Department{}
			}
			ds.Hospitals = append(ds.Hospitals, incoming)
			return nil
		}
		existing.Name = incoming.Name
		existing.Province = incoming.Province
		existing.City = incoming.City
		existing.SupervisorName = incoming.SupervisorName
		existing.SupervisorNationalID = orStored(incoming.SupervisorNationalID, existing.SupervisorNationalID)
		existing.SupervisorPassword = orStored(incoming.SupervisorPassword, existing.SupervisorPassword)
		return nil
	})
}

// DeleteHospital removes the hospital with everything beneath it and
// verifies the removal on the server.
func (s *hospitalService) DeleteHospital(ctx context.Context, hospitalID string) error {
	return s.mutateVerified(ctx, "delete hospital", func(ds *models.Dataset, change *syncer.Change) error {
		for i := range ds.Hospitals {
			if ds.Hospitals[i].ID == hospitalID {
				change.Orphan(ds.Hospitals[i].BlobPaths()...)
				ds.Hospitals = append(ds.Hospitals[:i], ds.Hospitals[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrHospitalNotFound, hospitalID)
	}, func(ds *models.Dataset) bool {
		return ds.Hospital(hospitalID) != nil
	})
}

// ===== TEMPLATES =====

func (s *hospitalService) UpsertChecklistTemplate(ctx context.Context, hospitalID string, tpl *models.ChecklistTemplate) error {
	if errs := s.validator.GetBusinessValidator().ValidateChecklistTemplate(tpl); len(errs) > 0 {
		return errs
	}
	if tpl.ID == "" {
		tpl.ID = newID()
	}
	incoming := *tpl

	return s.mutate(ctx, "upsert checklist template", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		h.ChecklistTemplates = upsertByID(h.ChecklistTemplates, incoming, func(t *models.ChecklistTemplate) string { return t.ID })
		return nil
	})
}

func (s *hospitalService) DeleteChecklistTemplate(ctx context.Context, hospitalID, templateID string) error {
	return s.mutate(ctx, "delete checklist template", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		var ok bool
		h.ChecklistTemplates, ok = removeByID(h.ChecklistTemplates, templateID, func(t *models.ChecklistTemplate) string { return t.ID })
		if !ok {
			return fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
		}
		return nil
	})
}

func (s *hospitalService) UpsertExamTemplate(ctx context.Context, hospitalID string, tpl *models.ExamTemplate) error {
	if errs := s.validator.GetBusinessValidator().ValidateExamTemplate(tpl); len(errs) > 0 {
		return errs
	}
	if tpl.ID == "" {
		tpl.ID = newID()
	}
	for i := range tpl.Questions {
		if tpl.Questions[i].ID == "" {
			tpl.Questions[i].ID = newID()
		}
	}
	incoming := *tpl

	return s.mutate(ctx, "upsert exam template", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		h.ExamTemplates = upsertByID(h.ExamTemplates, incoming, func(t *models.ExamTemplate) string { return t.ID })
		return nil
	})
}

// DeleteExamTemplate leaves earlier submissions alone; they carry their own
// copy of the questions.
func (s *hospitalService) DeleteExamTemplate(ctx context.Context, hospitalID, templateID string) error {
	return s.mutate(ctx, "delete exam template", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		var ok bool
		h.ExamTemplates, ok = removeByID(h.ExamTemplates, templateID, func(t *models.ExamTemplate) string { return t.ID })
		if !ok {
			return fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
		}
		return nil
	})
}

// ===== CONTENT =====

func (s *hospitalService) AddNewsBanner(ctx context.Context, hospitalID string, banner *models.NewsBanner) error {
	if banner.ID == "" {
		banner.ID = newID()
	}
	var up uploads
	path, err := s.storeRef(ctx, &up, banner.ImagePath, banner.Title)
	if err != nil {
		return err
	}
	banner.ImagePath = path
	incoming := *banner

	return s.mutate(ctx, "add news banner", up, func(ds *models.Dataset, _ *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		h.NewsBanners = append(h.NewsBanners, incoming)
		return nil
	})
}

func (s *hospitalService) DeleteNewsBanner(ctx context.Context, hospitalID, bannerID string) error {
	return s.mutate(ctx, "delete news banner", nil, func(ds *models.Dataset, change *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		for i := range h.NewsBanners {
			if h.NewsBanners[i].ID == bannerID {
				change.Orphan(h.NewsBanners[i].ImagePath)
				h.NewsBanners = append(h.NewsBanners[:i], h.NewsBanners[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrBannerNotFound, bannerID)
	})
}

func (s *hospitalService) AddAccreditationMaterial(ctx context.Context, hospitalID string, m *models.Material) error {
	var up uploads
	if err := s.storeMaterial(ctx, &up, m); err != nil {
		return err
	}
	incoming := *m

	return s.mutate(ctx, "add accreditation material", up, func(ds *models.Dataset, _ *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		h.AccreditationMaterials = append(h.AccreditationMaterials, incoming)
		return nil
	})
}

func (s *hospitalService) DeleteAccreditationMaterial(ctx context.Context, hospitalID, materialID string) error {
	return s.mutate(ctx, "delete accreditation material", nil, func(ds *models.Dataset, change *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		var removed *models.Material
		h.AccreditationMaterials, removed = removeMaterial(h.AccreditationMaterials, materialID)
		if removed == nil {
			return fmt.Errorf("%w: %s", ErrMaterialNotFound, materialID)
		}
		change.Orphan(removed.Path)
		return nil
	})
}

func (s *hospitalService) AddHospitalTrainingMaterial(ctx context.Context, hospitalID, month string, m *models.Material) error {
	if !models.IsValidMonth(month) {
		return validator.ValidationErrors{{Field: "month", Message: "must be a calendar month name", Value: month, Rule: "persian_month"}}
	}
	var up uploads
	if err := s.storeMaterial(ctx, &up, m); err != nil {
		return err
	}
	incoming := *m

	return s.mutate(ctx, "add hospital training material", up, func(ds *models.Dataset, _ *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		h.TrainingMaterials = addTraining(h.TrainingMaterials, month, incoming)
		return nil
	})
}

func (s *hospitalService) DeleteHospitalTrainingMaterial(ctx context.Context, hospitalID, month, materialID string) error {
	return s.mutate(ctx, "delete hospital training material", nil, func(ds *models.Dataset, change *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		var removed *models.Material
		h.TrainingMaterials, removed = removeTraining(h.TrainingMaterials, month, materialID)
		if removed == nil {
			return fmt.Errorf("%w: %s", ErrMaterialNotFound, materialID)
		}
		change.Orphan(removed.Path)
		return nil
	})
}

func (s *hospitalService) AddAdminMessage(ctx context.Context, hospitalID, content string) (*models.AdminMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, validator.ValidationErrors{{Field: "content", Message: "is required", Rule: "required"}}
	}
	msg := models.AdminMessage{ID: newID(), Content: content, Timestamp: s.timestamp()}

	err := s.mutate(ctx, "add admin message", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		h.AdminMessages = append(h.AdminMessages, msg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *hospitalService) DeleteAdminMessage(ctx context.Context, hospitalID, messageID string) error {
	return s.mutate(ctx, "delete admin message", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		var ok bool
		h.AdminMessages, ok = removeByID(h.AdminMessages, messageID, func(m *models.AdminMessage) string { return m.ID })
		if !ok {
			return fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
		}
		return nil
	})
}

// ===== GENERIC HELPERS =====

func upsertByID[T any](list []T, item T, id func(*T) string) []T {
	key := id(&item)
	for i := range list {
		if id(&list[i]) == key {
			list[i] = item
			return list
		}
	}
	return append(list, item)
}

func removeByID[T any](list []T, key string, id func(*T) string) ([]T, bool) {
	for i := range list {
		if id(&list[i]) == key {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}
