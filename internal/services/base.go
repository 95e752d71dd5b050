package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/skill-tracker/internal/blob"
	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/syncer"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

// BlobResolver turns an inline data URL into a stored path. *blob.Storage
// implements it.
type BlobResolver interface {
	ResolveReference(ctx context.Context, ref, name string) (string, error)
}

// base holds what every operator needs. Operators never touch the dataset
// outside an engine mutation.
type base struct {
	engine    *syncer.Engine
	blobs     BlobResolver
	cleaner   syncer.BlobCleaner
	validator *validator.Validator
	logger    *slog.Logger
	now       func() time.Time
}

func newBase(deps Dependencies) base {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	v := deps.Validator
	if v == nil {
		v = validator.New()
	}
	return base{
		engine:    deps.Engine,
		blobs:     deps.Blobs,
		cleaner:   deps.Cleaner,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

func (b *base) timestamp() string {
	return b.now().UTC().Format(time.RFC3339)
}

func newID() string {
	return uuid.NewString()
}

// orStored keeps a stored credential when an upsert leaves it blank, so
// editing an entity never locks its owner out.
func orStored(incoming, stored string) string {
	if strings.TrimSpace(incoming) == "" {
		return stored
	}
	return incoming
}

// uploads tracks blobs stored ahead of a mutation so they can be removed if
// the mutation is not persisted.
type uploads []string

// storeRef uploads ref when it is an inline data URL and returns the stored
// path. Without a blob store the reference is kept as given.
func (b *base) storeRef(ctx context.Context, up *uploads, ref, name string) (string, error) {
	if ref == "" || b.blobs == nil || !blob.IsDataURL(ref) {
		return ref, nil
	}
	path, err := b.blobs.ResolveReference(ctx, ref, name)
	if err != nil {
		return "", fmt.Errorf("failed to upload %q: %w", name, err)
	}
	*up = append(*up, path)
	return path, nil
}

// storeMaterial moves inline material content into blob storage.
func (b *base) storeMaterial(ctx context.Context, up *uploads, m *models.Material) error {
	if m.ID == "" {
		m.ID = newID()
	}
	if m.Path != "" || m.Data == "" {
		return nil
	}
	if !blob.IsDataURL(m.Data) {
		m.Path, m.Data = m.Data, ""
		return nil
	}
	if b.blobs == nil {
		return nil
	}
	path, err := b.storeRef(ctx, up, m.Data, m.Name)
	if err != nil {
		return err
	}
	m.Path, m.Data = path, ""
	return nil
}

func (b *base) mutate(ctx context.Context, op string, up uploads, fn syncer.Mutation) error {
	err := b.engine.Mutate(ctx, op, fn)
	b.discardOnFailure(ctx, op, up, err)
	return err
}

func (b *base) mutateVerified(ctx context.Context, op string, fn syncer.Mutation, stillPresent func(*models.Dataset) bool) error {
	return b.engine.MutateVerified(ctx, op, fn, stillPresent)
}

func (b *base) discardOnFailure(ctx context.Context, op string, up uploads, err error) {
	if err == nil || len(up) == 0 || b.cleaner == nil {
		return
	}
	// Any other failure happens after the local cache took the change, so
	// the uploads are referenced there.
	if kind, ok := syncer.KindOf(err); !ok || kind != syncer.KindValidation {
		return
	}
	b.logger.WarnContext(ctx, "Discarding uploads of failed mutation", "op", op, "paths", []string(up))
	b.cleaner.Schedule(ctx, up)
}

// ===== LOOKUPS INSIDE A MUTATION =====

func findHospital(ds *models.Dataset, hospitalID string) (*models.Hospital, error) {
	if h := ds.Hospital(hospitalID); h != nil {
		return h, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrHospitalNotFound, hospitalID)
}

func findDepartment(ds *models.Dataset, hospitalID, departmentID string) (*models.Hospital, *models.Department, error) {
	h, err := findHospital(ds, hospitalID)
	if err != nil {
		return nil, nil, err
	}
	if d := h.Department(departmentID); d != nil {
		return h, d, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrDepartmentNotFound, departmentID)
}

func findStaff(ds *models.Dataset, hospitalID, departmentID, staffID string) (*models.Hospital, *models.StaffMember, error) {
	h, d, err := findDepartment(ds, hospitalID, departmentID)
	if err != nil {
		return nil, nil, err
	}
	if s := d.StaffMember(staffID); s != nil {
		return h, s, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrStaffNotFound, staffID)
}

func findPatient(ds *models.Dataset, hospitalID, departmentID, patientID string) (*models.Patient, error) {
	_, d, err := findDepartment(ds, hospitalID, departmentID)
	if err != nil {
		return nil, err
	}
	if p := d.Patient(patientID); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrPatientNotFound, patientID)
}

func removeMaterial(materials []models.Material, id string) ([]models.Material, *models.Material) {
	for i := range materials {
		if materials[i].ID == id {
			removed := materials[i]
			return append(materials[:i], materials[i+1:]...), &removed
		}
	}
	return materials, nil
}

func addTraining(groups []models.MonthlyTraining, month string, m models.Material) []models.MonthlyTraining {
	for i := range groups {
		if groups[i].Month == month {
			groups[i].Materials = append(groups[i].Materials, m)
			return groups
		}
	}
	return append(groups, models.MonthlyTraining{Month: month, Materials: []models.Material{m}})
}

func removeTraining(groups []models.MonthlyTraining, month, materialID string) ([]models.MonthlyTraining, *models.Material) {
	for i := range groups {
		if groups[i].Month != month {
			continue
		}
		var removed *models.Material
		groups[i].Materials, removed = removeMaterial(groups[i].Materials, materialID)
		if removed != nil && len(groups[i].Materials) == 0 {
			groups = append(groups[:i], groups[i+1:]...)
		}
		return groups, removed
	}
	return groups, nil
}
