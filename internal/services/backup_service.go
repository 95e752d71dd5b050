package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/syncer"
)

const (
	BackupFull       = "full-backup"
	BackupHospital   = "hospital-backup"
	BackupDepartment = "department-backup"
)

// Backup is the downloadable snapshot format. Data holds a dataset, a
// hospital or a department depending on Type.
type Backup struct {
	Type       string          `json:"type"`
	ID         string          `json:"id,omitempty"`
	ExportedAt string          `json:"exportedAt"`
	Data       json.RawMessage `json:"data"`
}

type backupService struct {
	base
}

func NewBackupService(deps Dependencies) BackupService {
	return &backupService{base: newBase(deps)}
}

func backupTypeFor(role models.UserRole) (string, error) {
	switch role {
	case models.RoleAdmin:
		return BackupFull, nil
	case models.RoleSupervisor:
		return BackupHospital, nil
	case models.RoleManager:
		return BackupDepartment, nil
	}
	return "", fmt.Errorf("%w: %s cannot use backups", ErrPermissionDenied, role)
}

// Export snapshots the part of the dataset the principal administers.
func (s *backupService) Export(ctx context.Context, principal *models.Principal) (*Backup, error) {
	kind, err := backupTypeFor(principal.Role)
	if err != nil {
		return nil, err
	}
	ds := s.engine.FetchDataset(ctx)

	var (
		id      string
		payload any
	)
	switch kind {
	case BackupFull:
		payload = ds
	case BackupHospital:
		h := ds.Hospital(principal.HospitalID)
		if h == nil {
			return nil, fmt.Errorf("%w: %s", ErrHospitalNotFound, principal.HospitalID)
		}
		id, payload = h.ID, h
	case BackupDepartment:
		d := ds.Department(principal.HospitalID, principal.DepartmentID)
		if d == nil {
			return nil, fmt.Errorf("%w: %s", ErrDepartmentNotFound, principal.DepartmentID)
		}
		id, payload = d.ID, d
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	s.logger.InfoContext(ctx, "Backup exported", "type", kind, "id", id, "role", principal.Role)
	return &Backup{Type: kind, ID: id, ExportedAt: s.timestamp(), Data: data}, nil
}

// Import checks the file against the principal before touching the dataset,
// then replaces the principal's whole scope with the file's content. Blobs
// referenced only by the replaced content are cleaned up.
func (s *backupService) Import(ctx context.Context, principal *models.Principal, raw []byte) error {
	want, err := backupTypeFor(principal.Role)
	if err != nil {
		return err
	}

	var b Backup
	if err := json.Unmarshal(raw, &b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if b.Type != want {
		return &BackupMismatchError{Field: "type", Expected: want, Actual: b.Type}
	}
	if len(b.Data) == 0 {
		return fmt.Errorf("%w: missing data", ErrInvalidBackup)
	}

	var fn syncer.Mutation
	switch want {
	case BackupFull:
		incoming, err := models.DecodeDataset(b.Data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}
		fn = func(ds *models.Dataset, change *syncer.Change) error {
			change.Orphan(droppedPaths(ds.BlobPaths(), incoming.BlobPaths())...)
			ds.Hospitals = incoming.Hospitals
			return nil
		}

	case BackupHospital:
		var incoming models.Hospital
		if err := json.Unmarshal(b.Data, &incoming); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}
		if err := matchID(b.ID, incoming.ID, principal.HospitalID); err != nil {
			return err
		}
		fn = func(ds *models.Dataset, change *syncer.Change) error {
			h, err := findHospital(ds, principal.HospitalID)
			if err != nil {
				return err
			}
			change.Orphan(droppedPaths(h.BlobPaths(), incoming.BlobPaths())...)
			*h = incoming
			return nil
		}

	case BackupDepartment:
		var incoming models.Department
		if err := json.Unmarshal(b.Data, &incoming); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}
		if err := matchID(b.ID, incoming.ID, principal.DepartmentID); err != nil {
			return err
		}
		fn = func(ds *models.Dataset, change *syncer.Change) error {
			_, d, err := findDepartment(ds, principal.HospitalID, principal.DepartmentID)
			if err != nil {
				return err
			}
			change.Orphan(droppedPaths(d.BlobPaths(), incoming.BlobPaths())...)
			*d = incoming
			return nil
		}
	}

	if err := s.mutate(ctx, "import "+want, nil, fn); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Backup imported", "type", want, "id", b.ID, "role", principal.Role)
	return nil
}

func matchID(fileID, dataID, expected string) error {
	if fileID != expected {
		return &BackupMismatchError{Field: "id", Expected: expected, Actual: fileID}
	}
	if dataID != expected {
		return &BackupMismatchError{Field: "data id", Expected: expected, Actual: dataID}
	}
	return nil
}

func droppedPaths(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, p := range after {
		keep[p] = struct{}{}
	}
	var dropped []string
	for _, p := range before {
		if _, ok := keep[p]; !ok {
			dropped = append(dropped, p)
		}
	}
	return dropped
}

// ResetDataset empties the whole dataset and removes every stored blob it
// referenced.
func (s *backupService) ResetDataset(ctx context.Context) error {
	return s.mutateVerified(ctx, "reset dataset", func(ds *models.Dataset, change *syncer.Change) error {
		change.Orphan(ds.BlobPaths()...)
		ds.Hospitals = []models.Hospital{}
		return nil
	}, func(ds *models.Dataset) bool {
		return !ds.IsEmpty()
	})
}
