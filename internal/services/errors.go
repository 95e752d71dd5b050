package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	ErrHospitalNotFound   = fmt.Errorf("hospital %w", ErrNotFound)
	ErrDepartmentNotFound = fmt.Errorf("department %w", ErrNotFound)
	ErrStaffNotFound      = fmt.Errorf("staff member %w", ErrNotFound)
	ErrPatientNotFound    = fmt.Errorf("patient %w", ErrNotFound)
	ErrAssessmentNotFound = fmt.Errorf("assessment %w", ErrNotFound)
	ErrTemplateNotFound   = fmt.Errorf("template %w", ErrNotFound)
	ErrMaterialNotFound   = fmt.Errorf("material %w", ErrNotFound)
	ErrBannerNotFound     = fmt.Errorf("news banner %w", ErrNotFound)
	ErrMessageNotFound    = fmt.Errorf("message %w", ErrNotFound)
	ErrTopicNotFound      = fmt.Errorf("needs assessment topic %w", ErrNotFound)

	ErrInvalidCredentials = errors.New("invalid national id or password")
	ErrInvalidBackup      = errors.New("invalid backup file")
	ErrPermissionDenied   = errors.New("permission denied")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// BackupMismatchError is returned when an import file does not match the
// importing principal.
type BackupMismatchError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *BackupMismatchError) Error() string {
	return fmt.Sprintf("invalid backup file: expected %s %q, got %q", e.Field, e.Expected, e.Actual)
}

func (e *BackupMismatchError) Unwrap() error {
	return ErrInvalidBackup
}
