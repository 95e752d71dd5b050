package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/syncer"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

type patientService struct {
	base
}

func NewPatientService(deps Dependencies) PatientService {
	return &patientService{base: newBase(deps)}
}

// UpsertPatient replaces the scalar fields of an existing patient or adds a
// new one. Chat history is kept.
func (s *patientService) UpsertPatient(ctx context.Context, hospitalID, departmentID string, p *models.Patient) error {
	if strings.TrimSpace(p.Name) == "" {
		return validator.ValidationErrors{{Field: "name", Message: "is required", Rule: "required"}}
	}
	if p.ID == "" {
		p.ID = newID()
	}
	incoming := *p

	return s.mutate(ctx, "upsert patient", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		_, d, err := findDepartment(ds, hospitalID, departmentID)
		if err != nil {
			return err
		}
		existing := d.Patient(incoming.ID)
		if existing == nil {
			d.Patients = append(d.Patients, incoming)
			return nil
		}
		existing.Name = incoming.Name
		existing.NationalID = orStored(incoming.NationalID, existing.NationalID)
		existing.Password = orStored(incoming.Password, existing.Password)
		return nil
	})
}

// DeletePatient removes the patient and schedules its chat attachments for
// cleanup.
func (s *patientService) DeletePatient(ctx context.Context, hospitalID, departmentID, patientID string) error {
	return s.mutateVerified(ctx, "delete patient", func(ds *models.Dataset, change *syncer.Change) error {
		_, d, err := findDepartment(ds, hospitalID, departmentID)
		if err != nil {
			return err
		}
		for i := range d.Patients {
			if d.Patients[i].ID == patientID {
				change.Orphan(d.Patients[i].BlobPaths()...)
				d.Patients = append(d.Patients[:i], d.Patients[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrPatientNotFound, patientID)
	}, func(ds *models.Dataset) bool {
		return ds.Patient(hospitalID, departmentID, patientID) != nil
	})
}

// AppendChatMessage adds a message to the patient's conversation. An inline
// attachment is uploaded first and referenced by path.
func (s *patientService) AppendChatMessage(ctx context.Context, hospitalID, departmentID, patientID string, msg *models.ChatMessage) error {
	switch msg.Sender {
	case models.SenderPatient, models.SenderManager:
	default:
		return validator.ValidationErrors{{Field: "sender", Message: "must be patient or manager", Value: msg.Sender, Rule: "chat_sender"}}
	}
	if strings.TrimSpace(msg.Text) == "" && msg.File == nil {
		return validator.ValidationErrors{{Field: "text", Message: "message needs text or a file", Rule: "required"}}
	}
	if msg.ID == "" {
		msg.ID = newID()
	}
	if msg.Timestamp == "" {
		msg.Timestamp = s.timestamp()
	}

	var up uploads
	if msg.File != nil {
		file := *msg.File
		path, err := s.storeRef(ctx, &up, file.Path, file.Name)
		if err != nil {
			return err
		}
		file.Path = path
		msg.File = &file
	}
	incoming := *msg

	return s.mutate(ctx, "append chat message", up, func(ds *models.Dataset, _ *syncer.Change) error {
		p, err := findPatient(ds, hospitalID, departmentID, patientID)
		if err != nil {
			return err
		}
		p.ChatHistory = append(p.ChatHistory, incoming)
		return nil
	})
}
