package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tiendc/go-deepcopy"
)

// Dataset is the whole multi-hospital document. It is persisted as a single
// JSON array of hospitals.
type Dataset struct {
	Hospitals []Hospital
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{Hospitals: []Hospital{}}
}

func (d Dataset) MarshalJSON() ([]byte, error) {
	if d.Hospitals == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.Hospitals)
}

func (d *Dataset) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		d.Hospitals = []Hospital{}
		return nil
	}

	var hospitals []Hospital
	if err := json.Unmarshal(trimmed, &hospitals); err != nil {
		return fmt.Errorf("decode dataset: %w", err)
	}
	if hospitals == nil {
		hospitals = []Hospital{}
	}
	d.Hospitals = hospitals
	return nil
}

// DecodeDataset parses a serialized dataset document.
func DecodeDataset(data []byte) (*Dataset, error) {
	ds := NewDataset()
	if err := json.Unmarshal(data, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// Encode serializes the dataset into its document form.
func (d *Dataset) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// Clone returns a deep copy that shares no slices with d.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return NewDataset()
	}
	out := NewDataset()
	if err := deepcopy.Copy(&out.Hospitals, d.Hospitals); err != nil {
		// deepcopy only fails on unsupported kinds, which the model does not contain
		panic(fmt.Sprintf("clone dataset: %v", err))
	}
	if out.Hospitals == nil {
		out.Hospitals = []Hospital{}
	}
	return out
}

// IsEmpty reports whether the dataset holds no hospitals.
func (d *Dataset) IsEmpty() bool {
	return d == nil || len(d.Hospitals) == 0
}

// ===== LOOKUPS =====
// All lookups assume id uniqueness within the parent collection and return
// the first match.

func (d *Dataset) Hospital(hospitalID string) *Hospital {
	for i := range d.Hospitals {
		if d.Hospitals[i].ID == hospitalID {
			return &d.Hospitals[i]
		}
	}
	return nil
}

func (d *Dataset) Department(hospitalID, departmentID string) *Department {
	h := d.Hospital(hospitalID)
	if h == nil {
		return nil
	}
	return h.Department(departmentID)
}

func (d *Dataset) Staff(hospitalID, departmentID, staffID string) *StaffMember {
	dept := d.Department(hospitalID, departmentID)
	if dept == nil {
		return nil
	}
	return dept.StaffMember(staffID)
}

func (d *Dataset) Patient(hospitalID, departmentID, patientID string) *Patient {
	dept := d.Department(hospitalID, departmentID)
	if dept == nil {
		return nil
	}
	return dept.Patient(patientID)
}

// FindDepartment scans every hospital for a department id and returns the
// first match together with its hospital.
func (d *Dataset) FindDepartment(departmentID string) (*Hospital, *Department) {
	for i := range d.Hospitals {
		if dept := d.Hospitals[i].Department(departmentID); dept != nil {
			return &d.Hospitals[i], dept
		}
	}
	return nil, nil
}

// FindStaff scans the whole dataset for a staff id.
func (d *Dataset) FindStaff(staffID string) (*Hospital, *Department, *StaffMember) {
	for i := range d.Hospitals {
		h := &d.Hospitals[i]
		for j := range h.Departments {
			if s := h.Departments[j].StaffMember(staffID); s != nil {
				return h, &h.Departments[j], s
			}
		}
	}
	return nil, nil, nil
}

// BlobPaths returns every stored blob path referenced anywhere in the dataset.
func (d *Dataset) BlobPaths() []string {
	var paths []string
	for i := range d.Hospitals {
		paths = append(paths, d.Hospitals[i].BlobPaths()...)
	}
	return paths
}
