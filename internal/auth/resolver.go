// Package auth resolves credentials to principals and decides what a
// principal may touch.
package auth

import (
	"crypto/subtle"

	"github.com/SAP-F-2025/skill-tracker/internal/config"
	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

// Resolver finds the principal owning a credential pair. The scan order is
// fixed: admin, hospital supervisors, department managers, staff, patients,
// each in dataset order. A national id reused across roles resolves to the
// first match.
type Resolver struct {
	adminID       string
	adminPassword string
}

func NewResolver(cfg config.AuthConfig) *Resolver {
	return &Resolver{
		adminID:       cfg.AdminNationalID,
		adminPassword: cfg.AdminPassword,
	}
}

// FindUser returns nil when no credential matches.
func (r *Resolver) FindUser(ds *models.Dataset, nationalID, password string) *models.Principal {
	if nationalID == "" {
		return nil
	}
	if r.adminID != "" && subtle.ConstantTimeCompare([]byte(r.adminID), []byte(nationalID)) == 1 &&
		PasswordMatches(r.adminPassword, password) {
		return &models.Principal{Role: models.RoleAdmin, Name: "admin"}
	}
	if ds == nil {
		return nil
	}

	for i := range ds.Hospitals {
		h := &ds.Hospitals[i]
		if h.SupervisorNationalID == nationalID && PasswordMatches(h.SupervisorPassword, password) {
			return &models.Principal{Role: models.RoleSupervisor, Name: h.SupervisorName, HospitalID: h.ID}
		}
	}

	for i := range ds.Hospitals {
		h := &ds.Hospitals[i]
		for j := range h.Departments {
			d := &h.Departments[j]
			if d.ManagerNationalID == nationalID && PasswordMatches(d.ManagerPassword, password) {
				return &models.Principal{
					Role:         models.RoleManager,
					Name:         d.ManagerName,
					HospitalID:   h.ID,
					DepartmentID: d.ID,
				}
			}
		}
	}

	for i := range ds.Hospitals {
		h := &ds.Hospitals[i]
		for j := range h.Departments {
			d := &h.Departments[j]
			for k := range d.Staff {
				s := &d.Staff[k]
				if s.NationalID == nationalID && PasswordMatches(s.Password, password) {
					return &models.Principal{
						Role:         models.RoleStaff,
						Name:         s.Name,
						HospitalID:   h.ID,
						DepartmentID: d.ID,
						StaffID:      s.ID,
					}
				}
			}
		}
	}

	for i := range ds.Hospitals {
		h := &ds.Hospitals[i]
		for j := range h.Departments {
			d := &h.Departments[j]
			for k := range d.Patients {
				p := &d.Patients[k]
				if p.NationalID == nationalID && PasswordMatches(p.Password, password) {
					return &models.Principal{
						Role:         models.RolePatient,
						Name:         p.Name,
						HospitalID:   h.ID,
						DepartmentID: d.ID,
						PatientID:    p.ID,
					}
				}
			}
		}
	}
	return nil
}
