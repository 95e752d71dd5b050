package auth

import "github.com/SAP-F-2025/skill-tracker/internal/models"

// View returns the part of ds the principal may read. Credentials of other
// principals are blanked. The result never shares memory with ds.
func View(ds *models.Dataset, principal *models.Principal) *models.Dataset {
	out := ds.Clone()
	if principal == nil {
		return models.NewDataset()
	}
	if principal.Role == models.RoleAdmin {
		return out
	}

	h := out.Hospital(principal.HospitalID)
	if h == nil {
		return models.NewDataset()
	}
	hospital := *h
	out.Hospitals = []models.Hospital{hospital}
	h = &out.Hospitals[0]

	if principal.Role == models.RoleSupervisor {
		return out
	}

	h.SupervisorPassword = ""
	dept := h.Department(principal.DepartmentID)
	if dept == nil {
		h.Departments = []models.Department{}
		return out
	}
	h.Departments = []models.Department{*dept}
	d := &h.Departments[0]

	switch principal.Role {
	case models.RoleManager:
		return out
	case models.RoleStaff:
		d.ManagerPassword = ""
		d.Patients = nil
		if s := d.StaffMember(principal.StaffID); s != nil {
			d.Staff = []models.StaffMember{*s}
		} else {
			d.Staff = []models.StaffMember{}
		}
		h.AdminMessages = nil
	case models.RolePatient:
		d.ManagerPassword = ""
		d.Staff = []models.StaffMember{}
		if p := d.Patient(principal.PatientID); p != nil {
			d.Patients = []models.Patient{*p}
		} else {
			d.Patients = nil
		}
		h.ChecklistTemplates = nil
		h.ExamTemplates = nil
		h.NeedsAssessments = nil
		h.AdminMessages = nil
	}
	return out
}
