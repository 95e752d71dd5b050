package models

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleAdmin      UserRole = "admin"
	RoleSupervisor UserRole = "supervisor"
	RoleManager    UserRole = "manager"
	RoleStaff      UserRole = "staff"
	RolePatient    UserRole = "patient"
)

// Principal is an authenticated identity: a role plus the ids needed to reach
// the principal's own view.
type Principal struct {
	Role         UserRole `json:"role"`
	Name         string   `json:"name"`
	HospitalID   string   `json:"hospitalId,omitempty"`
	DepartmentID string   `json:"departmentId,omitempty"`
	StaffID      string   `json:"staffId,omitempty"`
	PatientID    string   `json:"patientId,omitempty"`
}

// Scope addresses an entity inside the dataset hierarchy. Empty fields mean
// "not narrowed at this level".
type Scope struct {
	HospitalID   string `json:"hospitalId,omitempty"`
	DepartmentID string `json:"departmentId,omitempty"`
	StaffID      string `json:"staffId,omitempty"`
	PatientID    string `json:"patientId,omitempty"`
}

// Scope returns the scope the principal is confined to.
func (p *Principal) Scope() Scope {
	return Scope{
		HospitalID:   p.HospitalID,
		DepartmentID: p.DepartmentID,
		StaffID:      p.StaffID,
		PatientID:    p.PatientID,
	}
}
