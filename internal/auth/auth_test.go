package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/skill-tracker/internal/config"
	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

func sampleDataset() *models.Dataset {
	return &models.Dataset{Hospitals: []models.Hospital{
		{
			ID: "h1", Name: "Imam", SupervisorName: "Sara", SupervisorNationalID: "100", SupervisorPassword: "sup",
			Departments: []models.Department{
				{
					ID: "d1", Name: "ICU", ManagerName: "Reza", ManagerNationalID: "200", ManagerPassword: "shared",
					Staff: []models.StaffMember{
						{ID: "s1", Name: "Ali", NationalID: "300", Password: "staff"},
					},
					Patients: []models.Patient{
						{ID: "p1", Name: "Mina", NationalID: "400", Password: "pat"},
					},
				},
			},
		},
		{
			ID: "h2", Name: "Sina", SupervisorNationalID: "101", SupervisorPassword: "sup2",
			Departments: []models.Department{
				{
					ID: "d2", Name: "ER", ManagerNationalID: "201", ManagerPassword: "m2",
					Staff: []models.StaffMember{
						// same credential as the h1/d1 manager
						{ID: "s2", Name: "Dual", NationalID: "200", Password: "shared"},
					},
				},
			},
		},
	}}
}

func newResolver() *Resolver {
	return NewResolver(config.AuthConfig{AdminNationalID: "admin", AdminPassword: "admin"})
}

func TestResolver_FindUser(t *testing.T) {
	ds := sampleDataset()
	r := newResolver()

	tests := []struct {
		name        string
		id, pass    string
		wantRole    models.UserRole
		wantHosp    string
		wantDept    string
		wantStaff   string
		wantPatient string
	}{
		{name: "admin", id: "admin", pass: "admin", wantRole: models.RoleAdmin},
		{name: "supervisor", id: "100", pass: "sup", wantRole: models.RoleSupervisor, wantHosp: "h1"},
		{name: "manager", id: "201", pass: "m2", wantRole: models.RoleManager, wantHosp: "h2", wantDept: "d2"},
		{name: "staff", id: "300", pass: "staff", wantRole: models.RoleStaff, wantHosp: "h1", wantDept: "d1", wantStaff: "s1"},
		{name: "patient", id: "400", pass: "pat", wantRole: models.RolePatient, wantHosp: "h1", wantDept: "d1", wantPatient: "p1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := r.FindUser(ds, tt.id, tt.pass)
			require.NotNil(t, p)
			assert.Equal(t, tt.wantRole, p.Role)
			assert.Equal(t, tt.wantHosp, p.HospitalID)
			assert.Equal(t, tt.wantDept, p.DepartmentID)
			assert.Equal(t, tt.wantStaff, p.StaffID)
			assert.Equal(t, tt.wantPatient, p.PatientID)
		})
	}
}

func TestResolver_Failures(t *testing.T) {
	ds := sampleDataset()
	r := newResolver()

	assert.Nil(t, r.FindUser(ds, "100", "wrong"))
	assert.Nil(t, r.FindUser(ds, "999", "sup"))
	assert.Nil(t, r.FindUser(ds, "", ""))
	assert.Nil(t, r.FindUser(nil, "100", "sup"))
	assert.NotNil(t, r.FindUser(nil, "admin", "admin"))

	// a blank stored password never matches
	ds.Hospitals[0].SupervisorPassword = ""
	assert.Nil(t, r.FindUser(ds, "100", ""))
}

func TestResolver_ManagerBeatsStaff(t *testing.T) {
	ds := sampleDataset()
	r := newResolver()

	p := r.FindUser(ds, "200", "shared")
	require.NotNil(t, p)
	assert.Equal(t, models.RoleManager, p.Role)
	assert.Equal(t, "d1", p.DepartmentID)

	// reorder hospitals so the staff entry is scanned first in dataset order
	ds.Hospitals[0], ds.Hospitals[1] = ds.Hospitals[1], ds.Hospitals[0]
	p = r.FindUser(ds, "200", "shared")
	require.NotNil(t, p)
	assert.Equal(t, models.RoleManager, p.Role)
	assert.Equal(t, "h1", p.HospitalID)
}

func TestPasswordMatches(t *testing.T) {
	assert.True(t, PasswordMatches("secret", "secret"))
	assert.False(t, PasswordMatches("secret", "Secret"))
	assert.False(t, PasswordMatches("", ""))

	params := HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}
	hash, err := HashPassword("secret", params)
	require.NoError(t, err)
	assert.True(t, IsHashed(hash))
	assert.True(t, PasswordMatches(hash, "secret"))
	assert.False(t, PasswordMatches(hash, "other"))
	assert.False(t, PasswordMatches("$argon2id$broken", "secret"))
}

func TestPolicy_Authorize(t *testing.T) {
	policy, err := NewPolicy()
	require.NoError(t, err)

	admin := &models.Principal{Role: models.RoleAdmin}
	supervisor := &models.Principal{Role: models.RoleSupervisor, HospitalID: "h1"}
	manager := &models.Principal{Role: models.RoleManager, HospitalID: "h1", DepartmentID: "d1"}
	staff := &models.Principal{Role: models.RoleStaff, HospitalID: "h1", DepartmentID: "d1", StaffID: "s1"}
	patient := &models.Principal{Role: models.RolePatient, HospitalID: "h1", DepartmentID: "d1", PatientID: "p1"}

	d1 := models.Scope{HospitalID: "h1", DepartmentID: "d1"}
	d2 := models.Scope{HospitalID: "h1", DepartmentID: "d2"}

	tests := []struct {
		name      string
		principal *models.Principal
		obj       Resource
		act       Action
		target    models.Scope
		allowed   bool
	}{
		{"admin anything", admin, ResourceHospital, ActionDelete, models.Scope{HospitalID: "hx"}, true},
		{"supervisor own hospital", supervisor, ResourceHospital, ActionWrite, models.Scope{HospitalID: "h1"}, true},
		{"supervisor other hospital", supervisor, ResourceHospital, ActionWrite, models.Scope{HospitalID: "h2"}, false},
		{"supervisor cannot delete hospital", supervisor, ResourceHospital, ActionDelete, models.Scope{HospitalID: "h1"}, false},
		{"supervisor inherits manager staff rights", supervisor, ResourceStaff, ActionWrite, d2, true},
		{"manager own department", manager, ResourceStaff, ActionWrite, d1, true},
		{"manager other department", manager, ResourceStaff, ActionWrite, d2, false},
		{"manager cannot delete department", manager, ResourceDepartment, ActionDelete, d1, false},
		{"staff submits exam", staff, ResourceExam, ActionSubmit, models.Scope{HospitalID: "h1", DepartmentID: "d1", StaffID: "s1"}, true},
		{"staff submits for someone else", staff, ResourceExam, ActionSubmit, models.Scope{HospitalID: "h1", DepartmentID: "d1", StaffID: "s9"}, false},
		{"staff cannot write staff", staff, ResourceStaff, ActionWrite, d1, false},
		{"patient own chat", patient, ResourceChat, ActionWrite, models.Scope{HospitalID: "h1", DepartmentID: "d1", PatientID: "p1"}, true},
		{"patient other chat", patient, ResourceChat, ActionWrite, models.Scope{HospitalID: "h1", DepartmentID: "d1", PatientID: "p2"}, false},
		{"nil principal", nil, ResourceDataset, ActionRead, models.Scope{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Authorize(tt.principal, tt.obj, tt.act, tt.target)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestView(t *testing.T) {
	ds := sampleDataset()

	all := View(ds, &models.Principal{Role: models.RoleAdmin})
	assert.Len(t, all.Hospitals, 2)

	sup := View(ds, &models.Principal{Role: models.RoleSupervisor, HospitalID: "h2"})
	require.Len(t, sup.Hospitals, 1)
	assert.Equal(t, "h2", sup.Hospitals[0].ID)

	staff := View(ds, &models.Principal{Role: models.RoleStaff, HospitalID: "h1", DepartmentID: "d1", StaffID: "s1"})
	require.Len(t, staff.Hospitals, 1)
	h := staff.Hospitals[0]
	assert.Empty(t, h.SupervisorPassword)
	require.Len(t, h.Departments, 1)
	assert.Empty(t, h.Departments[0].ManagerPassword)
	assert.Empty(t, h.Departments[0].Patients)
	require.Len(t, h.Departments[0].Staff, 1)
	assert.Equal(t, "s1", h.Departments[0].Staff[0].ID)

	// the source is untouched
	assert.Equal(t, "sup", ds.Hospitals[0].SupervisorPassword)
	assert.Len(t, ds.Hospitals[0].Departments[0].Patients, 1)

	assert.True(t, View(ds, &models.Principal{Role: models.RoleManager, HospitalID: "missing"}).IsEmpty())
	assert.True(t, View(ds, nil).IsEmpty())
}
