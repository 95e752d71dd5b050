package auth

import (
	"errors"
	"fmt"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

var ErrForbidden = errors.New("forbidden")

type Resource string

const (
	ResourceDataset    Resource = "dataset"
	ResourceHospital   Resource = "hospital"
	ResourceDepartment Resource = "department"
	ResourceStaff      Resource = "staff"
	ResourceAssessment Resource = "assessment"
	ResourceExam       Resource = "exam"
	ResourceWorkLog    Resource = "worklog"
	ResourcePatient    Resource = "patient"
	ResourceChat       Resource = "chat"
	ResourceNeeds      Resource = "needs"
	ResourceContent    Resource = "content" // banners, materials, templates, admin messages
	ResourceUpload     Resource = "upload"
	ResourceBackup     Resource = "backup"
	ResourceReport     Resource = "report"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
	ActionSubmit Action = "submit"
)

const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// Role grants. Supervisors inherit manager rights inside their hospital;
// scope narrowing is done by CanAccess, not here.
var defaultPolicies = [][]string{
	{string(models.RoleAdmin), "*", "*"},

	{string(models.RoleSupervisor), string(ResourceHospital), string(ActionWrite)},
	{string(models.RoleSupervisor), string(ResourceDepartment), string(ActionDelete)},
	{string(models.RoleSupervisor), string(ResourceContent), "*"},
	{string(models.RoleSupervisor), string(ResourceNeeds), string(ActionWrite)},
	{string(models.RoleSupervisor), string(ResourceNeeds), string(ActionDelete)},
	{string(models.RoleSupervisor), string(ResourceBackup), "*"},

	{string(models.RoleManager), string(ResourceDataset), string(ActionRead)},
	{string(models.RoleManager), string(ResourceDepartment), string(ActionWrite)},
	{string(models.RoleManager), string(ResourceStaff), "*"},
	{string(models.RoleManager), string(ResourceAssessment), "*"},
	{string(models.RoleManager), string(ResourceWorkLog), "*"},
	{string(models.RoleManager), string(ResourcePatient), "*"},
	{string(models.RoleManager), string(ResourceChat), "*"},
	{string(models.RoleManager), string(ResourceUpload), string(ActionWrite)},
	{string(models.RoleManager), string(ResourceReport), string(ActionRead)},
	{string(models.RoleManager), string(ResourceBackup), "*"},
	{string(models.RoleManager), string(ResourceContent), string(ActionWrite)},
	{string(models.RoleManager), string(ResourceContent), string(ActionDelete)},

	{string(models.RoleStaff), string(ResourceDataset), string(ActionRead)},
	{string(models.RoleStaff), string(ResourceExam), string(ActionSubmit)},
	{string(models.RoleStaff), string(ResourceNeeds), string(ActionSubmit)},

	{string(models.RolePatient), string(ResourceDataset), string(ActionRead)},
	{string(models.RolePatient), string(ResourceChat), string(ActionWrite)},
	{string(models.RolePatient), string(ResourceUpload), string(ActionWrite)},
}

var defaultGroupings = [][]string{
	{string(models.RoleSupervisor), string(models.RoleManager)},
}

// Policy answers role-level permission questions with an in-memory casbin
// enforcer.
type Policy struct {
	enforcer *casbin.Enforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse policy model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	if _, err := e.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}
	if _, err := e.AddGroupingPolicies(defaultGroupings); err != nil {
		return nil, fmt.Errorf("failed to load role groupings: %w", err)
	}
	return &Policy{enforcer: e}, nil
}

func (p *Policy) Allowed(role models.UserRole, obj Resource, act Action) (bool, error) {
	if role == "" {
		return false, nil
	}
	return p.enforcer.Enforce(string(role), string(obj), string(act))
}

// Authorize requires both the role grant and that target lies inside the
// principal's scope.
func (p *Policy) Authorize(principal *models.Principal, obj Resource, act Action, target models.Scope) error {
	if principal == nil {
		return ErrForbidden
	}
	ok, err := p.Allowed(principal.Role, obj, act)
	if err != nil {
		return err
	}
	if !ok || !CanAccess(principal, target) {
		return ErrForbidden
	}
	return nil
}

// CanAccess reports whether target lies inside the part of the hierarchy the
// principal owns. Empty target fields are not checked, except that a
// principal confined to a level may not address a target that leaves that
// level unspecified.
func CanAccess(principal *models.Principal, target models.Scope) bool {
	if principal == nil {
		return false
	}
	switch principal.Role {
	case models.RoleAdmin:
		return true
	case models.RoleSupervisor:
		return target.HospitalID == principal.HospitalID
	case models.RoleManager:
		return target.HospitalID == principal.HospitalID &&
			target.DepartmentID == principal.DepartmentID
	case models.RoleStaff:
		return target.HospitalID == principal.HospitalID &&
			(target.DepartmentID == "" || target.DepartmentID == principal.DepartmentID) &&
			(target.StaffID == "" || target.StaffID == principal.StaffID) &&
			target.PatientID == ""
	case models.RolePatient:
		return target.HospitalID == principal.HospitalID &&
			target.DepartmentID == principal.DepartmentID &&
			target.PatientID == principal.PatientID &&
			target.StaffID == ""
	}
	return false
}
