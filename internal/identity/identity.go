package identity

import "fmt"

// Role is the authenticated party's role as issued into the session token.
type Role string

const (
	RoleResident   Role = "Resident"
	RoleStaff      Role = "Staff"
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "Super Admin"
	RoleDriver     Role = "Driver"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleResident, RoleStaff, RoleAdmin, RoleSuperAdmin, RoleDriver:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %s", s)
	}
}

// StaffRoles is the set notified on resident-initiated changes and allowed
// to act on any record.
var StaffRoles = []Role{RoleAdmin, RoleStaff, RoleSuperAdmin}

// IsStaff reports whether the role has barangay-wide visibility.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin || r == RoleSuperAdmin
}

// Actor is the authenticated party issuing a request. SubjectID is the
// resident (or driver) identifier the actor's own records are keyed by;
// empty for staff roles.
type Actor struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	SubjectID string `json:"subjectId,omitempty"`
}

// Label renders the actor for audit entries, e.g. "resident" or "staff".
func (a Actor) Label() string {
	switch a.Role {
	case RoleResident:
		return "resident"
	case RoleDriver:
		return "driver"
	case RoleSuperAdmin:
		return "super admin"
	default:
		return "staff"
	}
}
