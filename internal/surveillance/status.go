package surveillance

import (
	"barangayops/internal/identity"
	"barangayops/internal/lifecycle"
)

const (
	StatusActive     lifecycle.Status = "Active"
	StatusMonitoring lifecycle.Status = "Monitoring"
	StatusResolved   lifecycle.Status = "Resolved"
)

// Lifecycle for disease surveillance reports. Reports are opened and worked
// entirely by health staff; residents never act on them.
var Lifecycle = &lifecycle.Graph{
	Entity:      lifecycle.EntitySurveillance,
	Initial:     StatusActive,
	SubjectRole: identity.RoleResident,
	Edges: map[lifecycle.Status]map[lifecycle.Status]lifecycle.Edge{
		StatusActive: {
			StatusMonitoring: {Action: "Moved to monitoring", Roles: identity.StaffRoles, Optional: []string{"notes"}, ReasonField: "notes"},
			StatusResolved:   {Roles: identity.StaffRoles, Optional: []string{"notes"}, ReasonField: "notes"},
		},
		StatusMonitoring: {
			StatusResolved: {Roles: identity.StaffRoles, Optional: []string{"notes"}, ReasonField: "notes"},
		},
		StatusResolved: {},
	},
}
