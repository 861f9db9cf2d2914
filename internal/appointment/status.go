package appointment

import (
	"time"

	"barangayops/internal/identity"
	"barangayops/internal/lifecycle"
)

const (
	StatusScheduled lifecycle.Status = "Scheduled"
	StatusConfirmed lifecycle.Status = "Confirmed"
	StatusCompleted lifecycle.Status = "Completed"
	StatusCancelled lifecycle.Status = "Cancelled"
	StatusNoShow    lifecycle.Status = "No-Show"
)

// Lifecycle is the appointment transition table. Completion records the
// consultation outcome; cancellation may come from the resident themselves.
var Lifecycle = &lifecycle.Graph{
	Entity:      lifecycle.EntityAppointment,
	Initial:     StatusScheduled,
	SubjectRole: identity.RoleResident,
	Edges: map[lifecycle.Status]map[lifecycle.Status]lifecycle.Edge{
		StatusScheduled: {
			StatusConfirmed: {Roles: identity.StaffRoles, NotifySubject: true},
			StatusCompleted: completionEdge(),
			StatusCancelled: cancellationEdge(),
			StatusNoShow:    {Action: "Marked no-show", Roles: identity.StaffRoles},
		},
		StatusConfirmed: {
			StatusCompleted: completionEdge(),
			StatusCancelled: cancellationEdge(),
			StatusNoShow:    {Action: "Marked no-show", Roles: identity.StaffRoles},
		},
		StatusCompleted: {},
		StatusCancelled: {},
		StatusNoShow:    {},
	},
}

func completionEdge() lifecycle.Edge {
	return lifecycle.Edge{
		Roles:         identity.StaffRoles,
		Required:      []string{"diagnosis"},
		Optional:      []string{"prescription", "followUpDate"},
		NotifySubject: true,
		Validate:      validateCompletion,
	}
}

func cancellationEdge() lifecycle.Edge {
	return lifecycle.Edge{
		Roles:         append([]identity.Role{identity.RoleResident}, identity.StaffRoles...),
		Optional:      []string{"reason"},
		NotifySubject: true,
	}
}

func validateCompletion(fields map[string]string) error {
	if v, ok := fields["followUpDate"]; ok {
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return lifecycle.Errorf(lifecycle.KindMissingRequiredField, "please fill in followUpDate as YYYY-MM-DD")
		}
	}
	return nil
}
