package assistance

import (
	"github.com/shopspring/decimal"

	"barangayops/internal/identity"
	"barangayops/internal/lifecycle"
)

const (
	StatusPending  lifecycle.Status = "Pending"
	StatusApproved lifecycle.Status = "Approved"
	StatusRejected lifecycle.Status = "Rejected"
	StatusReleased lifecycle.Status = "Released"
)

type Priority string

const (
	PriorityEmergency Priority = "Emergency"
	PriorityUrgent    Priority = "Urgent"
	PriorityNormal    Priority = "Normal"
)

func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityEmergency, PriorityUrgent, PriorityNormal:
		return Priority(s), nil
	default:
		return "", lifecycle.Errorf(lifecycle.KindMissingRequiredField, "please fill in priority as Emergency, Urgent or Normal")
	}
}

// Lifecycle for medical assistance requests. Approval fixes the amount;
// release is the cash/goods handover and closes the request.
var Lifecycle = &lifecycle.Graph{
	Entity:      lifecycle.EntityAssistance,
	Initial:     StatusPending,
	SubjectRole: identity.RoleResident,
	Edges: map[lifecycle.Status]map[lifecycle.Status]lifecycle.Edge{
		StatusPending: {
			StatusApproved: {
				Roles:         identity.StaffRoles,
				Required:      []string{"approvedAmount"},
				Optional:      []string{"remarks"},
				ReasonField:   "remarks",
				NotifySubject: true,
				Validate:      validateApprovedAmount,
			},
			StatusRejected: {
				Roles:         identity.StaffRoles,
				Optional:      []string{"reason"},
				NotifySubject: true,
			},
		},
		StatusApproved: {
			StatusReleased: {
				Roles:         identity.StaffRoles,
				Optional:      []string{"remarks"},
				ReasonField:   "remarks",
				NotifySubject: true,
			},
		},
		StatusRejected: {},
		StatusReleased: {},
	},
}

func validateApprovedAmount(fields map[string]string) error {
	amt, err := decimal.NewFromString(fields["approvedAmount"])
	if err != nil {
		return lifecycle.Errorf(lifecycle.KindMissingRequiredField, "please fill in approvedAmount as a number")
	}
	if amt.IsNegative() {
		return lifecycle.Errorf(lifecycle.KindMissingRequiredField, "approvedAmount must not be negative")
	}
	return nil
}
