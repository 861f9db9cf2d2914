package fleet

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"barangayops/internal/identity"
	"barangayops/internal/lifecycle"
)

const (
	StatusInProgress lifecycle.Status = "InProgress"
	StatusCompleted  lifecycle.Status = "Completed"

	StatusReported  lifecycle.Status = "Reported"
	StatusScheduled lifecycle.Status = "Scheduled"
)

// TripLifecycle: a trip is open from departure until someone records the
// arrival. The driver closes their own trip; the admin can close any.
var TripLifecycle = &lifecycle.Graph{
	Entity:      lifecycle.EntityTrip,
	Initial:     StatusInProgress,
	SubjectRole: identity.RoleDriver,
	Edges: map[lifecycle.Status]map[lifecycle.Status]lifecycle.Edge{
		StatusInProgress: {
			StatusCompleted: {
				Roles:         []identity.Role{identity.RoleDriver, identity.RoleAdmin},
				Required:      []string{"arrivalTime"},
				Optional:      []string{"odometerEnd"},
				NotifySubject: true,
				Validate:      validateTripCompletion,
			},
		},
		StatusCompleted: {},
	},
}

func validateTripCompletion(fields map[string]string) error {
	if _, err := parseArrival(fields["arrivalTime"]); err != nil {
		return lifecycle.Errorf(lifecycle.KindMissingRequiredField, "arrivalTime must be a valid timestamp, e.g. 2026-05-01T15:00")
	}
	if v, ok := fields["odometerEnd"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return lifecycle.Errorf(lifecycle.KindMissingRequiredField, "odometerEnd must be a non-negative whole number")
		}
	}
	return nil
}

// parseArrival accepts RFC 3339 and the minute-precision form the trip
// forms submit.
func parseArrival(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04", s)
}

// MaintenanceLifecycle: tickets are reported by drivers, then scheduled and
// closed by the office. The reporting driver is kept in the loop.
var MaintenanceLifecycle = &lifecycle.Graph{
	Entity:      lifecycle.EntityMaintenance,
	Initial:     StatusReported,
	SubjectRole: identity.RoleDriver,
	Edges: map[lifecycle.Status]map[lifecycle.Status]lifecycle.Edge{
		StatusReported: {
			StatusScheduled: {
				Roles:         identity.StaffRoles,
				Required:      []string{"scheduledDate"},
				Optional:      []string{"remarks"},
				ReasonField:   "remarks",
				NotifySubject: true,
				Validate:      validateScheduledDate,
			},
		},
		StatusScheduled: {
			StatusCompleted: {
				Roles:         identity.StaffRoles,
				Optional:      []string{"cost", "remarks"},
				ReasonField:   "remarks",
				NotifySubject: true,
				Validate:      validateMaintenanceCost,
			},
		},
		StatusCompleted: {},
	},
}

func validateScheduledDate(fields map[string]string) error {
	if _, err := time.Parse("2006-01-02", fields["scheduledDate"]); err != nil {
		return lifecycle.Errorf(lifecycle.KindMissingRequiredField, "scheduledDate must be YYYY-MM-DD")
	}
	return nil
}

func validateMaintenanceCost(fields map[string]string) error {
	v, ok := fields["cost"]
	if !ok {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return lifecycle.Errorf(lifecycle.KindMissingRequiredField, "cost must be a non-negative amount")
	}
	return nil
}
