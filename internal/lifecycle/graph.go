package lifecycle

import (
	"barangayops/internal/identity"
)

// EntityType names a lifecycle-managed record family.
type EntityType string

const (
	EntityAppointment  EntityType = "appointment"
	EntityAssistance   EntityType = "assistance_request"
	EntitySurveillance EntityType = "surveillance_report"
	EntityTrip         EntityType = "trip"
	EntityMaintenance  EntityType = "maintenance_ticket"
)

// Status is one value of an entity's closed status enumeration.
type Status string

// Edge describes one permitted transition into a target status.
type Edge struct {
	// Action is the past-tense verb used in audit entries ("Cancelled",
	// "Approved"). Defaults to the target status name.
	Action string

	// Roles allowed to request this edge. Resident and Driver actors are
	// additionally restricted to records whose subject is their own.
	Roles []identity.Role

	// Required payload fields; missing or blank values fail the transition.
	Required []string

	// Optional payload fields merged into the entity when present.
	Optional []string

	// ReasonField names the payload field carried into the audit note as
	// free text. Defaults to "reason".
	ReasonField string

	// NotifySubject marks staff-initiated edges whose outcome the record's
	// subject should hear about. Resident- and driver-initiated edges always
	// notify the staff roles instead.
	NotifySubject bool

	// Validate runs entity-specific value checks over the allowed payload
	// fields after presence checks pass. May be nil.
	Validate func(fields map[string]string) error
}

// Graph is the closed transition table for one entity type. A status with
// no outgoing edges is terminal.
type Graph struct {
	Entity  EntityType
	Initial Status

	// SubjectRole is the self-scoped role the entity's subject holds:
	// Resident for health records, Driver for fleet records.
	SubjectRole identity.Role

	Edges map[Status]map[Status]Edge
}

// Terminal reports whether no transition leaves s.
func (g *Graph) Terminal(s Status) bool {
	return len(g.Edges[s]) == 0
}

// Statuses returns every status the graph mentions, for parse helpers.
func (g *Graph) Statuses() []Status {
	seen := map[Status]bool{g.Initial: true}
	out := []Status{g.Initial}
	for from, targets := range g.Edges {
		if !seen[from] {
			seen[from] = true
			out = append(out, from)
		}
		for to := range targets {
			if !seen[to] {
				seen[to] = true
				out = append(out, to)
			}
		}
	}
	return out
}

// Parse validates a client-supplied status string against the graph.
func (g *Graph) Parse(s string) (Status, error) {
	for _, known := range g.Statuses() {
		if Status(s) == known {
			return known, nil
		}
	}
	return "", Errorf(KindIllegalTransition, "unknown %s status: %s", g.Entity, s)
}
