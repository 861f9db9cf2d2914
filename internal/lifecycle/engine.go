package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"barangayops/internal/audit"
	"barangayops/internal/identity"
)

// Request carries one transition intent into Apply.
type Request struct {
	Target Status
	Actor  identity.Actor

	// SubjectID is the subject the entity belongs to (resident or driver),
	// used to pin self-scoped actors to their own records.
	SubjectID string

	Fields map[string]string
	Now    time.Time
}

// Outcome is the pure description of a legal transition: the caller applies
// it transactionally against the store and the notification dispatcher.
// Apply itself performs no I/O.
type Outcome struct {
	Status Status

	// Fields holds only the payload keys this edge allows, merged for
	// persistence into the entity's type-specific fields.
	Fields map[string]string

	Entry  audit.Entry
	Notify []identity.Role
}

// Apply decides whether the transition from cur is legal for the actor and
// payload, returning the mutation to perform or a typed error.
func (g *Graph) Apply(cur Status, req Request) (*Outcome, error) {
	targets, ok := g.Edges[cur]
	if !ok || len(targets) == 0 {
		return nil, Errorf(KindIllegalTransition, "%s is already %s; no further status change is possible", g.Entity, cur)
	}
	edge, ok := targets[req.Target]
	if !ok {
		return nil, Errorf(KindIllegalTransition, "%s cannot move from %s to %s", g.Entity, cur, req.Target)
	}

	if !roleAllowed(edge.Roles, req.Actor.Role) {
		return nil, Errorf(KindForbidden, "role %s may not set %s to %s", req.Actor.Role, g.Entity, req.Target)
	}
	if selfScoped(req.Actor.Role) && req.Actor.SubjectID != req.SubjectID {
		return nil, Errorf(KindForbidden, "you may only update your own records")
	}

	merged := make(map[string]string, len(edge.Required)+len(edge.Optional))
	for _, f := range edge.Required {
		v := strings.TrimSpace(req.Fields[f])
		if v == "" {
			return nil, Errorf(KindMissingRequiredField, "please fill in %s", f)
		}
		merged[f] = v
	}
	for _, f := range edge.Optional {
		if v := strings.TrimSpace(req.Fields[f]); v != "" {
			merged[f] = v
		}
	}
	if edge.Validate != nil {
		if err := edge.Validate(merged); err != nil {
			return nil, err
		}
	}

	action := edge.Action
	if action == "" {
		action = string(req.Target)
	}
	reasonField := edge.ReasonField
	if reasonField == "" {
		reasonField = "reason"
	}

	return &Outcome{
		Status: req.Target,
		Fields: merged,
		Entry: audit.Entry{
			At:    req.Now,
			Label: fmt.Sprintf("%s by %s", action, req.Actor.Label()),
			Text:  strings.TrimSpace(req.Fields[reasonField]),
		},
		Notify: g.notifySet(edge, req.Actor.Role),
	}, nil
}

func roleAllowed(roles []identity.Role, r identity.Role) bool {
	for _, allowed := range roles {
		if allowed == r {
			return true
		}
	}
	return false
}

// selfScoped roles act only on records they are the subject of.
func selfScoped(r identity.Role) bool {
	return r == identity.RoleResident || r == identity.RoleDriver
}

// notifySet is deterministic per edge and actor role: self-scoped actors
// always alert the office; staff-initiated decisions alert the subject's
// role when the edge opts in.
func (g *Graph) notifySet(edge Edge, actor identity.Role) []identity.Role {
	if selfScoped(actor) {
		return append([]identity.Role(nil), identity.StaffRoles...)
	}
	if edge.NotifySubject && g.SubjectRole != "" {
		return []identity.Role{g.SubjectRole}
	}
	return nil
}
