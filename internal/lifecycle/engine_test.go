package lifecycle

import (
	"strings"
	"testing"
	"time"

	"barangayops/internal/identity"
)

const (
	stScheduled Status = "Scheduled"
	stConfirmed Status = "Confirmed"
	stCompleted Status = "Completed"
	stCancelled Status = "Cancelled"
)

func testGraph() *Graph {
	staff := identity.StaffRoles
	return &Graph{
		Entity:      EntityAppointment,
		Initial:     stScheduled,
		SubjectRole: identity.RoleResident,
		Edges: map[Status]map[Status]Edge{
			stScheduled: {
				stConfirmed: {Roles: staff, NotifySubject: true},
				stCompleted: {Roles: staff, Required: []string{"diagnosis"}, Optional: []string{"prescription"}, NotifySubject: true},
				stCancelled: {Roles: append([]identity.Role{identity.RoleResident}, staff...), Optional: []string{"reason"}},
			},
			stConfirmed: {
				stCompleted: {Roles: staff, Required: []string{"diagnosis"}, NotifySubject: true},
				stCancelled: {Roles: append([]identity.Role{identity.RoleResident}, staff...), Optional: []string{"reason"}},
			},
			stCompleted: {},
			stCancelled: {},
		},
	}
}

var now = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

func staffReq(target Status, fields map[string]string) Request {
	return Request{
		Target: target,
		Actor:  identity.Actor{ID: "u-staff", Role: identity.RoleStaff},
		Fields: fields,
		Now:    now,
	}
}

func TestApply_NonEdgesAlwaysIllegal(t *testing.T) {
	g := testGraph()
	statuses := g.Statuses()

	for _, from := range statuses {
		for _, to := range statuses {
			if _, isEdge := g.Edges[from][to]; isEdge {
				continue
			}
			_, err := g.Apply(from, staffReq(to, map[string]string{"diagnosis": "flu"}))
			if KindOf(err) != KindIllegalTransition {
				t.Fatalf("%s -> %s: expected IllegalTransition, got %v", from, to, err)
			}
		}
	}
}

func TestApply_TerminalStatesAreFinal(t *testing.T) {
	g := testGraph()
	for _, terminal := range []Status{stCompleted, stCancelled} {
		if !g.Terminal(terminal) {
			t.Fatalf("%s should be terminal", terminal)
		}
		for _, to := range g.Statuses() {
			_, err := g.Apply(terminal, staffReq(to, map[string]string{"diagnosis": "flu"}))
			if KindOf(err) != KindIllegalTransition {
				t.Fatalf("out of %s: expected IllegalTransition, got %v", terminal, err)
			}
		}
	}
}

func TestApply_ForbiddenRole(t *testing.T) {
	g := testGraph()
	req := Request{
		Target: stConfirmed,
		Actor:  identity.Actor{ID: "u-1", Role: identity.RoleResident, SubjectID: "res-7"},
		Fields: nil,
		Now:    now,
	}
	_, err := g.Apply(stScheduled, req)
	if KindOf(err) != KindForbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestApply_ResidentPinnedToOwnRecord(t *testing.T) {
	g := testGraph()
	req := Request{
		Target:    stCancelled,
		Actor:     identity.Actor{ID: "u-1", Role: identity.RoleResident, SubjectID: "res-7"},
		SubjectID: "res-9", // somebody else's appointment
		Now:       now,
	}
	_, err := g.Apply(stScheduled, req)
	if KindOf(err) != KindForbidden {
		t.Fatalf("expected Forbidden on foreign record, got %v", err)
	}
}

func TestApply_MissingRequiredField(t *testing.T) {
	g := testGraph()
	_, err := g.Apply(stScheduled, staffReq(stCompleted, map[string]string{"diagnosis": "   "}))
	if KindOf(err) != KindMissingRequiredField {
		t.Fatalf("expected MissingRequiredField, got %v", err)
	}
	if !strings.Contains(err.Error(), "diagnosis") {
		t.Fatalf("message should name the field: %v", err)
	}
}

func TestApply_ResidentCancelWithReason(t *testing.T) {
	g := testGraph()
	req := Request{
		Target:    stCancelled,
		Actor:     identity.Actor{ID: "u-1", Role: identity.RoleResident, SubjectID: "res-7"},
		SubjectID: "res-7",
		Fields:    map[string]string{"reason": "schedule conflict"},
		Now:       now,
	}
	out, err := g.Apply(stScheduled, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != stCancelled {
		t.Fatalf("expected Cancelled, got %s", out.Status)
	}
	if out.Entry.Label != "Cancelled by resident" || out.Entry.Text != "schedule conflict" {
		t.Fatalf("unexpected audit entry: %+v", out.Entry)
	}
	want := []identity.Role{identity.RoleAdmin, identity.RoleStaff, identity.RoleSuperAdmin}
	if len(out.Notify) != len(want) {
		t.Fatalf("expected staff notify set, got %v", out.Notify)
	}
	for i, r := range want {
		if out.Notify[i] != r {
			t.Fatalf("expected notify %v, got %v", want, out.Notify)
		}
	}
}

func TestApply_StaffDecisionNotifiesSubject(t *testing.T) {
	g := testGraph()
	out, err := g.Apply(stScheduled, staffReq(stConfirmed, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Notify) != 1 || out.Notify[0] != identity.RoleResident {
		t.Fatalf("expected resident notify, got %v", out.Notify)
	}
	if out.Entry.Label != "Confirmed by staff" {
		t.Fatalf("unexpected label: %q", out.Entry.Label)
	}
}

func TestApply_StaffCancelNotifiesNobody(t *testing.T) {
	g := testGraph()
	out, err := g.Apply(stScheduled, staffReq(stCancelled, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Notify) != 0 {
		t.Fatalf("edge without NotifySubject must stay quiet, got %v", out.Notify)
	}
}

func TestApply_MergesOnlyAllowedFields(t *testing.T) {
	g := testGraph()
	fields := map[string]string{
		"diagnosis":    "hypertension",
		"prescription": "losartan 50mg",
		"status":       "hax", // not an allowed field
	}
	out, err := g.Apply(stScheduled, staffReq(stCompleted, fields))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Fields["diagnosis"] != "hypertension" || out.Fields["prescription"] != "losartan 50mg" {
		t.Fatalf("expected allowed fields merged, got %v", out.Fields)
	}
	if _, ok := out.Fields["status"]; ok {
		t.Fatalf("disallowed field leaked through: %v", out.Fields)
	}
}

func TestApply_ValidateHook(t *testing.T) {
	g := testGraph()
	edge := g.Edges[stScheduled][stCompleted]
	edge.Validate = func(fields map[string]string) error {
		return Errorf(KindMissingRequiredField, "please fill in diagnosis properly")
	}
	g.Edges[stScheduled][stCompleted] = edge

	_, err := g.Apply(stScheduled, staffReq(stCompleted, map[string]string{"diagnosis": "x"}))
	if KindOf(err) != KindMissingRequiredField {
		t.Fatalf("expected validator error, got %v", err)
	}
}

func TestParse(t *testing.T) {
	g := testGraph()
	if _, err := g.Parse("Teleported"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
	s, err := g.Parse("Confirmed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != stConfirmed {
		t.Fatalf("expected Confirmed, got %s", s)
	}
}
