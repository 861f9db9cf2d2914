package surveillance

import (
	"testing"
	"time"

	"barangayops/internal/identity"
	"barangayops/internal/lifecycle"
)

func staffReq(target lifecycle.Status, fields map[string]string) lifecycle.Request {
	return lifecycle.Request{
		Target:    target,
		Actor:     identity.Actor{ID: "u-1", Role: identity.RoleStaff},
		SubjectID: "res-1",
		Fields:    fields,
		Now:       time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestResidentMayNotActOnReports(t *testing.T) {
	req := staffReq(StatusMonitoring, nil)
	req.Actor = identity.Actor{ID: "res-1", Role: identity.RoleResident, SubjectID: "res-1"}

	_, err := Lifecycle.Apply(StatusActive, req)
	if lifecycle.KindOf(err) != lifecycle.KindForbidden {
		t.Fatalf("want Forbidden, got %v", err)
	}
}

func TestActiveResolvesDirectly(t *testing.T) {
	out, err := Lifecycle.Apply(StatusActive, staffReq(StatusResolved, map[string]string{"notes": "no new cases in 14 days"}))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.Status != StatusResolved {
		t.Fatalf("status = %s", out.Status)
	}
	if out.Entry.Label != "Resolved by staff" {
		t.Fatalf("label = %q", out.Entry.Label)
	}
	if out.Entry.Text != "no new cases in 14 days" {
		t.Fatalf("text = %q", out.Entry.Text)
	}
}

func TestMonitoringLabel(t *testing.T) {
	out, err := Lifecycle.Apply(StatusActive, staffReq(StatusMonitoring, nil))
	if err != nil {
		t.Fatalf("monitor: %v", err)
	}
	if out.Entry.Label != "Moved to monitoring by staff" {
		t.Fatalf("label = %q", out.Entry.Label)
	}
	if out.Notify != nil {
		t.Fatalf("staff action should not notify anyone, got %v", out.Notify)
	}
}

func TestResolvedIsFinal(t *testing.T) {
	_, err := Lifecycle.Apply(StatusResolved, staffReq(StatusActive, nil))
	if lifecycle.KindOf(err) != lifecycle.KindIllegalTransition {
		t.Fatalf("want IllegalTransition, got %v", err)
	}
	_, err = Lifecycle.Apply(StatusResolved, staffReq(StatusMonitoring, nil))
	if lifecycle.KindOf(err) != lifecycle.KindIllegalTransition {
		t.Fatalf("want IllegalTransition, got %v", err)
	}
}

func TestResolvedCannotReturnToMonitoringPath(t *testing.T) {
	_, err := Lifecycle.Apply(StatusMonitoring, staffReq(StatusActive, nil))
	if lifecycle.KindOf(err) != lifecycle.KindIllegalTransition {
		t.Fatalf("want IllegalTransition, got %v", err)
	}
}
