package appointment

import (
	"testing"
	"time"

	"barangayops/internal/identity"
	"barangayops/internal/lifecycle"
)

var now = time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)

func TestResidentCancelsOwnAppointment(t *testing.T) {
	req := lifecycle.Request{
		Target:    StatusCancelled,
		Actor:     identity.Actor{ID: "u-1", Role: identity.RoleResident, SubjectID: "res-7"},
		SubjectID: "res-7",
		Fields:    map[string]string{"reason": "schedule conflict"},
		Now:       now,
	}
	out, err := Lifecycle.Apply(StatusScheduled, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != StatusCancelled {
		t.Fatalf("expected Cancelled, got %s", out.Status)
	}
	if out.Entry.Label != "Cancelled by resident" || out.Entry.Text != "schedule conflict" {
		t.Fatalf("unexpected entry: %+v", out.Entry)
	}
	if len(out.Notify) != 3 {
		t.Fatalf("expected staff notify set, got %v", out.Notify)
	}
}

func TestCancelledAppointmentIsFinal(t *testing.T) {
	req := lifecycle.Request{
		Target: StatusConfirmed,
		Actor:  identity.Actor{ID: "u-2", Role: identity.RoleStaff},
		Now:    now,
	}
	_, err := Lifecycle.Apply(StatusCancelled, req)
	if lifecycle.KindOf(err) != lifecycle.KindIllegalTransition {
		t.Fatalf("expected IllegalTransition, got %v", err)
	}
}

func TestCompletionRequiresDiagnosis(t *testing.T) {
	req := lifecycle.Request{
		Target: StatusCompleted,
		Actor:  identity.Actor{ID: "u-2", Role: identity.RoleStaff},
		Now:    now,
	}
	_, err := Lifecycle.Apply(StatusConfirmed, req)
	if lifecycle.KindOf(err) != lifecycle.KindMissingRequiredField {
		t.Fatalf("expected MissingRequiredField, got %v", err)
	}
}

func TestCompletionValidatesFollowUpDate(t *testing.T) {
	req := lifecycle.Request{
		Target: StatusCompleted,
		Actor:  identity.Actor{ID: "u-2", Role: identity.RoleAdmin},
		Fields: map[string]string{"diagnosis": "flu", "followUpDate": "next tuesday"},
		Now:    now,
	}
	_, err := Lifecycle.Apply(StatusScheduled, req)
	if lifecycle.KindOf(err) != lifecycle.KindMissingRequiredField {
		t.Fatalf("expected date validation error, got %v", err)
	}

	req.Fields["followUpDate"] = "2024-05-15"
	out, err := Lifecycle.Apply(StatusScheduled, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Fields["followUpDate"] != "2024-05-15" {
		t.Fatalf("expected followUpDate merged, got %v", out.Fields)
	}
}

func TestResidentMayNotComplete(t *testing.T) {
	req := lifecycle.Request{
		Target:    StatusCompleted,
		Actor:     identity.Actor{ID: "u-1", Role: identity.RoleResident, SubjectID: "res-7"},
		SubjectID: "res-7",
		Fields:    map[string]string{"diagnosis": "self-diagnosed"},
		Now:       now,
	}
	_, err := Lifecycle.Apply(StatusScheduled, req)
	if lifecycle.KindOf(err) != lifecycle.KindForbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}
