package assistance

import (
	"testing"
	"time"

	"barangayops/internal/identity"
	"barangayops/internal/lifecycle"
)

var now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func staffReq(target lifecycle.Status, fields map[string]string) lifecycle.Request {
	return lifecycle.Request{
		Target: target,
		Actor:  identity.Actor{ID: "u-staff", Role: identity.RoleStaff},
		Fields: fields,
		Now:    now,
	}
}

func TestApprovalRequiresAmount(t *testing.T) {
	_, err := Lifecycle.Apply(StatusPending, staffReq(StatusApproved, nil))
	if lifecycle.KindOf(err) != lifecycle.KindMissingRequiredField {
		t.Fatalf("expected MissingRequiredField, got %v", err)
	}
}

func TestApprovalRejectsNegativeAmount(t *testing.T) {
	_, err := Lifecycle.Apply(StatusPending, staffReq(StatusApproved, map[string]string{"approvedAmount": "-50"}))
	if lifecycle.KindOf(err) != lifecycle.KindMissingRequiredField {
		t.Fatalf("expected amount validation error, got %v", err)
	}
}

func TestApprovalRejectsNonNumericAmount(t *testing.T) {
	_, err := Lifecycle.Apply(StatusPending, staffReq(StatusApproved, map[string]string{"approvedAmount": "five hundred"}))
	if lifecycle.KindOf(err) != lifecycle.KindMissingRequiredField {
		t.Fatalf("expected amount parse error, got %v", err)
	}
}

func TestApprovalNotifiesResident(t *testing.T) {
	out, err := Lifecycle.Apply(StatusPending, staffReq(StatusApproved, map[string]string{"approvedAmount": "1500.00"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != StatusApproved {
		t.Fatalf("expected Approved, got %s", out.Status)
	}
	if out.Fields["approvedAmount"] != "1500.00" {
		t.Fatalf("expected amount merged, got %v", out.Fields)
	}
	if len(out.Notify) != 1 || out.Notify[0] != identity.RoleResident {
		t.Fatalf("expected resident notify, got %v", out.Notify)
	}
}

func TestResidentMayNotApprove(t *testing.T) {
	req := lifecycle.Request{
		Target:    StatusApproved,
		Actor:     identity.Actor{ID: "u-1", Role: identity.RoleResident, SubjectID: "res-9"},
		SubjectID: "res-9",
		Fields:    map[string]string{"approvedAmount": "100"},
		Now:       now,
	}
	_, err := Lifecycle.Apply(StatusPending, req)
	if lifecycle.KindOf(err) != lifecycle.KindForbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestReleaseOnlyFromApproved(t *testing.T) {
	_, err := Lifecycle.Apply(StatusPending, staffReq(StatusReleased, nil))
	if lifecycle.KindOf(err) != lifecycle.KindIllegalTransition {
		t.Fatalf("expected IllegalTransition, got %v", err)
	}

	out, err := Lifecycle.Apply(StatusApproved, staffReq(StatusReleased, map[string]string{"remarks": "released at barangay hall"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Entry.Text != "released at barangay hall" {
		t.Fatalf("expected remarks carried into audit text, got %+v", out.Entry)
	}
}

func TestRejectedAndReleasedAreTerminal(t *testing.T) {
	for _, terminal := range []lifecycle.Status{StatusRejected, StatusReleased} {
		if !Lifecycle.Terminal(terminal) {
			t.Fatalf("%s should be terminal", terminal)
		}
	}
}

func TestParsePriority(t *testing.T) {
	if _, err := ParsePriority("Casual"); err == nil {
		t.Fatalf("expected error for unknown priority")
	}
	p, err := ParsePriority("Emergency")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != PriorityEmergency {
		t.Fatalf("expected Emergency, got %s", p)
	}
}
