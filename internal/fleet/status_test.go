package fleet

import (
	"testing"
	"time"

	"barangayops/internal/identity"
	"barangayops/internal/lifecycle"
)

func driverReq(target lifecycle.Status, fields map[string]string) lifecycle.Request {
	return lifecycle.Request{
		Target:    target,
		Actor:     identity.Actor{ID: "drv-1", Role: identity.RoleDriver, SubjectID: "drv-1"},
		SubjectID: "drv-1",
		Fields:    fields,
		Now:       time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC),
	}
}

func TestDriverCompletesOwnTrip(t *testing.T) {
	out, err := TripLifecycle.Apply(StatusInProgress, driverReq(StatusCompleted, map[string]string{
		"arrivalTime": "2026-05-01T15:00",
		"odometerEnd": "120345",
	}))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out.Status != StatusCompleted {
		t.Fatalf("status = %s", out.Status)
	}
	if out.Fields["arrivalTime"] != "2026-05-01T15:00" || out.Fields["odometerEnd"] != "120345" {
		t.Fatalf("fields = %v", out.Fields)
	}
	// A driver closing their own trip alerts the office.
	if len(out.Notify) == 0 {
		t.Fatalf("expected staff notification, got none")
	}
}

func TestTripCompletionRequiresArrivalTime(t *testing.T) {
	_, err := TripLifecycle.Apply(StatusInProgress, driverReq(StatusCompleted, nil))
	if lifecycle.KindOf(err) != lifecycle.KindMissingRequiredField {
		t.Fatalf("want MissingRequiredField, got %v", err)
	}
}

func TestTripArrivalTimeFormats(t *testing.T) {
	for _, ts := range []string{"2026-05-01T15:00", "2026-05-01T15:00:00Z", "2026-05-01T15:00:00+08:00"} {
		if _, err := TripLifecycle.Apply(StatusInProgress, driverReq(StatusCompleted, map[string]string{"arrivalTime": ts})); err != nil {
			t.Fatalf("arrivalTime %q rejected: %v", ts, err)
		}
	}
	_, err := TripLifecycle.Apply(StatusInProgress, driverReq(StatusCompleted, map[string]string{"arrivalTime": "3pm"}))
	if lifecycle.KindOf(err) != lifecycle.KindMissingRequiredField {
		t.Fatalf("want MissingRequiredField for bad timestamp, got %v", err)
	}
}

func TestTripOdometerEndMustBeNumeric(t *testing.T) {
	_, err := TripLifecycle.Apply(StatusInProgress, driverReq(StatusCompleted, map[string]string{
		"arrivalTime": "2026-05-01T15:00",
		"odometerEnd": "a lot",
	}))
	if lifecycle.KindOf(err) != lifecycle.KindMissingRequiredField {
		t.Fatalf("want MissingRequiredField, got %v", err)
	}
}

func TestDriverMayNotCompleteAnotherDriversTrip(t *testing.T) {
	req := driverReq(StatusCompleted, map[string]string{"arrivalTime": "2026-05-01T15:00"})
	req.SubjectID = "drv-2"
	_, err := TripLifecycle.Apply(StatusInProgress, req)
	if lifecycle.KindOf(err) != lifecycle.KindForbidden {
		t.Fatalf("want Forbidden, got %v", err)
	}
}

func TestAdminCompletionNotifiesDriver(t *testing.T) {
	req := driverReq(StatusCompleted, map[string]string{"arrivalTime": "2026-05-01T15:00"})
	req.Actor = identity.Actor{ID: "adm-1", Role: identity.RoleAdmin}
	out, err := TripLifecycle.Apply(StatusInProgress, req)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(out.Notify) != 1 || out.Notify[0] != identity.RoleDriver {
		t.Fatalf("notify = %v", out.Notify)
	}
}

func TestCompletedTripIsFinal(t *testing.T) {
	_, err := TripLifecycle.Apply(StatusCompleted, driverReq(StatusInProgress, nil))
	if lifecycle.KindOf(err) != lifecycle.KindIllegalTransition {
		t.Fatalf("want IllegalTransition, got %v", err)
	}
}

func staffTicketReq(target lifecycle.Status, fields map[string]string) lifecycle.Request {
	return lifecycle.Request{
		Target:    target,
		Actor:     identity.Actor{ID: "stf-1", Role: identity.RoleStaff},
		SubjectID: "drv-1",
		Fields:    fields,
		Now:       time.Date(2026, 5, 2, 10, 30, 0, 0, time.UTC),
	}
}

func TestSchedulingRequiresDate(t *testing.T) {
	_, err := MaintenanceLifecycle.Apply(StatusReported, staffTicketReq(StatusScheduled, nil))
	if lifecycle.KindOf(err) != lifecycle.KindMissingRequiredField {
		t.Fatalf("want MissingRequiredField, got %v", err)
	}
	_, err = MaintenanceLifecycle.Apply(StatusReported, staffTicketReq(StatusScheduled, map[string]string{"scheduledDate": "next tuesday"}))
	if lifecycle.KindOf(err) != lifecycle.KindMissingRequiredField {
		t.Fatalf("want MissingRequiredField for bad date, got %v", err)
	}
}

func TestTicketMustBeScheduledBeforeCompletion(t *testing.T) {
	_, err := MaintenanceLifecycle.Apply(StatusReported, staffTicketReq(StatusCompleted, nil))
	if lifecycle.KindOf(err) != lifecycle.KindIllegalTransition {
		t.Fatalf("want IllegalTransition, got %v", err)
	}
}

func TestTicketCompletionCost(t *testing.T) {
	out, err := MaintenanceLifecycle.Apply(StatusScheduled, staffTicketReq(StatusCompleted, map[string]string{
		"cost":    "1500.00",
		"remarks": "replaced brake pads",
	}))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out.Fields["cost"] != "1500.00" {
		t.Fatalf("cost = %q", out.Fields["cost"])
	}
	if out.Entry.Text != "replaced brake pads" {
		t.Fatalf("entry text = %q", out.Entry.Text)
	}

	_, err = MaintenanceLifecycle.Apply(StatusScheduled, staffTicketReq(StatusCompleted, map[string]string{"cost": "-5"}))
	if lifecycle.KindOf(err) != lifecycle.KindMissingRequiredField {
		t.Fatalf("want MissingRequiredField for negative cost, got %v", err)
	}
}

func TestDriverMayNotScheduleTicket(t *testing.T) {
	req := staffTicketReq(StatusScheduled, map[string]string{"scheduledDate": "2026-05-10"})
	req.Actor = identity.Actor{ID: "drv-1", Role: identity.RoleDriver, SubjectID: "drv-1"}
	_, err := MaintenanceLifecycle.Apply(StatusReported, req)
	if lifecycle.KindOf(err) != lifecycle.KindForbidden {
		t.Fatalf("want Forbidden, got %v", err)
	}
}
