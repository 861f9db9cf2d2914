package identity

import (
	"testing"
	"time"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actor := Actor{ID: "u-1", Role: RoleResident, SubjectID: "res-7"}

	tok, err := SignSessionToken(actor, "secret", time.Hour, now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, err := VerifySessionToken(tok, "secret", now.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.ID != "u-1" || got.Role != RoleResident || got.SubjectID != "res-7" {
		t.Fatalf("unexpected actor: %+v", got)
	}
}

func TestSessionToken_Expired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tok, err := SignSessionToken(Actor{ID: "u-1", Role: RoleStaff}, "secret", time.Minute, now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifySessionToken(tok, "secret", now.Add(2*time.Minute)); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestSessionToken_WrongSecret(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tok, err := SignSessionToken(Actor{ID: "u-1", Role: RoleAdmin}, "secret", time.Hour, now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifySessionToken(tok, "other", now); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestSessionToken_ResidentRequiresSubject(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tok, err := SignSessionToken(Actor{ID: "u-1", Role: RoleResident}, "secret", time.Hour, now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifySessionToken(tok, "secret", now); err == nil {
		t.Fatalf("expected missing subjectId error")
	}
}

func TestParseRole(t *testing.T) {
	if _, err := ParseRole("Janitor"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
	r, err := ParseRole("Super Admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsStaff() {
		t.Fatalf("expected super admin to be staff-scoped")
	}
	if RoleDriver.IsStaff() {
		t.Fatalf("driver must not be staff-scoped")
	}
}
