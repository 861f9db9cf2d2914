package listing

import (
	"strings"
	"testing"

	"barangayops/internal/identity"
)

var apptSpec = Spec{
	SubjectColumn:     "resident_id",
	SearchColumns:     []string{"resident_name", "diagnosis"},
	DateColumn:        "scheduled_date",
	UpcomingByDefault: true,
}

func TestBuild_ResidentAlwaysScopedToOwnRows(t *testing.T) {
	resident := identity.Actor{ID: "u-1", Role: identity.RoleResident, SubjectID: "res-7"}

	// A resident supplying aggressive filters still only sees their own rows.
	where, args := Build(resident, Filter{Status: "Scheduled", Search: "Juan"}, apptSpec)
	if !strings.Contains(where, "resident_id = $1") {
		t.Fatalf("expected subject pin, got %q", where)
	}
	if args[0] != "res-7" {
		t.Fatalf("expected first arg res-7, got %v", args[0])
	}
}

func TestBuild_StaffUnscoped(t *testing.T) {
	staff := identity.Actor{ID: "u-2", Role: identity.RoleStaff}
	where, _ := Build(staff, Filter{}, apptSpec)
	if strings.Contains(where, "resident_id") {
		t.Fatalf("staff must not be subject-scoped: %q", where)
	}
}

func TestBuild_UpcomingDefaultAppliesOnlyWithoutDateFilter(t *testing.T) {
	staff := identity.Actor{Role: identity.RoleAdmin}

	where, _ := Build(staff, Filter{}, apptSpec)
	if !strings.Contains(where, "scheduled_date >= CURRENT_DATE") {
		t.Fatalf("expected upcoming-only default, got %q", where)
	}

	where, args := Build(staff, Filter{From: "2024-01-01", To: "2024-01-31"}, apptSpec)
	if strings.Contains(where, "CURRENT_DATE") {
		t.Fatalf("explicit range must disable the default: %q", where)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %v", args)
	}
}

func TestBuild_SearchORsAcrossColumns(t *testing.T) {
	staff := identity.Actor{Role: identity.RoleStaff}
	where, args := Build(staff, Filter{Search: "dela cruz"}, Spec{SearchColumns: []string{"resident_name", "diagnosis"}})
	if !strings.Contains(where, "resident_name ILIKE $1 OR diagnosis ILIKE $1") {
		t.Fatalf("expected OR search, got %q", where)
	}
	if args[0] != "%dela cruz%" {
		t.Fatalf("expected wrapped pattern, got %v", args[0])
	}
}

func TestBuild_EmptyFilters(t *testing.T) {
	staff := identity.Actor{Role: identity.RoleSuperAdmin}
	where, args := Build(staff, Filter{}, Spec{SubjectColumn: "resident_id"})
	if where != "" || args != nil {
		t.Fatalf("expected no predicate, got %q %v", where, args)
	}
}

func TestBuild_DriverScopedLikeResident(t *testing.T) {
	driver := identity.Actor{Role: identity.RoleDriver, SubjectID: "drv-3"}
	where, args := Build(driver, Filter{}, Spec{SubjectColumn: "driver_id"})
	if !strings.Contains(where, "driver_id = $1") || args[0] != "drv-3" {
		t.Fatalf("driver must be pinned to own rows: %q %v", where, args)
	}
}
