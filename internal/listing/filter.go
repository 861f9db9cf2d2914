package listing

import (
	"fmt"
	"strings"

	"barangayops/internal/identity"
)

// Filter carries the caller-supplied list filters. Zero values mean "no
// restriction" (subject scoping excepted; see Build).
type Filter struct {
	Status string
	// From/To are inclusive ISO dates (YYYY-MM-DD) against Spec.DateColumn.
	From string
	To   string
	// Search is a case-insensitive substring matched across
	// Spec.SearchColumns, combined with OR.
	Search string
}

// Spec describes how one entity table is filtered.
type Spec struct {
	// SubjectColumn scopes self-scoped roles to their own rows.
	SubjectColumn string

	// SearchColumns are the name/diagnosis-like text fields free-text search
	// runs over.
	SearchColumns []string

	StatusColumn string // defaults to "status"
	DateColumn   string

	// UpcomingByDefault restricts to DateColumn >= CURRENT_DATE when the
	// caller gives no date filter. Appointments opt in so staff lists do not
	// drown in historical rows.
	UpcomingByDefault bool
}

// Build computes the WHERE clause and ordered args for a list query.
// Resident and Driver actors are always pinned to their own subject rows
// regardless of supplied filters; staff roles see everything. All filters
// combine with AND; search terms combine with OR across the search columns.
func Build(a identity.Actor, f Filter, s Spec) (string, []any) {
	statusCol := s.StatusColumn
	if statusCol == "" {
		statusCol = "status"
	}

	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if selfScoped(a.Role) && s.SubjectColumn != "" {
		conds = append(conds, fmt.Sprintf("%s = %s", s.SubjectColumn, arg(a.SubjectID)))
	}
	if f.Status != "" {
		conds = append(conds, fmt.Sprintf("%s = %s", statusCol, arg(f.Status)))
	}
	if s.DateColumn != "" {
		switch {
		case f.From != "" || f.To != "":
			if f.From != "" {
				conds = append(conds, fmt.Sprintf("%s >= %s", s.DateColumn, arg(f.From)))
			}
			if f.To != "" {
				conds = append(conds, fmt.Sprintf("%s <= %s", s.DateColumn, arg(f.To)))
			}
		case s.UpcomingByDefault:
			conds = append(conds, fmt.Sprintf("%s >= CURRENT_DATE", s.DateColumn))
		}
	}
	if f.Search != "" && len(s.SearchColumns) > 0 {
		p := arg("%" + f.Search + "%")
		ors := make([]string, 0, len(s.SearchColumns))
		for _, col := range s.SearchColumns {
			ors = append(ors, fmt.Sprintf("%s ILIKE %s", col, p))
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func selfScoped(r identity.Role) bool {
	return r == identity.RoleResident || r == identity.RoleDriver
}
