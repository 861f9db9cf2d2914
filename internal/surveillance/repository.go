package surveillance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"barangayops/internal/identity"
	"barangayops/internal/lifecycle"
	"barangayops/internal/listing"
	"barangayops/internal/transition"
	"barangayops/pkg/pagination"
)

type Report struct {
	ID           string           `json:"id"`
	ResidentID   string           `json:"residentId"`
	ResidentName string           `json:"residentName"`
	Disease      string           `json:"disease"`
	Barangay     string           `json:"barangayZone"`
	ReportDate   string           `json:"reportDate"`
	Status       lifecycle.Status `json:"status"`
	Notes        string           `json:"notes,omitempty"`
	Version      int              `json:"version"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

var ListSpec = listing.Spec{
	SubjectColumn: "resident_id",
	SearchColumns: []string{"resident_name", "disease", "barangay_zone"},
	DateColumn:    "report_date",
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const cols = `
id, resident_id, resident_name, disease, barangay_zone, report_date::text, status,
COALESCE(notes, ''), version, created_at, updated_at
`

func scan(row pgx.Row) (*Report, error) {
	var rep Report
	if err := row.Scan(
		&rep.ID, &rep.ResidentID, &rep.ResidentName, &rep.Disease, &rep.Barangay, &rep.ReportDate,
		&rep.Status, &rep.Notes, &rep.Version, &rep.CreatedAt, &rep.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *Repository) Create(ctx context.Context, residentID, residentName, disease, zone string) (*Report, error) {
	const q = `
INSERT INTO surveillance_reports (resident_id, resident_name, disease, barangay_zone, report_date, status)
VALUES ($1, $2, $3, $4, CURRENT_DATE, $5)
RETURNING ` + cols
	return scan(r.db.QueryRow(ctx, q, residentID, residentName, disease, zone, string(StatusActive)))
}

func (r *Repository) List(ctx context.Context, actor identity.Actor, f listing.Filter, page pagination.Params) ([]Report, error) {
	where, args := listing.Build(actor, f, ListSpec)
	q := `SELECT ` + cols + ` FROM surveillance_reports ` + where + `
ORDER BY report_date DESC ` + page.SQL()

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		rep, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, actor identity.Actor, id string) (*Report, error) {
	const q = `SELECT ` + cols + ` FROM surveillance_reports WHERE id = $1`
	rep, err := scan(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && rep.ResidentID != actor.SubjectID {
		return nil, pgx.ErrNoRows
	}
	return rep, nil
}

func (r *Repository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*transition.Row, error) {
	const q = `
SELECT id, resident_id, status, version
FROM surveillance_reports
WHERE id = $1
FOR UPDATE
`
	var row transition.Row
	if err := tx.QueryRow(ctx, q, id).Scan(&row.ID, &row.SubjectID, &row.Status, &row.Version); err != nil {
		if err == pgx.ErrNoRows {
			return nil, lifecycle.Errorf(lifecycle.KindNotFound, "surveillance report not found")
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ApplyStatus(ctx context.Context, tx pgx.Tx, id string, next lifecycle.Status, expectedVersion int, fields map[string]string) error {
	const q = `
UPDATE surveillance_reports
SET status = $2,
    notes = COALESCE($4, notes),
    version = version + 1,
    updated_at = NOW()
WHERE id = $1 AND version = $3
`
	var notes *string
	if v, ok := fields["notes"]; ok && v != "" {
		notes = &v
	}
	tag, err := tx.Exec(ctx, q, id, string(next), expectedVersion, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lifecycle.Errorf(lifecycle.KindConcurrentModification, "the report changed while you were updating it; please retry")
	}
	return nil
}
