package appointment

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

type Appointment struct {
	ID            string           `json:"id"`
	ResidentID    string           `json:"residentId"`
	ResidentName  string           `json:"residentName"`
	ScheduledDate string           `json:"scheduledDate"`
	ScheduledTime string           `json:"scheduledTime"`
	Purpose       string           `json:"purpose"`
	Status        lifecycle.Status `json:"status"`
	Diagnosis     string           `json:"diagnosis,omitempty"`
	Prescription  string           `json:"prescription,omitempty"`
	FollowUpDate  string           `json:"followUpDate,omitempty"`
	Version       int              `json:"version"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// ListSpec scopes residents to their own rows and defaults staff views to
// upcoming appointments.
var ListSpec = listing.Spec{
	SubjectColumn:     "resident_id",
	SearchColumns:     []string{"resident_name", "purpose", "diagnosis"},
	DateColumn:        "scheduled_date",
	UpcomingByDefault: true,
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const cols = `
id, resident_id, resident_name, scheduled_date::text, scheduled_time::text, purpose, status,
COALESCE(diagnosis, ''), COALESCE(prescription, ''),
COALESCE(follow_up_date::text, ''), version, created_at, updated_at
`

func scan(row pgx.Row) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(
		&a.ID, &a.ResidentID, &a.ResidentName, &a.ScheduledDate, &a.ScheduledTime, &a.Purpose, &a.Status,
		&a.Diagnosis, &a.Prescription, &a.FollowUpDate, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) Create(ctx context.Context, residentID, residentName, date, timeOfDay, purpose string) (*Appointment, error) {
	const q = `
INSERT INTO appointments (resident_id, resident_name, scheduled_date, scheduled_time, purpose, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + cols
	return scan(r.db.QueryRow(ctx, q, residentID, residentName, date, timeOfDay, purpose, string(StatusScheduled)))
}

func (r *Repository) List(ctx context.Context, actor identity.Actor, f listing.Filter, page pagination.Params) ([]Appointment, error) {
	where, args := listing.Build(actor, f, ListSpec)
	q := `SELECT ` + cols + ` FROM appointments ` + where + `
ORDER BY scheduled_date ASC, scheduled_time ASC ` + page.SQL()

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// GetByID returns the appointment, hiding other residents' rows from
// self-scoped actors behind NotFound.
func (r *Repository) GetByID(ctx context.Context, actor identity.Actor, id string) (*Appointment, error) {
	const q = `SELECT ` + cols + ` FROM appointments WHERE id = $1`
	a, err := scan(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && a.ResidentID != actor.SubjectID {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (r *Repository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*transition.Row, error) {
	const q = `
SELECT id, resident_id, status, version
FROM appointments
WHERE id = $1
FOR UPDATE
`
	var row transition.Row
	if err := tx.QueryRow(ctx, q, id).Scan(&row.ID, &row.SubjectID, &row.Status, &row.Version); err != nil {
		if err == pgx.ErrNoRows {
			return nil, lifecycle.Errorf(lifecycle.KindNotFound, "appointment not found")
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ApplyStatus(ctx context.Context, tx pgx.Tx, id string, next lifecycle.Status, expectedVersion int, fields map[string]string) error {
	const q = `
UPDATE appointments
SET status = $2,
    diagnosis = COALESCE($4, diagnosis),
    prescription = COALESCE($5, prescription),
    follow_up_date = COALESCE($6::date, follow_up_date),
    version = version + 1,
    updated_at = NOW()
WHERE id = $1 AND version = $3
`
	tag, err := tx.Exec(ctx, q, id, string(next), expectedVersion,
		nullable(fields, "diagnosis"), nullable(fields, "prescription"), nullable(fields, "followUpDate"))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lifecycle.Errorf(lifecycle.KindConcurrentModification, "the appointment changed while you were updating it; please retry")
	}
	return nil
}

func nullable(fields map[string]string, key string) *string {
	if v, ok := fields[key]; ok && v != "" {
		return &v
	}
	return nil
}
