package assistance

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

type Request struct {
	ID              string           `json:"id"`
	ResidentID      string           `json:"residentId"`
	ResidentName    string           `json:"residentName"`
	AssistanceType  string           `json:"assistanceType"`
	Priority        Priority         `json:"priority"`
	Description     string           `json:"description"`
	DocumentRef     string           `json:"documentRef,omitempty"`
	EstimatedAmount string           `json:"estimatedAmount"`
	ApprovedAmount  string           `json:"approvedAmount,omitempty"`
	Status          lifecycle.Status `json:"status"`
	RequestDate     string           `json:"requestDate"`
	Version         int              `json:"version"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

var ListSpec = listing.Spec{
	SubjectColumn: "resident_id",
	SearchColumns: []string{"resident_name", "assistance_type", "description"},
	DateColumn:    "request_date",
}

// priorityOrder ranks Emergency ahead of Urgent ahead of Normal, then the
// newest requests first.
const priorityOrder = `
ORDER BY CASE priority WHEN 'Emergency' THEN 1 WHEN 'Urgent' THEN 2 ELSE 3 END,
         request_date DESC
`

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const cols = `
id, resident_id, resident_name, assistance_type, priority, description,
COALESCE(document_ref, ''), estimated_amount::text,
COALESCE(approved_amount::text, ''), status, request_date::text, version, created_at, updated_at
`

func scan(row pgx.Row) (*Request, error) {
	var a Request
	if err := row.Scan(
		&a.ID, &a.ResidentID, &a.ResidentName, &a.AssistanceType, &a.Priority, &a.Description,
		&a.DocumentRef, &a.EstimatedAmount, &a.ApprovedAmount, &a.Status, &a.RequestDate,
		&a.Version, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) Create(ctx context.Context, req *Request) (*Request, error) {
	const q = `
INSERT INTO assistance_requests
  (resident_id, resident_name, assistance_type, priority, description, document_ref, estimated_amount, status, request_date)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, CURRENT_DATE)
RETURNING ` + cols
	return scan(r.db.QueryRow(ctx, q,
		req.ResidentID, req.ResidentName, req.AssistanceType, string(req.Priority),
		req.Description, req.DocumentRef, req.EstimatedAmount, string(StatusPending)))
}

func (r *Repository) List(ctx context.Context, actor identity.Actor, f listing.Filter, page pagination.Params) ([]Request, error) {
	where, args := listing.Build(actor, f, ListSpec)
	q := `SELECT ` + cols + ` FROM assistance_requests ` + where + priorityOrder + page.SQL()

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, actor identity.Actor, id string) (*Request, error) {
	const q = `SELECT ` + cols + ` FROM assistance_requests WHERE id = $1`
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
FROM assistance_requests
WHERE id = $1
FOR UPDATE
`
	var row transition.Row
	if err := tx.QueryRow(ctx, q, id).Scan(&row.ID, &row.SubjectID, &row.Status, &row.Version); err != nil {
		if err == pgx.ErrNoRows {
			return nil, lifecycle.Errorf(lifecycle.KindNotFound, "assistance request not found")
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ApplyStatus(ctx context.Context, tx pgx.Tx, id string, next lifecycle.Status, expectedVersion int, fields map[string]string) error {
	const q = `
UPDATE assistance_requests
SET status = $2,
    approved_amount = COALESCE($4::numeric, approved_amount),
    version = version + 1,
    updated_at = NOW()
WHERE id = $1 AND version = $3
`
	tag, err := tx.Exec(ctx, q, id, string(next), expectedVersion, nullable(fields, "approvedAmount"))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lifecycle.Errorf(lifecycle.KindConcurrentModification, "the request changed while you were updating it; please retry")
	}
	return nil
}

func nullable(fields map[string]string, key string) *string {
	if v, ok := fields[key]; ok && v != "" {
		return &v
	}
	return nil
}
