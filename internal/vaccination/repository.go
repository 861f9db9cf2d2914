package vaccination

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"barangayops/internal/identity"
	"barangayops/internal/listing"
	"barangayops/pkg/pagination"
)

// Record is a plain register entry. Vaccinations have no lifecycle: once
// administered they are history, and history only accumulates.
type Record struct {
	ID               string    `json:"id"`
	ResidentID       string    `json:"residentId"`
	ResidentName     string    `json:"residentName"`
	Vaccine          string    `json:"vaccine"`
	DoseNumber       int       `json:"doseNumber"`
	DateAdministered string    `json:"dateAdministered"`
	AdministeredBy   string    `json:"administeredBy,omitempty"`
	Remarks          string    `json:"remarks,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

var ListSpec = listing.Spec{
	SubjectColumn: "resident_id",
	SearchColumns: []string{"resident_name", "vaccine"},
	DateColumn:    "date_administered",
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const cols = `
id, resident_id, resident_name, vaccine, dose_number, date_administered::text,
COALESCE(administered_by, ''), COALESCE(remarks, ''), created_at
`

func scan(row pgx.Row) (*Record, error) {
	var rec Record
	if err := row.Scan(
		&rec.ID, &rec.ResidentID, &rec.ResidentName, &rec.Vaccine, &rec.DoseNumber, &rec.DateAdministered,
		&rec.AdministeredBy, &rec.Remarks, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) Create(ctx context.Context, residentID, residentName, vaccine string, dose int, dateAdministered, administeredBy, remarks string) (*Record, error) {
	const q = `
INSERT INTO vaccinations (resident_id, resident_name, vaccine, dose_number, date_administered, administered_by, remarks)
VALUES ($1, $2, $3, $4, $5::date, NULLIF($6, ''), NULLIF($7, ''))
RETURNING ` + cols
	return scan(r.db.QueryRow(ctx, q, residentID, residentName, vaccine, dose, dateAdministered, administeredBy, remarks))
}

func (r *Repository) List(ctx context.Context, actor identity.Actor, f listing.Filter, page pagination.Params) ([]Record, error) {
	where, args := listing.Build(actor, f, ListSpec)
	q := `SELECT ` + cols + ` FROM vaccinations ` + where + `
ORDER BY date_administered DESC, dose_number DESC ` + page.SQL()

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
