package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert appends one entry to an entity's audit trail inside the caller's
// transaction. Appends ride the same row lock as the status update, so two
// transitions on the same entity can never interleave their history lines.
func Insert(ctx context.Context, tx pgx.Tx, entityType, entityID string, e Entry) error {
	const q = `
INSERT INTO audit_entries (entity_type, entity_id, occurred_at, label, note)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := tx.Exec(ctx, q, entityType, entityID, e.At, e.Label, e.Text)
	return err
}

// ListByEntity returns an entity's trail, oldest first.
func (r *Repository) ListByEntity(ctx context.Context, entityType, entityID string) ([]Entry, error) {
	const q = `
SELECT occurred_at, label, COALESCE(note, '')
FROM audit_entries
WHERE entity_type = $1 AND entity_id = $2
ORDER BY occurred_at ASC, id ASC
`
	rows, err := r.db.Query(ctx, q, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at time.Time
		if err := rows.Scan(&at, &e.Label, &e.Text); err != nil {
			return nil, err
		}
		e.At = at
		out = append(out, e)
	}
	return out, rows.Err()
}
