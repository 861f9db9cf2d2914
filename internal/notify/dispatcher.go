package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"barangayops/internal/identity"
)

// Dispatcher enqueues notifications for a set of roles. Callers treat it as
// fire-and-forget; delivery and storage are this collaborator's concern.
type Dispatcher interface {
	Notify(ctx context.Context, roles []identity.Role, title, message, subjectType, subjectID string) error
}

// PGDispatcher fans one notification row out per role into Postgres, where
// the in-app notification list reads them back.
type PGDispatcher struct {
	db *pgxpool.Pool
}

func NewPGDispatcher(db *pgxpool.Pool) *PGDispatcher {
	return &PGDispatcher{db: db}
}

func (d *PGDispatcher) Notify(ctx context.Context, roles []identity.Role, title, message, subjectType, subjectID string) error {
	const q = `
INSERT INTO notifications (id, role, title, message, subject_type, subject_id)
VALUES ($1, $2, $3, $4, $5, $6)
`
	for _, role := range roles {
		if _, err := d.db.Exec(ctx, q, uuid.NewString(), string(role), title, message, subjectType, subjectID); err != nil {
			return err
		}
	}
	return nil
}
