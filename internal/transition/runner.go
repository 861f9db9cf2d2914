package transition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"barangayops/internal/audit"
	"barangayops/internal/identity"
	"barangayops/internal/lifecycle"
	"barangayops/internal/metrics"
	"barangayops/internal/notify"
	"barangayops/pkg/db"
)

// Row is the lifecycle-relevant slice of a stored entity.
type Row struct {
	ID        string
	SubjectID string
	Status    lifecycle.Status
	Version   int
}

// Store is implemented by each domain repository for its own table.
type Store interface {
	// GetForUpdate loads and row-locks the entity inside tx. Must return a
	// lifecycle NotFound error when the id does not exist.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Row, error)

	// ApplyStatus moves the row to next, persists the allowed payload
	// fields, and bumps the version. Must return a lifecycle
	// ConcurrentModification error when expectedVersion no longer matches.
	ApplyStatus(ctx context.Context, tx pgx.Tx, id string, next lifecycle.Status, expectedVersion int, fields map[string]string) error
}

// Runner applies transitions transactionally: row lock, idempotency claim,
// pure engine decision, versioned update, audit append, then post-commit
// notification fan-out. The engine itself stays free of I/O.
type Runner struct {
	DB       *pgxpool.Pool
	Notifier notify.Dispatcher
	Log      zerolog.Logger
}

// Result reports what Run did.
type Result struct {
	Status   lifecycle.Status
	Replayed bool
}

// Run executes one transition request. A requestKey that was already claimed
// makes the call a replay: the stored status is returned and no second audit
// entry or notification is produced.
func (rn *Runner) Run(ctx context.Context, g *lifecycle.Graph, store Store, id string, target lifecycle.Status, actor identity.Actor, fields map[string]string, requestKey string) (*Result, error) {
	var (
		outcome *lifecycle.Outcome
		result  Result
	)

	err := db.WithTx(ctx, rn.DB, func(tx pgx.Tx) error {
		row, err := store.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if requestKey != "" {
			claimed, err := claimRequestKey(ctx, tx, string(g.Entity), id, requestKey)
			if err != nil {
				return err
			}
			if !claimed {
				result = Result{Status: row.Status, Replayed: true}
				return nil
			}
		}

		outcome, err = g.Apply(row.Status, lifecycle.Request{
			Target:    target,
			Actor:     actor,
			SubjectID: row.SubjectID,
			Fields:    fields,
			Now:       time.Now(),
		})
		if err != nil {
			return err
		}

		if err := store.ApplyStatus(ctx, tx, id, outcome.Status, row.Version, outcome.Fields); err != nil {
			return err
		}
		if err := audit.Insert(ctx, tx, string(g.Entity), id, outcome.Entry); err != nil {
			return err
		}

		result = Result{Status: outcome.Status}
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if result.Replayed || outcome == nil {
		return &result, nil
	}

	metrics.TransitionApplied(string(g.Entity), string(outcome.Status))
	if len(outcome.Notify) > 0 && rn.Notifier != nil {
		title := fmt.Sprintf("%s %s", entityTitle(g.Entity), outcome.Status)
		if err := rn.Notifier.Notify(ctx, outcome.Notify, title, audit.FormatLine(outcome.Entry), string(g.Entity), id); err != nil {
			// Fire-and-forget: delivery problems never fail the transition.
			rn.Log.Error().Err(err).Str("entity", string(g.Entity)).Str("id", id).Msg("notify dispatch failed")
		} else {
			metrics.NotificationDispatched(string(g.Entity))
		}
	}

	return &result, nil
}

// claimRequestKey reserves the idempotency key; false means a prior request
// already applied this transition.
func claimRequestKey(ctx context.Context, tx pgx.Tx, entityType, entityID, key string) (bool, error) {
	const q = `
INSERT INTO transition_requests (request_key, entity_type, entity_id)
VALUES ($1, $2, $3)
ON CONFLICT (request_key) DO NOTHING
`
	tag, err := tx.Exec(ctx, q, key, entityType, entityID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// mapStoreErr folds low-level store failures into the error taxonomy.
func mapStoreErr(err error) error {
	if lifecycle.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return lifecycle.Errorf(lifecycle.KindNotFound, "record not found")
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return lifecycle.Errorf(lifecycle.KindStoreUnavailable, "the record store did not respond; please retry")
	}
	return err
}

func entityTitle(e lifecycle.EntityType) string {
	s := strings.ReplaceAll(string(e), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
