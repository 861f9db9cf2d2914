package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"barangayops/internal/api"
)

type Notification struct {
	ID          string     `json:"id"`
	Role        string     `json:"role"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	SubjectType string     `json:"subjectType"`
	SubjectID   string     `json:"subjectId"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Handlers struct {
	DB *pgxpool.Pool
}

// List returns the current actor's role inbox, newest first.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}

	items, err := listByRole(r.Context(), h.DB, string(a.Role))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	const q = `
UPDATE notifications
SET read_at = NOW()
WHERE id = $1 AND role = $2 AND read_at IS NULL
`
	if _, err := h.DB.Exec(r.Context(), q, id, string(a.Role)); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func listByRole(ctx context.Context, db *pgxpool.Pool, role string) ([]Notification, error) {
	const q = `
SELECT id, role, title, message, subject_type, subject_id, read_at, created_at
FROM notifications
WHERE role = $1
ORDER BY created_at DESC
LIMIT 200
`
	rows, err := db.Query(ctx, q, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Role, &n.Title, &n.Message, &n.SubjectType, &n.SubjectID, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
