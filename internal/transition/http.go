package transition

import (
	"encoding/json"
	"net/http"

	"barangayops/internal/api"
	"barangayops/internal/lifecycle"
)

// StatusRequest is the shared wire shape of PATCH .../{id}/status bodies.
// RequestKey, when supplied, makes the request idempotent across retries
// and page-refresh resubmissions.
type StatusRequest struct {
	Status     string            `json:"status"`
	RequestKey string            `json:"requestKey,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// HandleStatus is the common transition handler body: decode, resolve the
// actor, run the transition, map the typed error taxonomy onto HTTP.
func (rn *Runner) HandleStatus(w http.ResponseWriter, r *http.Request, g *lifecycle.Graph, store Store, id string) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	target, err := g.Parse(req.Status)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status")
		return
	}

	res, err := rn.Run(r.Context(), g, store, id, target, *a, req.Fields, req.RequestKey)
	if err != nil {
		WriteTransitionError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   res.Status,
		"replayed": res.Replayed,
	})
}

// WriteTransitionError maps the error taxonomy onto user-facing responses.
// Each class keeps a distinct message shape: not allowed, no longer valid,
// fill in X, please retry.
func WriteTransitionError(w http.ResponseWriter, err error) {
	msg := err.Error()
	if le, ok := err.(*lifecycle.Error); ok {
		msg = le.Message
	}
	switch lifecycle.KindOf(err) {
	case lifecycle.KindIllegalTransition:
		api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION", msg)
	case lifecycle.KindForbidden:
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", msg)
	case lifecycle.KindMissingRequiredField:
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", msg)
	case lifecycle.KindNotFound:
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", msg)
	case lifecycle.KindConcurrentModification:
		api.WriteError(w, http.StatusConflict, "CONFLICT_RETRY", msg)
	case lifecycle.KindStoreUnavailable:
		api.WriteError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", msg)
	default:
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
