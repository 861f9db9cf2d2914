package stats

import (
	"net/http"

	"barangayops/internal/api"
)

type Handlers struct {
	Repo *Repository
}

func (h Handlers) Health(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	if !a.Role.IsStaff() {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "staff role required")
		return
	}
	d, err := h.Repo.Health(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, d)
}

func (h Handlers) Fleet(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	if !a.Role.IsStaff() {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "staff role required")
		return
	}
	d, err := h.Repo.Fleet(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, d)
}
