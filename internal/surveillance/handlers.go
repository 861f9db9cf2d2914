package surveillance

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"barangayops/internal/api"
	"barangayops/internal/audit"
	"barangayops/internal/lifecycle"
	"barangayops/internal/listing"
	"barangayops/internal/transition"
	"barangayops/pkg/pagination"
)

type Handlers struct {
	Repo   *Repository
	Audit  *audit.Repository
	Runner *transition.Runner
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}

	f := listing.Filter{
		Status: r.URL.Query().Get("status"),
		From:   r.URL.Query().Get("from"),
		To:     r.URL.Query().Get("to"),
		Search: r.URL.Query().Get("q"),
	}
	items, err := h.Repo.List(r.Context(), *a, f, pagination.FromRequest(r))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []Report{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type CreateRequest struct {
	ResidentID   string `json:"residentId"`
	ResidentName string `json:"residentName"`
	Disease      string `json:"disease"`
	BarangayZone string `json:"barangayZone"`
}

// Create opens a report. Staff only: case reporting is a health-office task.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	if !a.Role.IsStaff() {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "only health staff may file surveillance reports")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if req.ResidentID == "" || strings.TrimSpace(req.ResidentName) == "" || strings.TrimSpace(req.Disease) == "" {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in residentId, residentName and disease")
		return
	}

	rep, err := h.Repo.Create(r.Context(), req.ResidentID, req.ResidentName, req.Disease, req.BarangayZone)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, rep)
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
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

	rep, err := h.Repo.GetByID(r.Context(), *a, id)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "surveillance report not found")
		return
	}
	trail, err := h.Audit.ListByEntity(r.Context(), string(lifecycle.EntitySurveillance), rep.ID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"report":    rep,
		"auditLog":  trail,
		"auditText": audit.Render(trail),
	})
}

func (h Handlers) PatchStatus(w http.ResponseWriter, r *http.Request) {
	h.Runner.HandleStatus(w, r, Lifecycle, h.Repo, chi.URLParam(r, "id"))
}
