package vaccination

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"barangayops/internal/api"
	"barangayops/internal/listing"
	"barangayops/pkg/pagination"
)

type Handlers struct {
	Repo *Repository
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	f := listing.Filter{
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
		items = []Record{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type CreateRequest struct {
	ResidentID       string `json:"residentId"`
	ResidentName     string `json:"residentName"`
	Vaccine          string `json:"vaccine"`
	DoseNumber       int    `json:"doseNumber"`
	DateAdministered string `json:"dateAdministered"`
	AdministeredBy   string `json:"administeredBy"`
	Remarks          string `json:"remarks"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	if !a.Role.IsStaff() {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "only health staff may record vaccinations")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if req.ResidentID == "" || strings.TrimSpace(req.ResidentName) == "" || strings.TrimSpace(req.Vaccine) == "" || req.DateAdministered == "" {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in residentId, residentName, vaccine and dateAdministered")
		return
	}
	if _, err := time.Parse("2006-01-02", req.DateAdministered); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "dateAdministered must be YYYY-MM-DD")
		return
	}
	if req.DoseNumber < 1 {
		req.DoseNumber = 1
	}

	rec, err := h.Repo.Create(r.Context(), req.ResidentID, strings.TrimSpace(req.ResidentName), strings.TrimSpace(req.Vaccine),
		req.DoseNumber, req.DateAdministered, strings.TrimSpace(req.AdministeredBy), strings.TrimSpace(req.Remarks))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, rec)
}
