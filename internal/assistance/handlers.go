package assistance

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

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
		items = []Request{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type CreateRequest struct {
	ResidentID      string `json:"residentId"`
	ResidentName    string `json:"residentName"`
	AssistanceType  string `json:"assistanceType"`
	Priority        string `json:"priority"`
	Description     string `json:"description"`
	DocumentRef     string `json:"documentRef"`
	EstimatedAmount string `json:"estimatedAmount"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if !a.Role.IsStaff() {
		req.ResidentID = a.SubjectID
	}
	if req.ResidentID == "" || strings.TrimSpace(req.ResidentName) == "" {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in residentId and residentName")
		return
	}
	if strings.TrimSpace(req.AssistanceType) == "" {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in assistanceType")
		return
	}
	priority, err := ParsePriority(req.Priority)
	if err != nil {
		transition.WriteTransitionError(w, err)
		return
	}
	amt, err := decimal.NewFromString(req.EstimatedAmount)
	if err != nil || amt.IsNegative() {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in estimatedAmount as a non-negative number")
		return
	}

	created, err := h.Repo.Create(r.Context(), &Request{
		ResidentID:      req.ResidentID,
		ResidentName:    req.ResidentName,
		AssistanceType:  req.AssistanceType,
		Priority:        priority,
		Description:     req.Description,
		DocumentRef:     req.DocumentRef,
		EstimatedAmount: amt.StringFixed(2),
	})
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, created)
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

	req, err := h.Repo.GetByID(r.Context(), *a, id)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "assistance request not found")
		return
	}
	trail, err := h.Audit.ListByEntity(r.Context(), string(lifecycle.EntityAssistance), req.ID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"request":   req,
		"auditLog":  trail,
		"auditText": audit.Render(trail),
	})
}

func (h Handlers) PatchStatus(w http.ResponseWriter, r *http.Request) {
	h.Runner.HandleStatus(w, r, Lifecycle, h.Repo, chi.URLParam(r, "id"))
}
