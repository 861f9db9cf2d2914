package appointment

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"barangayops/internal/api"
	"barangayops/internal/audit"
	"barangayops/internal/lifecycle"
	"barangayops/internal/listing"
	"barangayops/internal/transition"
	"barangayops/pkg/db"
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
		items = []Appointment{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type CreateRequest struct {
	ResidentID    string `json:"residentId"`
	ResidentName  string `json:"residentName"`
	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime"`
	Purpose       string `json:"purpose"`
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

	// Residents always book for themselves.
	if !a.Role.IsStaff() {
		req.ResidentID = a.SubjectID
	}
	if req.ResidentID == "" || strings.TrimSpace(req.ResidentName) == "" {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in residentId and residentName")
		return
	}
	if _, err := time.Parse("2006-01-02", req.ScheduledDate); err != nil {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in scheduledDate as YYYY-MM-DD")
		return
	}
	if _, err := time.Parse("15:04", req.ScheduledTime); err != nil {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in scheduledTime as HH:MM")
		return
	}
	if strings.TrimSpace(req.Purpose) == "" {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in purpose")
		return
	}

	appt, err := h.Repo.Create(r.Context(), req.ResidentID, req.ResidentName, req.ScheduledDate, req.ScheduledTime, req.Purpose)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, appt)
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

	appt, err := h.Repo.GetByID(r.Context(), *a, id)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "appointment not found")
		return
	}
	trail, err := h.Audit.ListByEntity(r.Context(), string(lifecycle.EntityAppointment), appt.ID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"appointment": appt,
		"auditLog":    trail,
		"auditText":   audit.Render(trail),
	})
}

func (h Handlers) PatchStatus(w http.ResponseWriter, r *http.Request) {
	h.Runner.HandleStatus(w, r, Lifecycle, h.Repo, chi.URLParam(r, "id"))
}

type RemarkRequest struct {
	Text string `json:"text"`
}

// Remark appends an administrative note without changing status. This is the
// only mutation allowed once an appointment is terminal.
func (h Handlers) Remark(w http.ResponseWriter, r *http.Request) {
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

	var req RemarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in text")
		return
	}

	if _, err := h.Repo.GetByID(r.Context(), *a, id); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "appointment not found")
		return
	}

	err := db.WithTx(r.Context(), h.Runner.DB, func(tx pgx.Tx) error {
		// Lock the row so remark lines serialize with status changes.
		if _, err := h.Repo.GetForUpdate(r.Context(), tx, id); err != nil {
			return err
		}
		return audit.Insert(r.Context(), tx, string(lifecycle.EntityAppointment), id, audit.Entry{
			At:    time.Now(),
			Label: "Remark by " + a.Label(),
			Text:  strings.TrimSpace(req.Text),
		})
	})
	if err != nil {
		transition.WriteTransitionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
