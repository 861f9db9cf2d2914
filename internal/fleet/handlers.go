package fleet

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"barangayops/internal/api"
	"barangayops/internal/audit"
	"barangayops/internal/identity"
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

// Vehicles

func (h Handlers) ListVehicles(w http.ResponseWriter, r *http.Request) {
	if api.ActorFromContext(r.Context()) == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	items, err := h.Repo.ListVehicles(r.Context(), pagination.FromRequest(r))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []Vehicle{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type CreateVehicleRequest struct {
	PlateNumber string `json:"plateNumber"`
	Model       string `json:"model"`
	VehicleType string `json:"vehicleType"`
}

func (h Handlers) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if strings.TrimSpace(req.PlateNumber) == "" || strings.TrimSpace(req.Model) == "" {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in plateNumber and model")
		return
	}
	v, err := h.Repo.CreateVehicle(r.Context(), strings.TrimSpace(req.PlateNumber), strings.TrimSpace(req.Model), strings.TrimSpace(req.VehicleType))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, v)
}

// DeleteVehicle is the one hard delete in the system: retiring a vehicle
// removes the registry row rather than moving it through a lifecycle.
func (h Handlers) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.Repo.DeleteVehicle(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "vehicle not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h Handlers) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return false
	}
	if a.Role != identity.RoleAdmin && a.Role != identity.RoleSuperAdmin {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
		return false
	}
	return true
}

// Trips

func (h Handlers) ListTrips(w http.ResponseWriter, r *http.Request) {
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
	items, err := h.Repo.ListTrips(r.Context(), *a, f, pagination.FromRequest(r))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []Trip{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type CreateTripRequest struct {
	VehicleID     string `json:"vehicleId"`
	DriverID      string `json:"driverId"`
	DriverName    string `json:"driverName"`
	Destination   string `json:"destination"`
	Purpose       string `json:"purpose"`
	DepartureTime string `json:"departureTime"`
	OdometerStart int    `json:"odometerStart"`
}

func (h Handlers) CreateTrip(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	var req CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	// Drivers open trips for themselves; the office may log one on a
	// driver's behalf.
	if a.Role == identity.RoleDriver {
		req.DriverID = a.SubjectID
	}
	if req.VehicleID == "" || req.DriverID == "" || strings.TrimSpace(req.Destination) == "" {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in vehicleId, driverId and destination")
		return
	}
	if req.OdometerStart < 0 {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "odometerStart must be non-negative")
		return
	}

	departure := time.Now()
	if req.DepartureTime != "" {
		t, err := parseArrival(req.DepartureTime)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "departureTime must be a valid timestamp")
			return
		}
		departure = t
	}

	trip, err := h.Repo.CreateTrip(r.Context(), req.VehicleID, req.DriverID, strings.TrimSpace(req.DriverName),
		strings.TrimSpace(req.Destination), strings.TrimSpace(req.Purpose), departure, req.OdometerStart)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, trip)
}

func (h Handlers) GetTrip(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	trip, err := h.Repo.GetTrip(r.Context(), *a, chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "trip not found")
		return
	}
	trail, err := h.Audit.ListByEntity(r.Context(), string(lifecycle.EntityTrip), trip.ID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"trip":      trip,
		"auditLog":  trail,
		"auditText": audit.Render(trail),
	})
}

func (h Handlers) PatchTripStatus(w http.ResponseWriter, r *http.Request) {
	h.Runner.HandleStatus(w, r, TripLifecycle, TripStore{h.Repo}, chi.URLParam(r, "id"))
}

// Maintenance

func (h Handlers) ListTickets(w http.ResponseWriter, r *http.Request) {
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
	items, err := h.Repo.ListTickets(r.Context(), *a, f, pagination.FromRequest(r))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []MaintenanceTicket{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type CreateTicketRequest struct {
	VehicleID    string `json:"vehicleId"`
	ReportedBy   string `json:"reportedBy"`
	ReporterName string `json:"reporterName"`
	Issue        string `json:"issue"`
}

func (h Handlers) CreateTicket(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	var req CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if a.Role == identity.RoleDriver {
		req.ReportedBy = a.SubjectID
	}
	if req.VehicleID == "" || req.ReportedBy == "" || strings.TrimSpace(req.Issue) == "" {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in vehicleId and issue")
		return
	}
	ticket, err := h.Repo.CreateTicket(r.Context(), req.VehicleID, req.ReportedBy, strings.TrimSpace(req.ReporterName), strings.TrimSpace(req.Issue))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, ticket)
}

func (h Handlers) GetTicket(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	ticket, err := h.Repo.GetTicket(r.Context(), *a, chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "maintenance ticket not found")
		return
	}
	trail, err := h.Audit.ListByEntity(r.Context(), string(lifecycle.EntityMaintenance), ticket.ID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"ticket":    ticket,
		"auditLog":  trail,
		"auditText": audit.Render(trail),
	})
}

func (h Handlers) PatchTicketStatus(w http.ResponseWriter, r *http.Request) {
	h.Runner.HandleStatus(w, r, MaintenanceLifecycle, TicketStore{h.Repo}, chi.URLParam(r, "id"))
}

// Fuel logs

func (h Handlers) ListFuelLogs(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	items, err := h.Repo.ListFuelLogs(r.Context(), *a, pagination.FromRequest(r))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []FuelLog{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type CreateFuelLogRequest struct {
	VehicleID string `json:"vehicleId"`
	DriverID  string `json:"driverId"`
	LogDate   string `json:"logDate"`
	Liters    string `json:"liters"`
	Cost      string `json:"cost"`
	Odometer  int    `json:"odometer"`
}

func (h Handlers) CreateFuelLog(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	var req CreateFuelLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if a.Role == identity.RoleDriver {
		req.DriverID = a.SubjectID
	}
	if req.VehicleID == "" || req.DriverID == "" {
		api.WriteError(w, http.StatusBadRequest, "FIELD_REQUIRED", "please fill in vehicleId and driverId")
		return
	}
	for name, v := range map[string]string{"liters": req.Liters, "cost": req.Cost} {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", name+" must be a non-negative amount")
			return
		}
	}
	if req.Odometer < 0 {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "odometer must be non-negative")
		return
	}
	logDate := req.LogDate
	if logDate == "" {
		logDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", logDate); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "logDate must be YYYY-MM-DD")
		return
	}

	entry, err := h.Repo.CreateFuelLog(r.Context(), req.VehicleID, req.DriverID, logDate, req.Liters, req.Cost, req.Odometer)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, entry)
}
