package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"barangayops/internal/api"
	"barangayops/internal/appointment"
	"barangayops/internal/assistance"
	"barangayops/internal/audit"
	"barangayops/internal/fleet"
	"barangayops/internal/identity"
	"barangayops/internal/metrics"
	"barangayops/internal/notify"
	"barangayops/internal/stats"
	"barangayops/internal/surveillance"
	"barangayops/internal/transition"
	"barangayops/internal/vaccination"
	"barangayops/pkg/config"
)

type Dependencies struct {
	Cfg config.Config
	DB  *pgxpool.Pool
	Log zerolog.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(api.RequestLogger(deps.Log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	auditRepo := audit.NewRepository(deps.DB)
	runner := &transition.Runner{
		DB:       deps.DB,
		Notifier: notify.NewPGDispatcher(deps.DB),
		Log:      deps.Log,
	}

	appointmentHandlers := appointment.Handlers{
		Repo:   appointment.NewRepository(deps.DB),
		Audit:  auditRepo,
		Runner: runner,
	}
	assistanceHandlers := assistance.Handlers{
		Repo:   assistance.NewRepository(deps.DB),
		Audit:  auditRepo,
		Runner: runner,
	}
	surveillanceHandlers := surveillance.Handlers{
		Repo:   surveillance.NewRepository(deps.DB),
		Audit:  auditRepo,
		Runner: runner,
	}
	fleetHandlers := fleet.Handlers{
		Repo:   fleet.NewRepository(deps.DB),
		Audit:  auditRepo,
		Runner: runner,
	}
	vaccinationHandlers := vaccination.Handlers{Repo: vaccination.NewRepository(deps.DB)}
	statsHandlers := stats.Handlers{Repo: stats.NewRepository(deps.DB)}
	notifyHandlers := notify.Handlers{DB: deps.DB}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/session/dev", api.DevSession(deps.Cfg))

		r.Group(func(r chi.Router) {
			r.Use(api.SessionAuth(deps.Cfg))

			r.Get("/appointments", appointmentHandlers.List)
			r.Post("/appointments", appointmentHandlers.Create)
			r.Get("/appointments/{id}", appointmentHandlers.Get)
			r.Patch("/appointments/{id}/status", appointmentHandlers.PatchStatus)
			r.Post("/appointments/{id}/remarks", appointmentHandlers.Remark)

			r.Get("/assistance", assistanceHandlers.List)
			r.Post("/assistance", assistanceHandlers.Create)
			r.Get("/assistance/{id}", assistanceHandlers.Get)
			r.Patch("/assistance/{id}/status", assistanceHandlers.PatchStatus)

			r.Group(func(r chi.Router) {
				r.Use(api.RequireRoles(identity.StaffRoles...))
				r.Post("/surveillance", surveillanceHandlers.Create)
			})
			r.Get("/surveillance", surveillanceHandlers.List)
			r.Get("/surveillance/{id}", surveillanceHandlers.Get)
			r.Patch("/surveillance/{id}/status", surveillanceHandlers.PatchStatus)

			r.Get("/vaccinations", vaccinationHandlers.List)
			r.Post("/vaccinations", vaccinationHandlers.Create)

			r.Get("/vehicles", fleetHandlers.ListVehicles)
			r.Post("/vehicles", fleetHandlers.CreateVehicle)
			r.Delete("/vehicles/{id}", fleetHandlers.DeleteVehicle)

			r.Get("/trips", fleetHandlers.ListTrips)
			r.Post("/trips", fleetHandlers.CreateTrip)
			r.Get("/trips/{id}", fleetHandlers.GetTrip)
			r.Patch("/trips/{id}/status", fleetHandlers.PatchTripStatus)

			r.Get("/maintenance", fleetHandlers.ListTickets)
			r.Post("/maintenance", fleetHandlers.CreateTicket)
			r.Get("/maintenance/{id}", fleetHandlers.GetTicket)
			r.Patch("/maintenance/{id}/status", fleetHandlers.PatchTicketStatus)

			r.Get("/fuel", fleetHandlers.ListFuelLogs)
			r.Post("/fuel", fleetHandlers.CreateFuelLog)

			r.Get("/notifications", notifyHandlers.List)
			r.Post("/notifications/{id}/read", notifyHandlers.MarkRead)

			r.Get("/dashboard/health", statsHandlers.Health)
			r.Get("/dashboard/fleet", statsHandlers.Fleet)
		})
	})

	return r
}
