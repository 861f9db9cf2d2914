package stats

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthDashboard is what the health office sees on login.
type HealthDashboard struct {
	AppointmentsByStatus  map[string]int `json:"appointmentsByStatus"`
	AppointmentsThisMonth int            `json:"appointmentsThisMonth"`
	AssistanceByStatus    map[string]int `json:"assistanceByStatus"`
	ApprovedAmountTotal   string         `json:"approvedAmountTotal"`
	ReleasedAmountTotal   string         `json:"releasedAmountTotal"`
	ActiveSurveillance    int            `json:"activeSurveillance"`
	VaccinationsThisMonth int            `json:"vaccinationsThisMonth"`
}

// FleetDashboard summarizes vehicle operations.
type FleetDashboard struct {
	TripsByStatus   map[string]int `json:"tripsByStatus"`
	TripsThisMonth  int            `json:"tripsThisMonth"`
	OpenMaintenance int            `json:"openMaintenance"`
	MonthFuelLiters string         `json:"monthFuelLiters"`
	MonthFuelCost   string         `json:"monthFuelCost"`
	VehicleCount    int            `json:"vehicleCount"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) countByStatus(ctx context.Context, table string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM `+table+` GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *Repository) Health(ctx context.Context) (*HealthDashboard, error) {
	d := &HealthDashboard{}

	var err error
	if d.AppointmentsByStatus, err = r.countByStatus(ctx, "appointments"); err != nil {
		return nil, err
	}
	if d.AssistanceByStatus, err = r.countByStatus(ctx, "assistance_requests"); err != nil {
		return nil, err
	}

	const q = `
SELECT
  (SELECT COUNT(*) FROM appointments
    WHERE date_trunc('month', scheduled_date) = date_trunc('month', CURRENT_DATE)),
  (SELECT COALESCE(SUM(approved_amount), 0)::text FROM assistance_requests
    WHERE status IN ('Approved', 'Released')),
  (SELECT COALESCE(SUM(approved_amount), 0)::text FROM assistance_requests
    WHERE status = 'Released'),
  (SELECT COUNT(*) FROM surveillance_reports WHERE status IN ('Active', 'Monitoring')),
  (SELECT COUNT(*) FROM vaccinations
    WHERE date_trunc('month', date_administered) = date_trunc('month', CURRENT_DATE))
`
	err = r.db.QueryRow(ctx, q).Scan(
		&d.AppointmentsThisMonth,
		&d.ApprovedAmountTotal,
		&d.ReleasedAmountTotal,
		&d.ActiveSurveillance,
		&d.VaccinationsThisMonth,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Repository) Fleet(ctx context.Context) (*FleetDashboard, error) {
	d := &FleetDashboard{}

	var err error
	if d.TripsByStatus, err = r.countByStatus(ctx, "trips"); err != nil {
		return nil, err
	}

	const q = `
SELECT
  (SELECT COUNT(*) FROM trips
    WHERE date_trunc('month', departure_time) = date_trunc('month', CURRENT_DATE)),
  (SELECT COUNT(*) FROM maintenance_tickets WHERE status IN ('Reported', 'Scheduled')),
  (SELECT COALESCE(SUM(liters), 0)::text FROM fuel_logs
    WHERE date_trunc('month', log_date) = date_trunc('month', CURRENT_DATE)),
  (SELECT COALESCE(SUM(cost), 0)::text FROM fuel_logs
    WHERE date_trunc('month', log_date) = date_trunc('month', CURRENT_DATE)),
  (SELECT COUNT(*) FROM vehicles)
`
	err = r.db.QueryRow(ctx, q).Scan(
		&d.TripsThisMonth,
		&d.OpenMaintenance,
		&d.MonthFuelLiters,
		&d.MonthFuelCost,
		&d.VehicleCount,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}
