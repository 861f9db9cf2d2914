package fleet

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"barangayops/internal/identity"
	"barangayops/internal/lifecycle"
	"barangayops/internal/listing"
	"barangayops/internal/transition"
	"barangayops/pkg/pagination"
)

type Vehicle struct {
	ID          string    `json:"id"`
	PlateNumber string    `json:"plateNumber"`
	Model       string    `json:"model"`
	VehicleType string    `json:"vehicleType"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Trip struct {
	ID            string           `json:"id"`
	VehicleID     string           `json:"vehicleId"`
	DriverID      string           `json:"driverId"`
	DriverName    string           `json:"driverName"`
	Destination   string           `json:"destination"`
	Purpose       string           `json:"purpose,omitempty"`
	DepartureTime time.Time        `json:"departureTime"`
	ArrivalTime   *time.Time       `json:"arrivalTime,omitempty"`
	OdometerStart int              `json:"odometerStart"`
	OdometerEnd   *int             `json:"odometerEnd,omitempty"`
	Status        lifecycle.Status `json:"status"`
	Version       int              `json:"version"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type MaintenanceTicket struct {
	ID            string           `json:"id"`
	VehicleID     string           `json:"vehicleId"`
	ReportedBy    string           `json:"reportedBy"`
	ReporterName  string           `json:"reporterName"`
	Issue         string           `json:"issue"`
	Status        lifecycle.Status `json:"status"`
	ScheduledDate string           `json:"scheduledDate,omitempty"`
	Cost          string           `json:"cost,omitempty"`
	Version       int              `json:"version"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type FuelLog struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicleId"`
	DriverID  string    `json:"driverId"`
	LogDate   string    `json:"logDate"`
	Liters    string    `json:"liters"`
	Cost      string    `json:"cost"`
	Odometer  int       `json:"odometer"`
	CreatedAt time.Time `json:"createdAt"`
}

var TripListSpec = listing.Spec{
	SubjectColumn: "driver_id",
	SearchColumns: []string{"driver_name", "destination", "purpose"},
	DateColumn:    "departure_time",
}

var TicketListSpec = listing.Spec{
	SubjectColumn: "reported_by",
	SearchColumns: []string{"reporter_name", "issue"},
	DateColumn:    "created_at",
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Vehicles

func (r *Repository) CreateVehicle(ctx context.Context, plate, model, vtype string) (*Vehicle, error) {
	const q = `
INSERT INTO vehicles (plate_number, model, vehicle_type)
VALUES ($1, $2, $3)
RETURNING id, plate_number, model, vehicle_type, created_at
`
	var v Vehicle
	err := r.db.QueryRow(ctx, q, plate, model, vtype).
		Scan(&v.ID, &v.PlateNumber, &v.Model, &v.VehicleType, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository) ListVehicles(ctx context.Context, page pagination.Params) ([]Vehicle, error) {
	q := `
SELECT id, plate_number, model, vehicle_type, created_at
FROM vehicles
ORDER BY plate_number ASC ` + page.SQL()

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.PlateNumber, &v.Model, &v.VehicleType, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteVehicle(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Trips

const tripCols = `
id, vehicle_id, driver_id, driver_name, destination, COALESCE(purpose, ''),
departure_time, arrival_time, odometer_start, odometer_end, status, version,
created_at, updated_at
`

func scanTrip(row pgx.Row) (*Trip, error) {
	var t Trip
	if err := row.Scan(
		&t.ID, &t.VehicleID, &t.DriverID, &t.DriverName, &t.Destination, &t.Purpose,
		&t.DepartureTime, &t.ArrivalTime, &t.OdometerStart, &t.OdometerEnd, &t.Status, &t.Version,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) CreateTrip(ctx context.Context, vehicleID, driverID, driverName, destination, purpose string, departure time.Time, odometerStart int) (*Trip, error) {
	const q = `
INSERT INTO trips (vehicle_id, driver_id, driver_name, destination, purpose, departure_time, odometer_start, status)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
RETURNING ` + tripCols
	return scanTrip(r.db.QueryRow(ctx, q,
		vehicleID, driverID, driverName, destination, purpose, departure, odometerStart, string(StatusInProgress)))
}

func (r *Repository) ListTrips(ctx context.Context, actor identity.Actor, f listing.Filter, page pagination.Params) ([]Trip, error) {
	where, args := listing.Build(actor, f, TripListSpec)
	q := `SELECT ` + tripCols + ` FROM trips ` + where + `
ORDER BY departure_time DESC ` + page.SQL()

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Repository) GetTrip(ctx context.Context, actor identity.Actor, id string) (*Trip, error) {
	const q = `SELECT ` + tripCols + ` FROM trips WHERE id = $1`
	t, err := scanTrip(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if actor.Role == identity.RoleDriver && t.DriverID != actor.SubjectID {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

// TripStore adapts trip rows to the transition runner.
type TripStore struct {
	Repo *Repository
}

func (s TripStore) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*transition.Row, error) {
	const q = `SELECT id, driver_id, status, version FROM trips WHERE id = $1 FOR UPDATE`
	var row transition.Row
	if err := tx.QueryRow(ctx, q, id).Scan(&row.ID, &row.SubjectID, &row.Status, &row.Version); err != nil {
		if err == pgx.ErrNoRows {
			return nil, lifecycle.Errorf(lifecycle.KindNotFound, "trip not found")
		}
		return nil, err
	}
	return &row, nil
}

func (s TripStore) ApplyStatus(ctx context.Context, tx pgx.Tx, id string, next lifecycle.Status, expectedVersion int, fields map[string]string) error {
	arrival, err := parseArrival(fields["arrivalTime"])
	if err != nil {
		return lifecycle.Errorf(lifecycle.KindMissingRequiredField, "arrivalTime must be a valid timestamp")
	}
	var odoEnd *int
	if v, ok := fields["odometerEnd"]; ok {
		n, _ := strconv.Atoi(v)
		odoEnd = &n
	}

	const q = `
UPDATE trips
SET status = $2,
    arrival_time = $4,
    odometer_end = COALESCE($5, odometer_end),
    version = version + 1,
    updated_at = NOW()
WHERE id = $1 AND version = $3
`
	tag, err := tx.Exec(ctx, q, id, string(next), expectedVersion, arrival, odoEnd)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lifecycle.Errorf(lifecycle.KindConcurrentModification, "the trip changed while you were updating it; please retry")
	}
	return nil
}

// Maintenance tickets

const ticketCols = `
id, vehicle_id, reported_by, reporter_name, issue, status,
COALESCE(scheduled_date::text, ''), COALESCE(cost::text, ''), version,
created_at, updated_at
`

func scanTicket(row pgx.Row) (*MaintenanceTicket, error) {
	var m MaintenanceTicket
	if err := row.Scan(
		&m.ID, &m.VehicleID, &m.ReportedBy, &m.ReporterName, &m.Issue, &m.Status,
		&m.ScheduledDate, &m.Cost, &m.Version,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) CreateTicket(ctx context.Context, vehicleID, reportedBy, reporterName, issue string) (*MaintenanceTicket, error) {
	const q = `
INSERT INTO maintenance_tickets (vehicle_id, reported_by, reporter_name, issue, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + ticketCols
	return scanTicket(r.db.QueryRow(ctx, q, vehicleID, reportedBy, reporterName, issue, string(StatusReported)))
}

func (r *Repository) ListTickets(ctx context.Context, actor identity.Actor, f listing.Filter, page pagination.Params) ([]MaintenanceTicket, error) {
	where, args := listing.Build(actor, f, TicketListSpec)
	q := `SELECT ` + ticketCols + ` FROM maintenance_tickets ` + where + `
ORDER BY created_at DESC ` + page.SQL()

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MaintenanceTicket
	for rows.Next() {
		m, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *Repository) GetTicket(ctx context.Context, actor identity.Actor, id string) (*MaintenanceTicket, error) {
	const q = `SELECT ` + ticketCols + ` FROM maintenance_tickets WHERE id = $1`
	m, err := scanTicket(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if actor.Role == identity.RoleDriver && m.ReportedBy != actor.SubjectID {
		return nil, pgx.ErrNoRows
	}
	return m, nil
}

// TicketStore adapts maintenance rows to the transition runner.
type TicketStore struct {
	Repo *Repository
}

func (s TicketStore) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*transition.Row, error) {
	const q = `SELECT id, reported_by, status, version FROM maintenance_tickets WHERE id = $1 FOR UPDATE`
	var row transition.Row
	if err := tx.QueryRow(ctx, q, id).Scan(&row.ID, &row.SubjectID, &row.Status, &row.Version); err != nil {
		if err == pgx.ErrNoRows {
			return nil, lifecycle.Errorf(lifecycle.KindNotFound, "maintenance ticket not found")
		}
		return nil, err
	}
	return &row, nil
}

func (s TicketStore) ApplyStatus(ctx context.Context, tx pgx.Tx, id string, next lifecycle.Status, expectedVersion int, fields map[string]string) error {
	const q = `
UPDATE maintenance_tickets
SET status = $2,
    scheduled_date = COALESCE($4::date, scheduled_date),
    cost = COALESCE($5::numeric, cost),
    version = version + 1,
    updated_at = NOW()
WHERE id = $1 AND version = $3
`
	tag, err := tx.Exec(ctx, q, id, string(next), expectedVersion,
		nullable(fields["scheduledDate"]), nullable(fields["cost"]))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lifecycle.Errorf(lifecycle.KindConcurrentModification, "the ticket changed while you were updating it; please retry")
	}
	return nil
}

// Fuel logs

func (r *Repository) CreateFuelLog(ctx context.Context, vehicleID, driverID, logDate, liters, cost string, odometer int) (*FuelLog, error) {
	const q = `
INSERT INTO fuel_logs (vehicle_id, driver_id, log_date, liters, cost, odometer)
VALUES ($1, $2, $3::date, $4::numeric, $5::numeric, $6)
RETURNING id, vehicle_id, driver_id, log_date::text, liters::text, cost::text, odometer, created_at
`
	var f FuelLog
	err := r.db.QueryRow(ctx, q, vehicleID, driverID, logDate, liters, cost, odometer).
		Scan(&f.ID, &f.VehicleID, &f.DriverID, &f.LogDate, &f.Liters, &f.Cost, &f.Odometer, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *Repository) ListFuelLogs(ctx context.Context, actor identity.Actor, page pagination.Params) ([]FuelLog, error) {
	q := `
SELECT id, vehicle_id, driver_id, log_date::text, liters::text, cost::text, odometer, created_at
FROM fuel_logs
`
	args := []any{}
	if actor.Role == identity.RoleDriver {
		q += `WHERE driver_id = $1
`
		args = append(args, actor.SubjectID)
	}
	q += `ORDER BY log_date DESC, created_at DESC ` + page.SQL()

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FuelLog
	for rows.Next() {
		var f FuelLog
		if err := rows.Scan(&f.ID, &f.VehicleID, &f.DriverID, &f.LogDate, &f.Liters, &f.Cost, &f.Odometer, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

