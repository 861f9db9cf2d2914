package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"barangayops/pkg/config"
	"barangayops/pkg/db"
)

// Seeds a handful of demo rows so the API has something to list after a
// fresh migrate. Safe to run more than once; inserts are plain appends.
func main() {
	var (
		residentID = flag.String("resident", "res-1001", "resident id for the demo health records")
		driverID   = flag.String("driver", "drv-2001", "driver id for the demo fleet records")
	)
	flag.Parse()

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open failed: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `
INSERT INTO appointments (resident_id, resident_name, scheduled_date, scheduled_time, purpose, status)
VALUES ($1, 'Maria Santos', CURRENT_DATE + 1, '09:30', 'General checkup', 'Scheduled')
`, *residentID)
	if err != nil {
		fail("appointment", err)
	}

	_, err = pool.Exec(ctx, `
INSERT INTO assistance_requests (resident_id, resident_name, assistance_type, priority, description, estimated_amount, status)
VALUES ($1, 'Maria Santos', 'Medicine', 'Urgent', 'Maintenance medication for hypertension', 1500.00, 'Pending')
`, *residentID)
	if err != nil {
		fail("assistance request", err)
	}

	var vehicleID string
	err = pool.QueryRow(ctx, `
INSERT INTO vehicles (plate_number, model, vehicle_type)
VALUES ('SBR-' || to_char(NOW(), 'SSMS'), 'Toyota Hiace', 'Ambulance')
RETURNING id
`).Scan(&vehicleID)
	if err != nil {
		fail("vehicle", err)
	}

	_, err = pool.Exec(ctx, `
INSERT INTO trips (vehicle_id, driver_id, driver_name, destination, purpose, departure_time, odometer_start, status)
VALUES ($1, $2, 'Jun Reyes', 'Provincial Hospital', 'Patient transport', NOW(), 120000, 'InProgress')
`, vehicleID, *driverID)
	if err != nil {
		fail("trip", err)
	}

	fmt.Println("seeded demo rows")
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "seed %s failed: %v\n", what, err)
	os.Exit(1)
}
