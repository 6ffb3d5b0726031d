// File: /jobs/status_reconcile_job.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jeromeleyapps-bit/flotteLPD/backends"
	"github.com/jeromeleyapps-bit/flotteLPD/models"
)

// StatusReconcileJob periodically releases vehicles left in a blocking status
// with no blocking reservation or upcoming trip behind it. The document
// backend needs this because its reservation creation writes the vehicle and
// the reservation in two steps.
type StatusReconcileJob struct {
	backend backends.Adapter
	ticker  *time.Ticker
	done    chan bool
}

// NewStatusReconcileJob creates a new status reconcile job
func NewStatusReconcileJob(backend backends.Adapter, interval time.Duration) *StatusReconcileJob {
	return &StatusReconcileJob{
		backend: backend,
		ticker:  time.NewTicker(interval),
		done:    make(chan bool),
	}
}

// Start begins the reconcile job
func (j *StatusReconcileJob) Start() {
	fmt.Println("Vehicle status reconcile job started")

	go func() {
		// Run immediately on start
		j.reconcile()

		// Then run on schedule
		for {
			select {
			case <-j.ticker.C:
				j.reconcile()
			case <-j.done:
				fmt.Println("Vehicle status reconcile job stopped")
				return
			}
		}
	}()
}

// Stop stops the reconcile job
func (j *StatusReconcileJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

// reconcile performs the actual pass
func (j *StatusReconcileJob) reconcile() {
	ctx := context.Background()

	vehicles, err := j.backend.GetVehicles(ctx, backends.VehicleFilter{})
	if err != nil {
		fmt.Printf("Error during status reconcile: %v\n", err)
		return
	}
	reservations, err := j.backend.GetReservations(ctx, backends.ReservationFilter{})
	if err != nil {
		fmt.Printf("Error during status reconcile: %v\n", err)
		return
	}
	trips, err := j.backend.GetTrips(ctx, backends.TripFilter{})
	if err != nil {
		fmt.Printf("Error during status reconcile: %v\n", err)
		return
	}

	released := 0
	for _, vehicle := range vehicles {
		switch vehicle.Status {
		case models.VehicleStatusReserved:
			if hasBlockingReservation(reservations, vehicle.ID) {
				continue
			}
		case models.VehicleStatusReserve:
			if hasUpcomingTrip(trips, vehicle.ID) {
				continue
			}
		default:
			continue
		}

		status := models.VehicleStatusAvailable
		if _, err := j.backend.UpdateVehicle(ctx, vehicle.ID, backends.UpdateVehicleInput{Status: &status}); err != nil {
			fmt.Printf("Error releasing vehicle %s: %v\n", vehicle.ID, err)
			continue
		}
		released++
	}

	if released > 0 {
		fmt.Printf("Status reconcile released %d vehicle(s)\n", released)
	}
}

func hasBlockingReservation(reservations []models.ReservationWithRelations, vehicleID string) bool {
	for _, reservation := range reservations {
		if reservation.VehicleID != vehicleID {
			continue
		}
		for _, status := range models.ReservationBlockingStatuses {
			if reservation.Status == status {
				return true
			}
		}
	}
	return false
}

func hasUpcomingTrip(trips []models.TripWithVehicle, vehicleID string) bool {
	now := time.Now()
	for _, trip := range trips {
		if trip.VehiculeID == vehicleID && trip.DateHeureDepart.After(now) {
			return true
		}
	}
	return false
}
