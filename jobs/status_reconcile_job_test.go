// File: /jobs/status_reconcile_job_test.go
package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/jeromeleyapps-bit/flotteLPD/backends"
	"github.com/jeromeleyapps-bit/flotteLPD/models"
)

func setStatus(t *testing.T, backend backends.Adapter, vehicleID, status string) {
	t.Helper()
	if _, err := backend.UpdateVehicle(context.Background(), vehicleID, backends.UpdateVehicleInput{Status: &status}); err != nil {
		t.Fatalf("UpdateVehicle: %v", err)
	}
}

func getStatus(t *testing.T, backend backends.Adapter, vehicleID string) string {
	t.Helper()
	vehicles, err := backend.GetVehicles(context.Background(), backends.VehicleFilter{})
	if err != nil {
		t.Fatalf("GetVehicles: %v", err)
	}
	for _, v := range vehicles {
		if v.ID == vehicleID {
			return v.Status
		}
	}
	t.Fatalf("vehicle %s not found", vehicleID)
	return ""
}

func TestReconcileReleasesOrphanedStatuses(t *testing.T) {
	backend, err := backends.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	ctx := context.Background()

	user, err := backend.SignUp(ctx, "jean@lpd.fr", "Secret123", backends.SignUpData{})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	orphaned, _ := backend.CreateVehicle(ctx, backends.CreateVehicleInput{PlateNumber: "AA-111-AA", Brand: "Renault", Model: "Clio"})
	reserved, _ := backend.CreateVehicle(ctx, backends.CreateVehicleInput{PlateNumber: "BB-222-BB", Brand: "Citroen", Model: "C3"})
	tripBound, _ := backend.CreateVehicle(ctx, backends.CreateVehicleInput{PlateNumber: "CC-333-CC", Brand: "Peugeot", Model: "208"})
	inUse, _ := backend.CreateVehicle(ctx, backends.CreateVehicleInput{PlateNumber: "DD-444-DD", Brand: "Fiat", Model: "500"})

	// A vehicle stuck in "reserved" with no reservation behind it.
	setStatus(t, backend, orphaned.ID, models.VehicleStatusReserved)

	// A reservation keeps this one blocked.
	if _, err := backend.CreateReservation(ctx, backends.CreateReservationInput{
		VehicleID: reserved.ID,
		UserID:    user.ID,
		StartDate: time.Now(),
		EndDate:   time.Now().Add(48 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	// An upcoming trip keeps this one blocked.
	if _, err := backend.CreateTrip(ctx, backends.CreateTripInput{
		VehiculeID:      tripBound.ID,
		ConducteurID:    user.ID,
		DateHeureDepart: time.Now().Add(24 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}

	// Non-blocking statuses are never touched.
	setStatus(t, backend, inUse.ID, models.VehicleStatusInUse)

	job := NewStatusReconcileJob(backend, time.Hour)
	job.reconcile()

	if got := getStatus(t, backend, orphaned.ID); got != models.VehicleStatusAvailable {
		t.Errorf("orphaned vehicle = %q, want available", got)
	}
	if got := getStatus(t, backend, reserved.ID); got != models.VehicleStatusReserved {
		t.Errorf("vehicle with live reservation = %q, want reserved", got)
	}
	if got := getStatus(t, backend, tripBound.ID); got != models.VehicleStatusReserve {
		t.Errorf("vehicle with upcoming trip = %q, want reserve", got)
	}
	if got := getStatus(t, backend, inUse.ID); got != models.VehicleStatusInUse {
		t.Errorf("in_use vehicle = %q, want in_use", got)
	}
}
