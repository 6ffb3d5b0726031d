// File: /services/reservation_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jeromeleyapps-bit/flotteLPD/backends"
	"github.com/jeromeleyapps-bit/flotteLPD/models"
)

// ReservationService carries the reservation lifecycle on top of the backend
// adapter: availability checks over the requested window, creation with the
// notification email, and the confirm, cancel and complete transitions with
// their vehicle status side effects.
type ReservationService struct {
	backend       backends.Adapter
	notifications *NotificationService
}

func NewReservationService(backend backends.Adapter, notifications *NotificationService) *ReservationService {
	return &ReservationService{
		backend:       backend,
		notifications: notifications,
	}
}

// IsVehicleAvailable reports whether no blocking reservation overlaps the
// requested window. Both boundary dates count as occupied.
func (rs *ReservationService) IsVehicleAvailable(ctx context.Context, vehicleID string, start, end time.Time) (bool, error) {
	views, err := rs.backend.GetReservations(ctx, backends.ReservationFilter{})
	if err != nil {
		return false, err
	}

	reservations := make([]models.Reservation, 0, len(views))
	for _, view := range views {
		reservations = append(reservations, view.Reservation)
	}
	return backends.VehicleAvailableIn(reservations, vehicleID, start, end), nil
}

// Create rejects a window already taken by a blocking reservation, then
// delegates to the backend, which enforces the vehicle status rule. The
// confirmation email is sent in the background.
func (rs *ReservationService) Create(ctx context.Context, input backends.CreateReservationInput) (*models.ReservationWithRelations, error) {
	available, err := rs.IsVehicleAvailable(ctx, input.VehicleID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, backends.ErrVehicleNotAvailable
	}

	reservation, err := rs.backend.CreateReservation(ctx, input)
	if err != nil {
		return nil, err
	}

	if rs.notifications != nil && reservation.Profiles != nil {
		profile := *reservation.Profiles
		vehicleLabel := models.VehicleUnknown
		if reservation.Vehicles != nil {
			vehicleLabel = fmt.Sprintf("%s %s (%s)", reservation.Vehicles.Brand, reservation.Vehicles.Model, reservation.Vehicles.PlateNumber)
		}
		start, end := reservation.StartDate, reservation.EndDate
		go func() {
			if err := rs.notifications.SendReservationCreated(profile.Email, profile.FullName, vehicleLabel, start, end); err != nil {
				log.Printf("reservation notification: %v", err)
			}
		}()
	}

	return reservation, nil
}

// Confirm moves the reservation to confirmed and its vehicle to in_use.
func (rs *ReservationService) Confirm(ctx context.Context, id string) (*models.ReservationWithRelations, error) {
	return rs.transition(ctx, id, models.ReservationStatusConfirmed, models.VehicleStatusInUse)
}

// Cancel moves the reservation to cancelled and releases its vehicle.
func (rs *ReservationService) Cancel(ctx context.Context, id string) (*models.ReservationWithRelations, error) {
	return rs.transition(ctx, id, models.ReservationStatusCancelled, models.VehicleStatusAvailable)
}

// Complete moves the reservation to completed and releases its vehicle.
func (rs *ReservationService) Complete(ctx context.Context, id string) (*models.ReservationWithRelations, error) {
	return rs.transition(ctx, id, models.ReservationStatusCompleted, models.VehicleStatusAvailable)
}

func (rs *ReservationService) transition(ctx context.Context, id, reservationStatus, vehicleStatus string) (*models.ReservationWithRelations, error) {
	status := reservationStatus
	reservation, err := rs.backend.UpdateReservation(ctx, id, backends.UpdateReservationInput{Status: &status})
	if err != nil {
		return nil, err
	}

	newVehicleStatus := vehicleStatus
	if _, err := rs.backend.UpdateVehicle(ctx, reservation.VehicleID, backends.UpdateVehicleInput{Status: &newVehicleStatus}); err != nil {
		// The reservation transition already happened; the vehicle will be
		// picked up by the status reconcile job.
		log.Printf("reservation %s: update vehicle %s status: %v", id, reservation.VehicleID, err)
	}

	return reservation, nil
}
