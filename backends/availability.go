// File: /backends/availability.go
package backends

import (
	"time"

	"github.com/jeromeleyapps-bit/flotteLPD/models"
)

// windowsOverlap reports whether [requestStart, requestEnd] intersects
// [reservedStart, reservedEnd]. Boundary dates count as overlapping.
func windowsOverlap(requestStart, requestEnd, reservedStart, reservedEnd time.Time) bool {
	if requestStart.After(reservedEnd) {
		return false
	}
	if requestEnd.Before(reservedStart) {
		return false
	}
	return true
}

// reservationBlocks reports whether an existing reservation makes the vehicle
// unavailable for the requested window. Only pending, confirmed and
// in_progress reservations block; a cancelled or completed reservation never
// does.
func reservationBlocks(reservation models.Reservation, vehicleID string, start, end time.Time) bool {
	if reservation.VehicleID != vehicleID {
		return false
	}
	blocking := false
	for _, status := range models.ReservationBlockingStatuses {
		if reservation.Status == status {
			blocking = true
			break
		}
	}
	if !blocking {
		return false
	}
	return windowsOverlap(start, end, reservation.StartDate, reservation.EndDate)
}

// VehicleAvailableIn reports whether no reservation in the given set blocks
// the vehicle for the requested window. Backends and services share this one
// check; none reimplements the overlap rule.
func VehicleAvailableIn(reservations []models.Reservation, vehicleID string, start, end time.Time) bool {
	for _, reservation := range reservations {
		if reservationBlocks(reservation, vehicleID, start, end) {
			return false
		}
	}
	return true
}
