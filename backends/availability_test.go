// File: /backends/availability_test.go
package backends

import (
	"testing"
	"time"

	"github.com/jeromeleyapps-bit/flotteLPD/models"
)

func date(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func TestWindowsOverlap(t *testing.T) {
	tests := []struct {
		name                       string
		requestStart, requestEnd   int
		reservedStart, reservedEnd int
		want                       bool
	}{
		{"inside", 12, 13, 10, 15, true},
		{"covering", 9, 16, 10, 15, true},
		{"before", 5, 9, 10, 15, false},
		{"after", 16, 18, 10, 15, false},
		{"touching start boundary", 8, 10, 10, 15, true},
		{"touching end boundary", 15, 18, 10, 15, true},
		{"same window", 10, 15, 10, 15, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := windowsOverlap(date(tt.requestStart), date(tt.requestEnd), date(tt.reservedStart), date(tt.reservedEnd))
			if got != tt.want {
				t.Errorf("windowsOverlap([%d,%d], [%d,%d]) = %v, want %v",
					tt.requestStart, tt.requestEnd, tt.reservedStart, tt.reservedEnd, got, tt.want)
			}
		})
	}
}

func TestVehicleAvailableIn(t *testing.T) {
	reservations := []models.Reservation{
		{ID: "r1", VehicleID: "v1", StartDate: date(10), EndDate: date(15), Status: models.ReservationStatusConfirmed},
		{ID: "r2", VehicleID: "v1", StartDate: date(20), EndDate: date(22), Status: models.ReservationStatusCancelled},
		{ID: "r3", VehicleID: "v2", StartDate: date(1), EndDate: date(28), Status: models.ReservationStatusPending},
	}

	tests := []struct {
		name       string
		vehicleID  string
		start, end int
		want       bool
	}{
		{"overlap with confirmed", "v1", 12, 13, false},
		{"free window after reservation", "v1", 16, 18, true},
		{"cancelled never blocks", "v1", 20, 22, true},
		{"other vehicle blocked by pending", "v2", 5, 6, false},
		{"unknown vehicle always free", "v3", 12, 13, true},
		{"boundary date counts as occupied", "v1", 15, 18, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VehicleAvailableIn(reservations, tt.vehicleID, date(tt.start), date(tt.end))
			if got != tt.want {
				t.Errorf("VehicleAvailableIn(%s, [%d,%d]) = %v, want %v", tt.vehicleID, tt.start, tt.end, got, tt.want)
			}
		})
	}
}
