// File: /models/types.go
package models

// Vehicle statuses. "reserved" is set by reservation creation, "reserve" by trip
// creation; both block new reservations.
const (
	VehicleStatusAvailable   = "available"
	VehicleStatusReserved    = "reserved"
	VehicleStatusReserve     = "reserve"
	VehicleStatusInUse       = "in_use"
	VehicleStatusMaintenance = "maintenance"
)

// Reservation statuses.
const (
	ReservationStatusPending    = "pending"
	ReservationStatusConfirmed  = "confirmed"
	ReservationStatusInProgress = "in_progress"
	ReservationStatusCancelled  = "cancelled"
	ReservationStatusCompleted  = "completed"
)

// Profile roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ReservationBlockingStatuses are the reservation statuses that keep a vehicle
// unavailable for an overlapping time window.
var ReservationBlockingStatuses = []string{
	ReservationStatusPending,
	ReservationStatusConfirmed,
	ReservationStatusInProgress,
}

// VehicleBlockingStatuses are the vehicle statuses that should be released by a
// reconcile pass when no blocking reservation or trip remains.
var VehicleBlockingStatuses = []string{
	VehicleStatusReserved,
	VehicleStatusReserve,
}

// Placeholders used by the denormalized views when a join target is missing.
const (
	DepartmentUnassigned = "Non assigné"
	VehicleUnknown       = "Véhicule inconnu"
)
