// File: /backends/denormalize.go
package backends

import (
	"github.com/jeromeleyapps-bit/flotteLPD/models"
)

// The attach* helpers produce the denormalized view shapes from a minimal
// fetch-by-id capability. All three backends call the same helpers with their
// own lookup, which is what keeps the shapes identical across backends. A
// lookup returns (nil, nil) when the id resolves to nothing; lookup errors
// propagate to the caller unchanged.

type DepartmentLookup func(id string) (*models.Department, error)
type VehicleLookup func(id string) (*models.Vehicle, error)
type ProfileLookup func(id string) (*models.Profile, error)

// attachDepartment builds the vehicle view, falling back to the "Non assigné"
// placeholder when the vehicle has no department or the reference is dangling.
func attachDepartment(vehicle models.Vehicle, lookup DepartmentLookup) (models.VehicleWithDepartment, error) {
	view := models.VehicleWithDepartment{
		Vehicle:        vehicle,
		DepartmentName: models.DepartmentUnassigned,
		DepartmentCode: "",
	}
	if vehicle.DepartmentID == nil {
		return view, nil
	}
	department, err := lookup(*vehicle.DepartmentID)
	if err != nil {
		return view, err
	}
	if department != nil {
		view.DepartmentName = department.Name
		view.DepartmentCode = department.Code
	}
	return view, nil
}

// attachReservationRelations embeds the vehicle and profile summaries. A
// dangling reference leaves the corresponding sub-object nil rather than
// failing the read.
func attachReservationRelations(reservation models.Reservation, vehicles VehicleLookup, profiles ProfileLookup) (models.ReservationWithRelations, error) {
	view := models.ReservationWithRelations{Reservation: reservation}

	vehicle, err := vehicles(reservation.VehicleID)
	if err != nil {
		return view, err
	}
	if vehicle != nil {
		view.Vehicles = &models.VehicleSummary{
			PlateNumber: vehicle.PlateNumber,
			Brand:       vehicle.Brand,
			Model:       vehicle.Model,
			Type:        vehicle.Type,
		}
	}

	profile, err := profiles(reservation.UserID)
	if err != nil {
		return view, err
	}
	if profile != nil {
		view.Profiles = &models.ProfileSummary{
			FullName: profile.FullName,
			Email:    profile.Email,
		}
	}
	return view, nil
}

// attachTripVehicle fills vehicle_nom with "brand model", or the unknown
// placeholder when the vehicle no longer exists.
func attachTripVehicle(trip models.Trip, vehicles VehicleLookup) (models.TripWithVehicle, error) {
	view := models.TripWithVehicle{Trip: trip, VehicleNom: models.VehicleUnknown}
	vehicle, err := vehicles(trip.VehiculeID)
	if err != nil {
		return view, err
	}
	if vehicle != nil {
		view.VehicleNom = vehicle.Brand + " " + vehicle.Model
	}
	return view, nil
}

// attachMaintenanceVehicle fills vehicle_name the same way.
func attachMaintenanceVehicle(maintenance models.Maintenance, vehicles VehicleLookup) (models.MaintenanceWithVehicle, error) {
	view := models.MaintenanceWithVehicle{Maintenance: maintenance, VehicleName: models.VehicleUnknown}
	vehicle, err := vehicles(maintenance.VehicleID)
	if err != nil {
		return view, err
	}
	if vehicle != nil {
		view.VehicleName = vehicle.Brand + " " + vehicle.Model
	}
	return view, nil
}

// resolveAuthUser merges a session identity with its profile and department
// name. Profile may be nil (identity without profile); the result then carries
// only the session fields.
func resolveAuthUser(user models.SessionUser, profile *models.Profile, departments DepartmentLookup) (*models.AuthUser, error) {
	resolved := &models.AuthUser{
		ID:    user.ID,
		Email: user.Email,
	}
	if profile == nil {
		return resolved, nil
	}
	resolved.FullName = profile.FullName
	resolved.Role = profile.Role
	resolved.DepartmentID = profile.DepartmentID
	if profile.DepartmentID != nil {
		department, err := departments(*profile.DepartmentID)
		if err != nil {
			return resolved, err
		}
		if department != nil {
			name := department.Name
			resolved.DepartmentName = &name
		}
	}
	return resolved, nil
}
