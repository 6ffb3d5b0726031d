// File: /backends/adapter.go
package backends

import (
	"context"
	"time"

	"github.com/jeromeleyapps-bit/flotteLPD/models"
)

// Adapter is the contract every storage backend satisfies. Callers are
// backend-agnostic: all read operations return the same denormalized shapes
// and all list operations apply the same ordering no matter which backend
// serves them.
//
// Not-found policy: GetSession and GetUser return (nil, nil) when no session
// exists or it has expired. Mutations on a missing entity return the typed
// not-found error for that entity. List operations never treat empty as an
// error.
type Adapter interface {
	// Auth
	SignIn(ctx context.Context, email, password string) (*models.AuthUser, error)
	SignUp(ctx context.Context, email, password string, data SignUpData) (*models.AuthUser, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*models.Session, error)
	GetUser(ctx context.Context) (*models.AuthUser, error)

	// Vehicles
	GetVehicles(ctx context.Context, filter VehicleFilter) ([]models.VehicleWithDepartment, error)
	CreateVehicle(ctx context.Context, input CreateVehicleInput) (*models.VehicleWithDepartment, error)
	UpdateVehicle(ctx context.Context, id string, input UpdateVehicleInput) (*models.VehicleWithDepartment, error)
	DeleteVehicle(ctx context.Context, id string) error

	// Reservations. CreateReservation fails with ErrVehicleNotAvailable and
	// performs no writes unless the vehicle status is "available"; on success
	// the vehicle has been moved to "reserved".
	GetReservations(ctx context.Context, filter ReservationFilter) ([]models.ReservationWithRelations, error)
	CreateReservation(ctx context.Context, input CreateReservationInput) (*models.ReservationWithRelations, error)
	UpdateReservation(ctx context.Context, id string, input UpdateReservationInput) (*models.ReservationWithRelations, error)

	// Trips. CreateTrip moves the vehicle to "reserve" on success.
	GetTrips(ctx context.Context, filter TripFilter) ([]models.TripWithVehicle, error)
	CreateTrip(ctx context.Context, input CreateTripInput) (*models.TripWithVehicle, error)
	UpdateTrip(ctx context.Context, id string, input UpdateTripInput) (*models.TripWithVehicle, error)

	// Maintenances (read-only)
	GetMaintenances(ctx context.Context, filter MaintenanceFilter) ([]models.MaintenanceWithVehicle, error)

	// Departments
	GetDepartments(ctx context.Context) ([]models.Department, error)

	// Profile
	UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*models.Profile, error)
}

// RealtimeAdapter is the optional change-event capability. The local storage
// backend does not provide it; callers type-assert.
type RealtimeAdapter interface {
	SubscribeToVehicles(callback func(ChangeEvent)) (UnsubscribeFunc, error)
	SubscribeToReservations(callback func(ChangeEvent)) (UnsubscribeFunc, error)
	SubscribeToTrips(callback func(ChangeEvent)) (UnsubscribeFunc, error)
}

// SignUpData carries the profile fields collected at registration.
type SignUpData struct {
	FullName string
}

type VehicleFilter struct {
	DepartmentID string
}

type ReservationFilter struct {
	UserID string
}

type TripFilter struct {
	// UserID filters on the trip's conducteur_id.
	UserID string
}

type MaintenanceFilter struct {
	VehicleID string
}

type CreateVehicleInput struct {
	PlateNumber  string
	Brand        string
	Model        string
	Year         int
	Type         string
	FuelType     string
	DepartmentID *string
}

// UpdateVehicleInput applies a partial update; nil fields are left unchanged.
type UpdateVehicleInput struct {
	PlateNumber  *string
	Brand        *string
	Model        *string
	Year         *int
	Type         *string
	FuelType     *string
	Status       *string
	DepartmentID *string
}

type CreateReservationInput struct {
	VehicleID string
	UserID    string
	StartDate time.Time
	EndDate   time.Time
}

type UpdateReservationInput struct {
	Status    *string
	StartDate *time.Time
	EndDate   *time.Time
}

type CreateTripInput struct {
	VehiculeID      string
	ConducteurID    string
	DateHeureDepart time.Time
}

type UpdateTripInput struct {
	DateHeureDepart *time.Time
}

type UpdateProfileInput struct {
	FullName     *string
	DepartmentID *string
}
