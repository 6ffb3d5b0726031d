// File: /backends/sqlstore.go
package backends

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jeromeleyapps-bit/flotteLPD/config"
	"github.com/jeromeleyapps-bit/flotteLPD/database"
	"github.com/jeromeleyapps-bit/flotteLPD/models"
)

// MySQLBackend maps the adapter contract onto relational tables through gorm.
// Change events are published to an in-process hub after the write that
// produced them has been committed.
type MySQLBackend struct {
	db  *gorm.DB
	hub *eventHub

	sessionMu sync.Mutex
	session   *models.Session
}

var (
	_ Adapter         = (*MySQLBackend)(nil)
	_ RealtimeAdapter = (*MySQLBackend)(nil)
)

// NewMySQLBackend validates the connection parameters, connects, migrates and
// seeds the reference data. A missing DSN is a construction failure.
func NewMySQLBackend(cfg *config.Config) (*MySQLBackend, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("mysql backend: %w: DATABASE_URL", ErrMissingConfiguration)
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("mysql backend: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("mysql backend: %w", err)
	}
	if err := database.SeedDepartments(db); err != nil {
		return nil, fmt.Errorf("mysql backend: %w", err)
	}

	return &MySQLBackend{db: db, hub: newEventHub()}, nil
}

// ========== Auth ==========

func (b *MySQLBackend) SignIn(ctx context.Context, email, password string) (*models.AuthUser, error) {
	var user models.User
	if err := b.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	b.setSession(user.ID, user.Email)
	return b.resolveUser(ctx, models.SessionUser{ID: user.ID, Email: user.Email})
}

func (b *MySQLBackend) SignUp(ctx context.Context, email, password string, signUp SignUpData) (*models.AuthUser, error) {
	var existing models.User
	err := b.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailAlreadyUsed
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("mysql backend: hash password: %w", err)
	}

	now := time.Now()
	fullName := signUp.FullName
	if fullName == "" {
		fullName = email
	}
	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	profile := models.Profile{
		ID:        user.ID,
		FullName:  fullName,
		Email:     email,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Identity and profile land in one transaction.
	err = b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return nil, err
	}

	b.setSession(user.ID, user.Email)
	return b.resolveUser(ctx, models.SessionUser{ID: user.ID, Email: user.Email})
}

func (b *MySQLBackend) SignOut(ctx context.Context) error {
	b.sessionMu.Lock()
	defer b.sessionMu.Unlock()
	b.session = nil
	return nil
}

func (b *MySQLBackend) GetSession(ctx context.Context) (*models.Session, error) {
	b.sessionMu.Lock()
	defer b.sessionMu.Unlock()

	if b.session == nil {
		return nil, nil
	}
	if b.session.Expires < time.Now().UnixMilli() {
		b.session = nil
		return nil, nil
	}
	session := *b.session
	return &session, nil
}

func (b *MySQLBackend) GetUser(ctx context.Context) (*models.AuthUser, error) {
	session, err := b.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	return b.resolveUser(ctx, session.User)
}

func (b *MySQLBackend) setSession(userID, email string) {
	b.sessionMu.Lock()
	defer b.sessionMu.Unlock()
	b.session = &models.Session{
		User:    models.SessionUser{ID: userID, Email: email},
		Expires: time.Now().Add(sessionTTL).UnixMilli(),
	}
}

func (b *MySQLBackend) resolveUser(ctx context.Context, user models.SessionUser) (*models.AuthUser, error) {
	profile, err := b.profileLookup(ctx)(user.ID)
	if err != nil {
		return nil, err
	}
	return resolveAuthUser(user, profile, b.departmentLookup(ctx))
}

// ========== Vehicles ==========

func (b *MySQLBackend) GetVehicles(ctx context.Context, filter VehicleFilter) ([]models.VehicleWithDepartment, error) {
	query := b.db.WithContext(ctx).Model(&models.Vehicle{})
	if filter.DepartmentID != "" {
		query = query.Where("department_id = ?", filter.DepartmentID)
	}

	var vehicles []models.Vehicle
	if err := query.Order("brand, model").Find(&vehicles).Error; err != nil {
		return nil, err
	}

	lookup := b.departmentLookup(ctx)
	views := make([]models.VehicleWithDepartment, 0, len(vehicles))
	for _, vehicle := range vehicles {
		view, err := attachDepartment(vehicle, lookup)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (b *MySQLBackend) CreateVehicle(ctx context.Context, input CreateVehicleInput) (*models.VehicleWithDepartment, error) {
	now := time.Now()
	vehicle := models.Vehicle{
		ID:           uuid.New().String(),
		PlateNumber:  input.PlateNumber,
		Brand:        input.Brand,
		Model:        input.Model,
		Year:         input.Year,
		Type:         input.Type,
		FuelType:     input.FuelType,
		Status:       models.VehicleStatusAvailable,
		DepartmentID: input.DepartmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := b.db.WithContext(ctx).Create(&vehicle).Error; err != nil {
		return nil, err
	}

	b.hub.publish(ChangeEvent{Type: EventAdded, Table: TableVehicles, New: vehicle})

	view, err := attachDepartment(vehicle, b.departmentLookup(ctx))
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (b *MySQLBackend) UpdateVehicle(ctx context.Context, id string, input UpdateVehicleInput) (*models.VehicleWithDepartment, error) {
	var vehicle models.Vehicle
	if err := b.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	applyVehicleUpdate(&vehicle, input)
	vehicle.UpdatedAt = time.Now()
	if err := b.db.WithContext(ctx).Save(&vehicle).Error; err != nil {
		return nil, err
	}

	b.hub.publish(ChangeEvent{Type: EventModified, Table: TableVehicles, New: vehicle})

	view, err := attachDepartment(vehicle, b.departmentLookup(ctx))
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (b *MySQLBackend) DeleteVehicle(ctx context.Context, id string) error {
	var vehicle models.Vehicle
	if err := b.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVehicleNotFound
		}
		return err
	}
	if err := b.db.WithContext(ctx).Delete(&models.Vehicle{}, "id = ?", id).Error; err != nil {
		return err
	}

	b.hub.publish(ChangeEvent{Type: EventRemoved, Table: TableVehicles, Old: vehicle})
	return nil
}

// ========== Reservations ==========

func (b *MySQLBackend) GetReservations(ctx context.Context, filter ReservationFilter) ([]models.ReservationWithRelations, error) {
	query := b.db.WithContext(ctx).Model(&models.Reservation{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var reservations []models.Reservation
	if err := query.Order("created_at DESC").Find(&reservations).Error; err != nil {
		return nil, err
	}

	vehicles := b.vehicleLookup(ctx)
	profiles := b.profileLookup(ctx)
	views := make([]models.ReservationWithRelations, 0, len(reservations))
	for _, reservation := range reservations {
		view, err := attachReservationRelations(reservation, vehicles, profiles)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (b *MySQLBackend) CreateReservation(ctx context.Context, input CreateReservationInput) (*models.ReservationWithRelations, error) {
	now := time.Now()
	reservation := models.Reservation{
		ID:        uuid.New().String(),
		VehicleID: input.VehicleID,
		UserID:    input.UserID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Status:    models.ReservationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Both writes commit together. The conditional status update doubles as a
	// compare-and-swap: two racing creations cannot both pass it.
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vehicle models.Vehicle
		if err := tx.Where("id = ?", input.VehicleID).First(&vehicle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVehicleNotFound
			}
			return err
		}

		result := tx.Model(&models.Vehicle{}).
			Where("id = ? AND status = ?", input.VehicleID, models.VehicleStatusAvailable).
			Updates(map[string]interface{}{"status": models.VehicleStatusReserved, "updated_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVehicleNotAvailable
		}

		return tx.Create(&reservation).Error
	})
	if err != nil {
		return nil, err
	}

	b.hub.publish(ChangeEvent{Type: EventAdded, Table: TableReservations, New: reservation})

	view, err := attachReservationRelations(reservation, b.vehicleLookup(ctx), b.profileLookup(ctx))
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (b *MySQLBackend) UpdateReservation(ctx context.Context, id string, input UpdateReservationInput) (*models.ReservationWithRelations, error) {
	var reservation models.Reservation
	if err := b.db.WithContext(ctx).Where("id = ?", id).First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	if input.Status != nil {
		reservation.Status = *input.Status
	}
	if input.StartDate != nil {
		reservation.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		reservation.EndDate = *input.EndDate
	}
	reservation.UpdatedAt = time.Now()

	if err := b.db.WithContext(ctx).Save(&reservation).Error; err != nil {
		return nil, err
	}

	b.hub.publish(ChangeEvent{Type: EventModified, Table: TableReservations, New: reservation})

	view, err := attachReservationRelations(reservation, b.vehicleLookup(ctx), b.profileLookup(ctx))
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ========== Trips ==========

func (b *MySQLBackend) GetTrips(ctx context.Context, filter TripFilter) ([]models.TripWithVehicle, error) {
	query := b.db.WithContext(ctx).Model(&models.Trip{})
	if filter.UserID != "" {
		query = query.Where("conducteur_id = ?", filter.UserID)
	}

	var trips []models.Trip
	if err := query.Order("date_heure_depart DESC").Find(&trips).Error; err != nil {
		return nil, err
	}

	vehicles := b.vehicleLookup(ctx)
	views := make([]models.TripWithVehicle, 0, len(trips))
	for _, trip := range trips {
		view, err := attachTripVehicle(trip, vehicles)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (b *MySQLBackend) CreateTrip(ctx context.Context, input CreateTripInput) (*models.TripWithVehicle, error) {
	now := time.Now()
	trip := models.Trip{
		ID:              uuid.New().String(),
		VehiculeID:      input.VehiculeID,
		ConducteurID:    input.ConducteurID,
		DateHeureDepart: input.DateHeureDepart,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Vehicle{}).
			Where("id = ?", input.VehiculeID).
			Updates(map[string]interface{}{"status": models.VehicleStatusReserve, "updated_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVehicleNotFound
		}
		return tx.Create(&trip).Error
	})
	if err != nil {
		return nil, err
	}

	b.hub.publish(ChangeEvent{Type: EventAdded, Table: TableTrips, New: trip})

	view, err := attachTripVehicle(trip, b.vehicleLookup(ctx))
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (b *MySQLBackend) UpdateTrip(ctx context.Context, id string, input UpdateTripInput) (*models.TripWithVehicle, error) {
	var trip models.Trip
	if err := b.db.WithContext(ctx).Where("id = ?", id).First(&trip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	if input.DateHeureDepart != nil {
		trip.DateHeureDepart = *input.DateHeureDepart
	}
	trip.UpdatedAt = time.Now()

	if err := b.db.WithContext(ctx).Save(&trip).Error; err != nil {
		return nil, err
	}

	b.hub.publish(ChangeEvent{Type: EventModified, Table: TableTrips, New: trip})

	view, err := attachTripVehicle(trip, b.vehicleLookup(ctx))
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ========== Maintenances ==========

func (b *MySQLBackend) GetMaintenances(ctx context.Context, filter MaintenanceFilter) ([]models.MaintenanceWithVehicle, error) {
	query := b.db.WithContext(ctx).Model(&models.Maintenance{})
	if filter.VehicleID != "" {
		query = query.Where("vehicle_id = ?", filter.VehicleID)
	}

	var maintenances []models.Maintenance
	if err := query.Order("date_prevue ASC").Find(&maintenances).Error; err != nil {
		return nil, err
	}

	vehicles := b.vehicleLookup(ctx)
	views := make([]models.MaintenanceWithVehicle, 0, len(maintenances))
	for _, maintenance := range maintenances {
		view, err := attachMaintenanceVehicle(maintenance, vehicles)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// ========== Departments ==========

func (b *MySQLBackend) GetDepartments(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	if err := b.db.WithContext(ctx).Order("name").Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}

// ========== Profile ==========

func (b *MySQLBackend) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*models.Profile, error) {
	var profile models.Profile
	if err := b.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if input.FullName != nil {
		profile.FullName = *input.FullName
	}
	if input.DepartmentID != nil {
		departmentID := *input.DepartmentID
		profile.DepartmentID = &departmentID
	}
	profile.UpdatedAt = time.Now()

	if err := b.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ========== Realtime ==========

func (b *MySQLBackend) SubscribeToVehicles(callback func(ChangeEvent)) (UnsubscribeFunc, error) {
	return b.hub.subscribe(TableVehicles, callback), nil
}

func (b *MySQLBackend) SubscribeToReservations(callback func(ChangeEvent)) (UnsubscribeFunc, error) {
	return b.hub.subscribe(TableReservations, callback), nil
}

func (b *MySQLBackend) SubscribeToTrips(callback func(ChangeEvent)) (UnsubscribeFunc, error) {
	return b.hub.subscribe(TableTrips, callback), nil
}

// ========== lookups ==========

func (b *MySQLBackend) departmentLookup(ctx context.Context) DepartmentLookup {
	return func(id string) (*models.Department, error) {
		var department models.Department
		err := b.db.WithContext(ctx).Where("id = ?", id).First(&department).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &department, nil
	}
}

func (b *MySQLBackend) vehicleLookup(ctx context.Context) VehicleLookup {
	return func(id string) (*models.Vehicle, error) {
		var vehicle models.Vehicle
		err := b.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &vehicle, nil
	}
}

func (b *MySQLBackend) profileLookup(ctx context.Context) ProfileLookup {
	return func(id string) (*models.Profile, error) {
		var profile models.Profile
		err := b.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &profile, nil
	}
}
