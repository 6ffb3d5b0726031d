// File: /backends/localstore.go
package backends

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jeromeleyapps-bit/flotteLPD/models"
)

// LocalStorage keeps every entity in one JSON blob on disk plus a separate
// session file, mirroring the browser-local deployment mode.
//
// This backend is a single-user, single-process design: every operation reads
// the whole blob, mutates it in memory and rewrites it whole under one mutex.
// Do not point two processes at the same data directory.
type LocalStorage struct {
	dataPath    string
	sessionPath string

	mu  sync.Mutex
	seq uint64
}

var _ Adapter = (*LocalStorage)(nil)

const (
	localDataFile    = "flotte-lpd-data.json"
	localSessionFile = "flotte-lpd-session.json"
	sessionTTL       = 7 * 24 * time.Hour
)

// localData is the persisted blob layout. Field order and key names are the
// storage format; do not rename.
type localData struct {
	Users        []models.User        `json:"users"`
	Profiles     []models.Profile     `json:"profiles"`
	Vehicles     []models.Vehicle     `json:"vehicles"`
	Reservations []models.Reservation `json:"reservations"`
	Trips        []models.Trip        `json:"trips"`
	Maintenances []models.Maintenance `json:"maintenances"`
	Departments  []models.Department  `json:"departments"`
}

// NewLocalStorage opens (or initializes) the data directory. First
// initialization seeds the six departments.
func NewLocalStorage(dataDir string) (*LocalStorage, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("local storage: %w: data directory", ErrMissingConfiguration)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: create data dir: %w", err)
	}

	store := &LocalStorage{
		dataPath:    filepath.Join(dataDir, localDataFile),
		sessionPath: filepath.Join(dataDir, localSessionFile),
	}

	if _, err := os.Stat(store.dataPath); os.IsNotExist(err) {
		initial := localData{Departments: models.SeedDepartments()}
		if err := store.saveData(&initial); err != nil {
			return nil, fmt.Errorf("local storage: initialize: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("local storage: stat data file: %w", err)
	}

	return store, nil
}

func (s *LocalStorage) loadData() (*localData, error) {
	raw, err := os.ReadFile(s.dataPath)
	if err != nil {
		return nil, fmt.Errorf("local storage: read data: %w", err)
	}
	var data localData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("local storage: decode data: %w", err)
	}
	return &data, nil
}

func (s *LocalStorage) saveData(data *localData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("local storage: encode data: %w", err)
	}
	if err := os.WriteFile(s.dataPath, raw, 0o644); err != nil {
		return fmt.Errorf("local storage: write data: %w", err)
	}
	return nil
}

// newID builds a prefixed identifier. The atomic counter keeps rapid
// sequential creations from colliding on the millisecond timestamp.
func (s *LocalStorage) newID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixMilli(), atomic.AddUint64(&s.seq, 1))
}

// ========== Auth ==========

func (s *LocalStorage) SignIn(ctx context.Context, email, password string) (*models.AuthUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	var user *models.User
	for i := range data.Users {
		if data.Users[i].Email == email {
			user = &data.Users[i]
			break
		}
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.writeSession(user.ID, user.Email); err != nil {
		return nil, err
	}

	return s.resolveUser(data, models.SessionUser{ID: user.ID, Email: user.Email})
}

func (s *LocalStorage) SignUp(ctx context.Context, email, password string, signUp SignUpData) (*models.AuthUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	for i := range data.Users {
		if data.Users[i].Email == email {
			return nil, ErrEmailAlreadyUsed
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("local storage: hash password: %w", err)
	}

	now := time.Now()
	fullName := signUp.FullName
	if fullName == "" {
		fullName = email
	}

	user := models.User{
		ID:           s.newID("user"),
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

	data.Users = append(data.Users, user)
	data.Profiles = append(data.Profiles, profile)
	if err := s.saveData(data); err != nil {
		return nil, err
	}

	// Sign-up doubles as sign-in.
	if err := s.writeSession(user.ID, user.Email); err != nil {
		return nil, err
	}

	return s.resolveUser(data, models.SessionUser{ID: user.ID, Email: user.Email})
}

func (s *LocalStorage) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.sessionPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local storage: remove session: %w", err)
	}
	return nil
}

func (s *LocalStorage) GetSession(ctx context.Context) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readSession()
}

func (s *LocalStorage) GetUser(ctx context.Context) (*models.AuthUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.readSession()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}
	return s.resolveUser(data, session.User)
}

// writeSession stores the session envelope with a fresh 7-day expiry.
func (s *LocalStorage) writeSession(userID, email string) error {
	session := models.Session{
		User:    models.SessionUser{ID: userID, Email: email},
		Expires: time.Now().Add(sessionTTL).UnixMilli(),
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("local storage: encode session: %w", err)
	}
	if err := os.WriteFile(s.sessionPath, raw, 0o600); err != nil {
		return fmt.Errorf("local storage: write session: %w", err)
	}
	return nil
}

// readSession returns nil for an absent session and deletes an expired one.
func (s *LocalStorage) readSession() (*models.Session, error) {
	raw, err := os.ReadFile(s.sessionPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("local storage: read session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("local storage: decode session: %w", err)
	}
	if session.Expires < time.Now().UnixMilli() {
		if err := os.Remove(s.sessionPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("local storage: remove expired session: %w", err)
		}
		return nil, nil
	}
	return &session, nil
}

func (s *LocalStorage) resolveUser(data *localData, user models.SessionUser) (*models.AuthUser, error) {
	return resolveAuthUser(user, findProfile(data, user.ID), func(id string) (*models.Department, error) {
		return findDepartment(data, id), nil
	})
}

// ========== Vehicles ==========

func (s *LocalStorage) GetVehicles(ctx context.Context, filter VehicleFilter) ([]models.VehicleWithDepartment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	vehicles := make([]models.VehicleWithDepartment, 0, len(data.Vehicles))
	for _, vehicle := range data.Vehicles {
		if filter.DepartmentID != "" {
			if vehicle.DepartmentID == nil || *vehicle.DepartmentID != filter.DepartmentID {
				continue
			}
		}
		view, err := attachDepartment(vehicle, func(id string) (*models.Department, error) {
			return findDepartment(data, id), nil
		})
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, view)
	}

	sort.SliceStable(vehicles, func(i, j int) bool {
		if vehicles[i].Brand != vehicles[j].Brand {
			return vehicles[i].Brand < vehicles[j].Brand
		}
		return vehicles[i].Model < vehicles[j].Model
	})
	return vehicles, nil
}

func (s *LocalStorage) CreateVehicle(ctx context.Context, input CreateVehicleInput) (*models.VehicleWithDepartment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	vehicle := models.Vehicle{
		ID:           s.newID("vehicle"),
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

	data.Vehicles = append(data.Vehicles, vehicle)
	if err := s.saveData(data); err != nil {
		return nil, err
	}

	view, err := attachDepartment(vehicle, func(id string) (*models.Department, error) {
		return findDepartment(data, id), nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *LocalStorage) UpdateVehicle(ctx context.Context, id string, input UpdateVehicleInput) (*models.VehicleWithDepartment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	index := -1
	for i := range data.Vehicles {
		if data.Vehicles[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, ErrVehicleNotFound
	}

	vehicle := &data.Vehicles[index]
	applyVehicleUpdate(vehicle, input)
	vehicle.UpdatedAt = time.Now()

	if err := s.saveData(data); err != nil {
		return nil, err
	}

	view, err := attachDepartment(*vehicle, func(deptID string) (*models.Department, error) {
		return findDepartment(data, deptID), nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *LocalStorage) DeleteVehicle(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return err
	}

	kept := data.Vehicles[:0]
	found := false
	for _, vehicle := range data.Vehicles {
		if vehicle.ID == id {
			found = true
			continue
		}
		kept = append(kept, vehicle)
	}
	if !found {
		return ErrVehicleNotFound
	}
	data.Vehicles = kept
	return s.saveData(data)
}

// ========== Reservations ==========

func (s *LocalStorage) GetReservations(ctx context.Context, filter ReservationFilter) ([]models.ReservationWithRelations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	reservations := make([]models.ReservationWithRelations, 0, len(data.Reservations))
	for _, reservation := range data.Reservations {
		if filter.UserID != "" && reservation.UserID != filter.UserID {
			continue
		}
		view, err := s.reservationView(data, reservation)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, view)
	}

	sort.SliceStable(reservations, func(i, j int) bool {
		return reservations[i].CreatedAt.After(reservations[j].CreatedAt)
	})
	return reservations, nil
}

func (s *LocalStorage) CreateReservation(ctx context.Context, input CreateReservationInput) (*models.ReservationWithRelations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	vehicleIndex := -1
	for i := range data.Vehicles {
		if data.Vehicles[i].ID == input.VehicleID {
			vehicleIndex = i
			break
		}
	}
	if vehicleIndex == -1 {
		return nil, ErrVehicleNotFound
	}
	if data.Vehicles[vehicleIndex].Status != models.VehicleStatusAvailable {
		return nil, ErrVehicleNotAvailable
	}

	now := time.Now()
	reservation := models.Reservation{
		ID:        s.newID("reservation"),
		VehicleID: input.VehicleID,
		UserID:    input.UserID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Status:    models.ReservationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data.Reservations = append(data.Reservations, reservation)
	data.Vehicles[vehicleIndex].Status = models.VehicleStatusReserved
	data.Vehicles[vehicleIndex].UpdatedAt = now

	// Both writes land in the same blob rewrite, so they are atomic here.
	if err := s.saveData(data); err != nil {
		return nil, err
	}

	view, err := s.reservationView(data, reservation)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *LocalStorage) UpdateReservation(ctx context.Context, id string, input UpdateReservationInput) (*models.ReservationWithRelations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	index := -1
	for i := range data.Reservations {
		if data.Reservations[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, ErrReservationNotFound
	}

	reservation := &data.Reservations[index]
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

	if err := s.saveData(data); err != nil {
		return nil, err
	}

	view, err := s.reservationView(data, *reservation)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *LocalStorage) reservationView(data *localData, reservation models.Reservation) (models.ReservationWithRelations, error) {
	return attachReservationRelations(reservation,
		func(id string) (*models.Vehicle, error) { return findVehicle(data, id), nil },
		func(id string) (*models.Profile, error) { return findProfile(data, id), nil },
	)
}

// ========== Trips ==========

func (s *LocalStorage) GetTrips(ctx context.Context, filter TripFilter) ([]models.TripWithVehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	trips := make([]models.TripWithVehicle, 0, len(data.Trips))
	for _, trip := range data.Trips {
		if filter.UserID != "" && trip.ConducteurID != filter.UserID {
			continue
		}
		view, err := attachTripVehicle(trip, func(id string) (*models.Vehicle, error) {
			return findVehicle(data, id), nil
		})
		if err != nil {
			return nil, err
		}
		trips = append(trips, view)
	}

	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].DateHeureDepart.After(trips[j].DateHeureDepart)
	})
	return trips, nil
}

func (s *LocalStorage) CreateTrip(ctx context.Context, input CreateTripInput) (*models.TripWithVehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	vehicleIndex := -1
	for i := range data.Vehicles {
		if data.Vehicles[i].ID == input.VehiculeID {
			vehicleIndex = i
			break
		}
	}
	if vehicleIndex == -1 {
		return nil, ErrVehicleNotFound
	}

	now := time.Now()
	trip := models.Trip{
		ID:              s.newID("trip"),
		VehiculeID:      input.VehiculeID,
		ConducteurID:    input.ConducteurID,
		DateHeureDepart: input.DateHeureDepart,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	data.Trips = append(data.Trips, trip)
	data.Vehicles[vehicleIndex].Status = models.VehicleStatusReserve
	data.Vehicles[vehicleIndex].UpdatedAt = now

	if err := s.saveData(data); err != nil {
		return nil, err
	}

	view, err := attachTripVehicle(trip, func(id string) (*models.Vehicle, error) {
		return findVehicle(data, id), nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *LocalStorage) UpdateTrip(ctx context.Context, id string, input UpdateTripInput) (*models.TripWithVehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	index := -1
	for i := range data.Trips {
		if data.Trips[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, ErrTripNotFound
	}

	trip := &data.Trips[index]
	if input.DateHeureDepart != nil {
		trip.DateHeureDepart = *input.DateHeureDepart
	}
	trip.UpdatedAt = time.Now()

	if err := s.saveData(data); err != nil {
		return nil, err
	}

	view, err := attachTripVehicle(*trip, func(vehicleID string) (*models.Vehicle, error) {
		return findVehicle(data, vehicleID), nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ========== Maintenances ==========

func (s *LocalStorage) GetMaintenances(ctx context.Context, filter MaintenanceFilter) ([]models.MaintenanceWithVehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	maintenances := make([]models.MaintenanceWithVehicle, 0, len(data.Maintenances))
	for _, maintenance := range data.Maintenances {
		if filter.VehicleID != "" && maintenance.VehicleID != filter.VehicleID {
			continue
		}
		view, err := attachMaintenanceVehicle(maintenance, func(id string) (*models.Vehicle, error) {
			return findVehicle(data, id), nil
		})
		if err != nil {
			return nil, err
		}
		maintenances = append(maintenances, view)
	}

	sort.SliceStable(maintenances, func(i, j int) bool {
		return maintenances[i].DatePrevue.Before(maintenances[j].DatePrevue)
	})
	return maintenances, nil
}

// ========== Departments ==========

func (s *LocalStorage) GetDepartments(ctx context.Context) ([]models.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	departments := make([]models.Department, len(data.Departments))
	copy(departments, data.Departments)
	sort.SliceStable(departments, func(i, j int) bool {
		return departments[i].Name < departments[j].Name
	})
	return departments, nil
}

// ========== Profile ==========

func (s *LocalStorage) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadData()
	if err != nil {
		return nil, err
	}

	index := -1
	for i := range data.Profiles {
		if data.Profiles[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, ErrProfileNotFound
	}

	profile := &data.Profiles[index]
	if input.FullName != nil {
		profile.FullName = *input.FullName
	}
	if input.DepartmentID != nil {
		departmentID := *input.DepartmentID
		profile.DepartmentID = &departmentID
	}
	profile.UpdatedAt = time.Now()

	if err := s.saveData(data); err != nil {
		return nil, err
	}

	result := *profile
	return &result, nil
}

// ========== lookups ==========

func findDepartment(data *localData, id string) *models.Department {
	for i := range data.Departments {
		if data.Departments[i].ID == id {
			return &data.Departments[i]
		}
	}
	return nil
}

func findVehicle(data *localData, id string) *models.Vehicle {
	for i := range data.Vehicles {
		if data.Vehicles[i].ID == id {
			return &data.Vehicles[i]
		}
	}
	return nil
}

func findProfile(data *localData, id string) *models.Profile {
	for i := range data.Profiles {
		if data.Profiles[i].ID == id {
			return &data.Profiles[i]
		}
	}
	return nil
}

func applyVehicleUpdate(vehicle *models.Vehicle, input UpdateVehicleInput) {
	if input.PlateNumber != nil {
		vehicle.PlateNumber = *input.PlateNumber
	}
	if input.Brand != nil {
		vehicle.Brand = *input.Brand
	}
	if input.Model != nil {
		vehicle.Model = *input.Model
	}
	if input.Year != nil {
		vehicle.Year = *input.Year
	}
	if input.Type != nil {
		vehicle.Type = *input.Type
	}
	if input.FuelType != nil {
		vehicle.FuelType = *input.FuelType
	}
	if input.Status != nil {
		vehicle.Status = *input.Status
	}
	if input.DepartmentID != nil {
		departmentID := *input.DepartmentID
		vehicle.DepartmentID = &departmentID
	}
}
