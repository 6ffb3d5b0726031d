// File: /backends/localstore_test.go
package backends

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jeromeleyapps-bit/flotteLPD/models"
)

func newTestStore(t *testing.T) *LocalStorage {
	t.Helper()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	return store
}

func TestNewLocalStorageRequiresDataDir(t *testing.T) {
	_, err := NewLocalStorage("")
	if !errors.Is(err, ErrMissingConfiguration) {
		t.Errorf("err = %v, want ErrMissingConfiguration", err)
	}
}

func TestSignUpAndSignIn(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.SignUp(ctx, "jean@lpd.fr", "Secret123", SignUpData{FullName: "Jean Dupont"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if user.FullName != "Jean Dupont" || user.Role != models.RoleUser {
		t.Errorf("unexpected user after sign-up: %+v", user)
	}

	// Sign-up doubles as sign-in.
	session, err := store.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session == nil || session.User.Email != "jean@lpd.fr" {
		t.Fatalf("expected active session after sign-up, got %+v", session)
	}
	if session.Expires <= time.Now().UnixMilli() {
		t.Errorf("session expiry %d is not in the future", session.Expires)
	}

	if _, err := store.SignUp(ctx, "jean@lpd.fr", "Other123", SignUpData{}); !errors.Is(err, ErrEmailAlreadyUsed) {
		t.Errorf("duplicate sign-up err = %v, want ErrEmailAlreadyUsed", err)
	}

	if err := store.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	session, err = store.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession after sign-out: %v", err)
	}
	if session != nil {
		t.Errorf("expected nil session after sign-out, got %+v", session)
	}

	if _, err := store.SignIn(ctx, "jean@lpd.fr", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := store.SignIn(ctx, "nobody@lpd.fr", "Secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}

	signedIn, err := store.SignIn(ctx, "jean@lpd.fr", "Secret123")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if signedIn.ID != user.ID {
		t.Errorf("signed-in ID %q differs from registered ID %q", signedIn.ID, user.ID)
	}
}

func TestExpiredSessionIsDeleted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SignUp(ctx, "jean@lpd.fr", "Secret123", SignUpData{}); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	expired := models.Session{
		User:    models.SessionUser{ID: "u1", Email: "jean@lpd.fr"},
		Expires: time.Now().Add(-time.Hour).UnixMilli(),
	}
	raw, _ := json.Marshal(expired)
	if err := os.WriteFile(store.sessionPath, raw, 0o600); err != nil {
		t.Fatalf("write session: %v", err)
	}

	session, err := store.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session != nil {
		t.Fatalf("expected expired session to read as nil, got %+v", session)
	}
	if _, err := os.Stat(store.sessionPath); !os.IsNotExist(err) {
		t.Errorf("expired session file should be deleted, stat err = %v", err)
	}

	user, err := store.GetUser(ctx)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user without session, got %+v", user)
	}
}

func TestVehicleLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	departmentID := models.SeedDepartments()[0].ID
	vehicle, err := store.CreateVehicle(ctx, CreateVehicleInput{
		PlateNumber:  "AB-123-CD",
		Brand:        "Renault",
		Model:        "Clio",
		Year:         2022,
		Type:         "citadine",
		FuelType:     "essence",
		DepartmentID: &departmentID,
	})
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	if vehicle.Status != models.VehicleStatusAvailable {
		t.Errorf("new vehicle status = %q, want available", vehicle.Status)
	}
	if vehicle.DepartmentName != "Alpes-de-Haute-Provence" || vehicle.DepartmentCode != "04" {
		t.Errorf("department join = (%q, %q)", vehicle.DepartmentName, vehicle.DepartmentCode)
	}

	status := models.VehicleStatusMaintenance
	updated, err := store.UpdateVehicle(ctx, vehicle.ID, UpdateVehicleInput{Status: &status})
	if err != nil {
		t.Fatalf("UpdateVehicle: %v", err)
	}
	if updated.Status != models.VehicleStatusMaintenance {
		t.Errorf("updated status = %q", updated.Status)
	}
	if updated.PlateNumber != "AB-123-CD" {
		t.Errorf("partial update touched plate number: %q", updated.PlateNumber)
	}

	if _, err := store.UpdateVehicle(ctx, "missing", UpdateVehicleInput{}); !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("update missing err = %v, want ErrVehicleNotFound", err)
	}

	if err := store.DeleteVehicle(ctx, vehicle.ID); err != nil {
		t.Fatalf("DeleteVehicle: %v", err)
	}
	if err := store.DeleteVehicle(ctx, vehicle.ID); !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("second delete err = %v, want ErrVehicleNotFound", err)
	}

	vehicles, err := store.GetVehicles(ctx, VehicleFilter{})
	if err != nil {
		t.Fatalf("GetVehicles: %v", err)
	}
	if len(vehicles) != 0 {
		t.Errorf("expected empty fleet after delete, got %d", len(vehicles))
	}
}

func TestVehicleOrderingAndFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	departmentID := models.SeedDepartments()[4].ID // Var
	for _, v := range []struct{ brand, model, plate string }{
		{"Renault", "Clio", "AA-111-AA"},
		{"Citroen", "C3", "BB-222-BB"},
		{"Renault", "Captur", "CC-333-CC"},
	} {
		input := CreateVehicleInput{PlateNumber: v.plate, Brand: v.brand, Model: v.model}
		if v.brand == "Citroen" {
			input.DepartmentID = &departmentID
		}
		if _, err := store.CreateVehicle(ctx, input); err != nil {
			t.Fatalf("CreateVehicle %s: %v", v.plate, err)
		}
	}

	vehicles, err := store.GetVehicles(ctx, VehicleFilter{})
	if err != nil {
		t.Fatalf("GetVehicles: %v", err)
	}
	var got []string
	for _, v := range vehicles {
		got = append(got, v.Brand+" "+v.Model)
	}
	want := []string{"Citroen C3", "Renault Captur", "Renault Clio"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ordering = %v, want %v", got, want)
		}
	}

	filtered, err := store.GetVehicles(ctx, VehicleFilter{DepartmentID: departmentID})
	if err != nil {
		t.Fatalf("GetVehicles filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Brand != "Citroen" {
		t.Errorf("department filter returned %+v", filtered)
	}
}

func TestCreateReservation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.SignUp(ctx, "jean@lpd.fr", "Secret123", SignUpData{FullName: "Jean Dupont"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	vehicle, err := store.CreateVehicle(ctx, CreateVehicleInput{PlateNumber: "AB-123-CD", Brand: "Renault", Model: "Clio"})
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}

	if _, err := store.CreateReservation(ctx, CreateReservationInput{VehicleID: "missing", UserID: user.ID}); !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("missing vehicle err = %v, want ErrVehicleNotFound", err)
	}

	reservation, err := store.CreateReservation(ctx, CreateReservationInput{
		VehicleID: vehicle.ID,
		UserID:    user.ID,
		StartDate: date(10),
		EndDate:   date(15),
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if reservation.Status != models.ReservationStatusPending {
		t.Errorf("new reservation status = %q, want pending", reservation.Status)
	}
	if reservation.Vehicles == nil || reservation.Vehicles.PlateNumber != "AB-123-CD" {
		t.Errorf("vehicle summary = %+v", reservation.Vehicles)
	}
	if reservation.Profiles == nil || reservation.Profiles.FullName != "Jean Dupont" {
		t.Errorf("profile summary = %+v", reservation.Profiles)
	}

	vehicles, err := store.GetVehicles(ctx, VehicleFilter{})
	if err != nil {
		t.Fatalf("GetVehicles: %v", err)
	}
	if vehicles[0].Status != models.VehicleStatusReserved {
		t.Errorf("vehicle status after reservation = %q, want reserved", vehicles[0].Status)
	}

	// The vehicle is no longer available; the rejection writes nothing.
	if _, err := store.CreateReservation(ctx, CreateReservationInput{VehicleID: vehicle.ID, UserID: user.ID}); !errors.Is(err, ErrVehicleNotAvailable) {
		t.Errorf("second reservation err = %v, want ErrVehicleNotAvailable", err)
	}
	reservations, err := store.GetReservations(ctx, ReservationFilter{})
	if err != nil {
		t.Fatalf("GetReservations: %v", err)
	}
	if len(reservations) != 1 {
		t.Errorf("rejected creation left %d reservations, want 1", len(reservations))
	}
}

func TestReservationOrderingAndFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, _ := store.SignUp(ctx, "jean@lpd.fr", "Secret123", SignUpData{})
	first, _ := store.CreateVehicle(ctx, CreateVehicleInput{PlateNumber: "AA-111-AA", Brand: "Renault", Model: "Clio"})
	second, _ := store.CreateVehicle(ctx, CreateVehicleInput{PlateNumber: "BB-222-BB", Brand: "Citroen", Model: "C3"})

	if _, err := store.CreateReservation(ctx, CreateReservationInput{VehicleID: first.ID, UserID: user.ID, StartDate: date(1), EndDate: date(2)}); err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := store.CreateReservation(ctx, CreateReservationInput{VehicleID: second.ID, UserID: "other-user", StartDate: date(3), EndDate: date(4)}); err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	reservations, err := store.GetReservations(ctx, ReservationFilter{})
	if err != nil {
		t.Fatalf("GetReservations: %v", err)
	}
	if len(reservations) != 2 {
		t.Fatalf("got %d reservations, want 2", len(reservations))
	}
	if reservations[0].VehicleID != second.ID {
		t.Errorf("newest reservation should come first, got vehicle %q", reservations[0].VehicleID)
	}

	mine, err := store.GetReservations(ctx, ReservationFilter{UserID: user.ID})
	if err != nil {
		t.Fatalf("GetReservations mine: %v", err)
	}
	if len(mine) != 1 || mine[0].UserID != user.ID {
		t.Errorf("user filter returned %+v", mine)
	}
}

func TestTrips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, _ := store.SignUp(ctx, "jean@lpd.fr", "Secret123", SignUpData{})
	vehicle, _ := store.CreateVehicle(ctx, CreateVehicleInput{PlateNumber: "AB-123-CD", Brand: "Renault", Model: "Clio"})

	trip, err := store.CreateTrip(ctx, CreateTripInput{
		VehiculeID:      vehicle.ID,
		ConducteurID:    user.ID,
		DateHeureDepart: date(10),
	})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	if trip.VehicleNom != "Renault Clio" {
		t.Errorf("VehicleNom = %q", trip.VehicleNom)
	}

	vehicles, _ := store.GetVehicles(ctx, VehicleFilter{})
	if vehicles[0].Status != models.VehicleStatusReserve {
		t.Errorf("vehicle status after trip = %q, want reserve", vehicles[0].Status)
	}

	if _, err := store.CreateTrip(ctx, CreateTripInput{VehiculeID: "missing", ConducteurID: user.ID}); !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("missing vehicle err = %v, want ErrVehicleNotFound", err)
	}

	if _, err := store.CreateTrip(ctx, CreateTripInput{VehiculeID: vehicle.ID, ConducteurID: "other", DateHeureDepart: date(20)}); err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}

	trips, err := store.GetTrips(ctx, TripFilter{})
	if err != nil {
		t.Fatalf("GetTrips: %v", err)
	}
	if len(trips) != 2 || !trips[0].DateHeureDepart.After(trips[1].DateHeureDepart) {
		t.Errorf("trips not ordered by departure descending: %+v", trips)
	}

	mine, err := store.GetTrips(ctx, TripFilter{UserID: user.ID})
	if err != nil {
		t.Fatalf("GetTrips mine: %v", err)
	}
	if len(mine) != 1 || mine[0].ConducteurID != user.ID {
		t.Errorf("conducteur filter returned %+v", mine)
	}
}

func TestMaintenances(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	vehicle, _ := store.CreateVehicle(ctx, CreateVehicleInput{PlateNumber: "AB-123-CD", Brand: "Renault", Model: "Clio"})

	data, err := store.loadData()
	if err != nil {
		t.Fatalf("loadData: %v", err)
	}
	data.Maintenances = []models.Maintenance{
		{ID: "m1", VehicleID: vehicle.ID, DatePrevue: date(20)},
		{ID: "m2", VehicleID: vehicle.ID, DatePrevue: date(5)},
		{ID: "m3", VehicleID: "other", DatePrevue: date(10)},
	}
	if err := store.saveData(data); err != nil {
		t.Fatalf("saveData: %v", err)
	}

	maintenances, err := store.GetMaintenances(ctx, MaintenanceFilter{})
	if err != nil {
		t.Fatalf("GetMaintenances: %v", err)
	}
	if len(maintenances) != 3 || maintenances[0].ID != "m2" || maintenances[2].ID != "m1" {
		t.Errorf("maintenances not ordered by date_prevue ascending: %+v", maintenances)
	}
	if maintenances[0].VehicleName != "Renault Clio" {
		t.Errorf("VehicleName = %q", maintenances[0].VehicleName)
	}

	filtered, err := store.GetMaintenances(ctx, MaintenanceFilter{VehicleID: vehicle.ID})
	if err != nil {
		t.Fatalf("GetMaintenances filtered: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("vehicle filter returned %d rows, want 2", len(filtered))
	}
}

func TestDepartmentsSeeded(t *testing.T) {
	store := newTestStore(t)

	departments, err := store.GetDepartments(context.Background())
	if err != nil {
		t.Fatalf("GetDepartments: %v", err)
	}
	if len(departments) != 6 {
		t.Fatalf("got %d departments, want 6", len(departments))
	}
	for i := 1; i < len(departments); i++ {
		if departments[i-1].Name > departments[i].Name {
			t.Errorf("departments not sorted by name: %q before %q", departments[i-1].Name, departments[i].Name)
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, _ := store.SignUp(ctx, "jean@lpd.fr", "Secret123", SignUpData{FullName: "Jean Dupont"})

	fullName := "Jean Martin"
	departmentID := models.SeedDepartments()[4].ID
	profile, err := store.UpdateProfile(ctx, user.ID, UpdateProfileInput{FullName: &fullName, DepartmentID: &departmentID})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if profile.FullName != "Jean Martin" {
		t.Errorf("FullName = %q", profile.FullName)
	}

	resolved, err := store.GetUser(ctx)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if resolved.DepartmentName == nil || *resolved.DepartmentName != "Var" {
		t.Errorf("DepartmentName = %v, want Var", resolved.DepartmentName)
	}

	if _, err := store.UpdateProfile(ctx, "missing", UpdateProfileInput{}); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("missing profile err = %v, want ErrProfileNotFound", err)
	}
}

func TestNewIDUnique(t *testing.T) {
	store := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := store.newID("vehicle")
		if seen[id] {
			t.Fatalf("duplicate id %q after %d generations", id, i)
		}
		seen[id] = true
	}
}
