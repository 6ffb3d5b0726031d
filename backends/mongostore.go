// File: /backends/mongostore.go
package backends

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeromeleyapps-bit/flotteLPD/config"
	"github.com/jeromeleyapps-bit/flotteLPD/models"
)

const mongoConnectTimeout = 10 * time.Second

// MongoBackend maps the adapter contract onto document collections, one per
// entity. Relations are resolved by point reads through the shared attach
// helpers, and realtime change events come from change streams on the watched
// collections.
type MongoBackend struct {
	client *mongo.Client
	db     *mongo.Database

	sessionMu sync.Mutex
	session   *models.Session
}

var (
	_ Adapter         = (*MongoBackend)(nil)
	_ RealtimeAdapter = (*MongoBackend)(nil)
)

// NewMongoBackend validates the connection parameters, connects, pings and
// seeds the reference data. Missing parameters are a construction failure.
func NewMongoBackend(cfg *config.Config) (*MongoBackend, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("mongodb backend: %w: MONGO_URI", ErrMissingConfiguration)
	}
	if cfg.MongoDatabase == "" {
		return nil, fmt.Errorf("mongodb backend: %w: MONGO_DATABASE", ErrMissingConfiguration)
	}

	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongodb backend: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb backend: ping: %w", err)
	}

	backend := &MongoBackend{
		client: client,
		db:     client.Database(cfg.MongoDatabase),
	}
	if err := backend.seedDepartments(ctx); err != nil {
		return nil, fmt.Errorf("mongodb backend: seed departments: %w", err)
	}
	return backend, nil
}

func (b *MongoBackend) seedDepartments(ctx context.Context) error {
	collection := b.db.Collection("departments")
	for _, department := range models.SeedDepartments() {
		filter := bson.M{"_id": department.ID}
		update := bson.M{"$setOnInsert": department}
		opts := options.Update().SetUpsert(true)
		if _, err := collection.UpdateOne(ctx, filter, update, opts); err != nil {
			return err
		}
	}
	return nil
}

// Close disconnects the underlying client.
func (b *MongoBackend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

// ========== Auth ==========

func (b *MongoBackend) SignIn(ctx context.Context, email, password string) (*models.AuthUser, error) {
	var user models.User
	err := b.db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	b.setSession(user.ID, user.Email)
	return b.resolveUser(ctx, models.SessionUser{ID: user.ID, Email: user.Email})
}

func (b *MongoBackend) SignUp(ctx context.Context, email, password string, signUp SignUpData) (*models.AuthUser, error) {
	err := b.db.Collection("users").FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		return nil, ErrEmailAlreadyUsed
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("mongodb backend: hash password: %w", err)
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

	if _, err := b.db.Collection("users").InsertOne(ctx, user); err != nil {
		return nil, err
	}
	if _, err := b.db.Collection("profiles").InsertOne(ctx, profile); err != nil {
		return nil, err
	}

	b.setSession(user.ID, user.Email)
	return b.resolveUser(ctx, models.SessionUser{ID: user.ID, Email: user.Email})
}

func (b *MongoBackend) SignOut(ctx context.Context) error {
	b.sessionMu.Lock()
	defer b.sessionMu.Unlock()
	b.session = nil
	return nil
}

func (b *MongoBackend) GetSession(ctx context.Context) (*models.Session, error) {
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

func (b *MongoBackend) GetUser(ctx context.Context) (*models.AuthUser, error) {
	session, err := b.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	return b.resolveUser(ctx, session.User)
}

func (b *MongoBackend) setSession(userID, email string) {
	b.sessionMu.Lock()
	defer b.sessionMu.Unlock()
	b.session = &models.Session{
		User:    models.SessionUser{ID: userID, Email: email},
		Expires: time.Now().Add(sessionTTL).UnixMilli(),
	}
}

func (b *MongoBackend) resolveUser(ctx context.Context, user models.SessionUser) (*models.AuthUser, error) {
	profile, err := b.profileLookup(ctx)(user.ID)
	if err != nil {
		return nil, err
	}
	return resolveAuthUser(user, profile, b.departmentLookup(ctx))
}

// ========== Vehicles ==========

func (b *MongoBackend) GetVehicles(ctx context.Context, filter VehicleFilter) ([]models.VehicleWithDepartment, error) {
	query := bson.M{}
	if filter.DepartmentID != "" {
		query["department_id"] = filter.DepartmentID
	}

	opts := options.Find().SetSort(bson.D{{Key: "brand", Value: 1}, {Key: "model", Value: 1}})
	cursor, err := b.db.Collection("vehicles").Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
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

func (b *MongoBackend) CreateVehicle(ctx context.Context, input CreateVehicleInput) (*models.VehicleWithDepartment, error) {
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
	if _, err := b.db.Collection("vehicles").InsertOne(ctx, vehicle); err != nil {
		return nil, err
	}

	view, err := attachDepartment(vehicle, b.departmentLookup(ctx))
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (b *MongoBackend) UpdateVehicle(ctx context.Context, id string, input UpdateVehicleInput) (*models.VehicleWithDepartment, error) {
	set := bson.M{"updated_at": time.Now()}
	if input.PlateNumber != nil {
		set["plate_number"] = *input.PlateNumber
	}
	if input.Brand != nil {
		set["brand"] = *input.Brand
	}
	if input.Model != nil {
		set["model"] = *input.Model
	}
	if input.Year != nil {
		set["year"] = *input.Year
	}
	if input.Type != nil {
		set["type"] = *input.Type
	}
	if input.FuelType != nil {
		set["fuel_type"] = *input.FuelType
	}
	if input.Status != nil {
		set["status"] = *input.Status
	}
	if input.DepartmentID != nil {
		set["department_id"] = *input.DepartmentID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var vehicle models.Vehicle
	err := b.db.Collection("vehicles").
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&vehicle)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}

	view, err := attachDepartment(vehicle, b.departmentLookup(ctx))
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (b *MongoBackend) DeleteVehicle(ctx context.Context, id string) error {
	result, err := b.db.Collection("vehicles").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

// ========== Reservations ==========

func (b *MongoBackend) GetReservations(ctx context.Context, filter ReservationFilter) ([]models.ReservationWithRelations, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := b.db.Collection("reservations").Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var reservations []models.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
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

func (b *MongoBackend) CreateReservation(ctx context.Context, input CreateReservationInput) (*models.ReservationWithRelations, error) {
	now := time.Now()

	// The conditional update is the availability check and the status change in
	// one step; a racing creation loses the swap and gets the availability
	// error. The two writes are not atomic together, the reconcile job releases
	// a vehicle left behind by a failed insert.
	err := b.db.Collection("vehicles").FindOneAndUpdate(ctx,
		bson.M{"_id": input.VehicleID, "status": models.VehicleStatusAvailable},
		bson.M{"$set": bson.M{"status": models.VehicleStatusReserved, "updated_at": now}},
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		exists := b.db.Collection("vehicles").FindOne(ctx, bson.M{"_id": input.VehicleID}).Err()
		if errors.Is(exists, mongo.ErrNoDocuments) {
			return nil, ErrVehicleNotFound
		}
		if exists != nil {
			return nil, exists
		}
		return nil, ErrVehicleNotAvailable
	}
	if err != nil {
		return nil, err
	}

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
	if _, err := b.db.Collection("reservations").InsertOne(ctx, reservation); err != nil {
		return nil, err
	}

	view, err := attachReservationRelations(reservation, b.vehicleLookup(ctx), b.profileLookup(ctx))
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (b *MongoBackend) UpdateReservation(ctx context.Context, id string, input UpdateReservationInput) (*models.ReservationWithRelations, error) {
	set := bson.M{"updated_at": time.Now()}
	if input.Status != nil {
		set["status"] = *input.Status
	}
	if input.StartDate != nil {
		set["start_date"] = *input.StartDate
	}
	if input.EndDate != nil {
		set["end_date"] = *input.EndDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var reservation models.Reservation
	err := b.db.Collection("reservations").
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&reservation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}

	view, err := attachReservationRelations(reservation, b.vehicleLookup(ctx), b.profileLookup(ctx))
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ========== Trips ==========

func (b *MongoBackend) GetTrips(ctx context.Context, filter TripFilter) ([]models.TripWithVehicle, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["conducteur_id"] = filter.UserID
	}

	opts := options.Find().SetSort(bson.D{{Key: "date_heure_depart", Value: -1}})
	cursor, err := b.db.Collection("trips").Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
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

func (b *MongoBackend) CreateTrip(ctx context.Context, input CreateTripInput) (*models.TripWithVehicle, error) {
	now := time.Now()

	err := b.db.Collection("vehicles").FindOneAndUpdate(ctx,
		bson.M{"_id": input.VehiculeID},
		bson.M{"$set": bson.M{"status": models.VehicleStatusReserve, "updated_at": now}},
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}

	trip := models.Trip{
		ID:              uuid.New().String(),
		VehiculeID:      input.VehiculeID,
		ConducteurID:    input.ConducteurID,
		DateHeureDepart: input.DateHeureDepart,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := b.db.Collection("trips").InsertOne(ctx, trip); err != nil {
		return nil, err
	}

	view, err := attachTripVehicle(trip, b.vehicleLookup(ctx))
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (b *MongoBackend) UpdateTrip(ctx context.Context, id string, input UpdateTripInput) (*models.TripWithVehicle, error) {
	set := bson.M{"updated_at": time.Now()}
	if input.DateHeureDepart != nil {
		set["date_heure_depart"] = *input.DateHeureDepart
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var trip models.Trip
	err := b.db.Collection("trips").
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&trip)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}

	view, err := attachTripVehicle(trip, b.vehicleLookup(ctx))
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ========== Maintenances ==========

func (b *MongoBackend) GetMaintenances(ctx context.Context, filter MaintenanceFilter) ([]models.MaintenanceWithVehicle, error) {
	query := bson.M{}
	if filter.VehicleID != "" {
		query["vehicle_id"] = filter.VehicleID
	}

	opts := options.Find().SetSort(bson.D{{Key: "date_prevue", Value: 1}})
	cursor, err := b.db.Collection("maintenances").Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var maintenances []models.Maintenance
	if err := cursor.All(ctx, &maintenances); err != nil {
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

func (b *MongoBackend) GetDepartments(ctx context.Context) ([]models.Department, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := b.db.Collection("departments").Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var departments []models.Department
	if err := cursor.All(ctx, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

// ========== Profile ==========

func (b *MongoBackend) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*models.Profile, error) {
	set := bson.M{"updated_at": time.Now()}
	if input.FullName != nil {
		set["full_name"] = *input.FullName
	}
	if input.DepartmentID != nil {
		set["department_id"] = *input.DepartmentID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var profile models.Profile
	err := b.db.Collection("profiles").
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ========== Realtime ==========

func (b *MongoBackend) SubscribeToVehicles(callback func(ChangeEvent)) (UnsubscribeFunc, error) {
	return b.watchCollection("vehicles", TableVehicles, callback)
}

func (b *MongoBackend) SubscribeToReservations(callback func(ChangeEvent)) (UnsubscribeFunc, error) {
	return b.watchCollection("reservations", TableReservations, callback)
}

func (b *MongoBackend) SubscribeToTrips(callback func(ChangeEvent)) (UnsubscribeFunc, error) {
	return b.watchCollection("trips", TableTrips, callback)
}

// changeStreamEvent is the slice of a change stream document the dispatcher
// needs to classify and forward an event.
type changeStreamEvent struct {
	OperationType string `bson:"operationType"`
	FullDocument  bson.M `bson:"fullDocument"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
}

func (b *MongoBackend) watchCollection(collection, table string, callback func(ChangeEvent)) (UnsubscribeFunc, error) {
	ctx, cancel := context.WithCancel(context.Background())

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := b.db.Collection(collection).Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("mongodb backend: watch %s: %w", collection, err)
	}

	go func() {
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var raw changeStreamEvent
			if err := stream.Decode(&raw); err != nil {
				log.Printf("change stream %s: decode: %v", collection, err)
				continue
			}
			event, ok := classifyStreamEvent(raw, table)
			if !ok {
				continue
			}
			callback(event)
		}
		if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("change stream %s: %v", collection, err)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(cancel)
	}, nil
}

func classifyStreamEvent(raw changeStreamEvent, table string) (ChangeEvent, bool) {
	switch raw.OperationType {
	case "insert":
		return ChangeEvent{Type: EventAdded, Table: table, New: raw.FullDocument}, true
	case "update", "replace":
		return ChangeEvent{Type: EventModified, Table: table, New: raw.FullDocument}, true
	case "delete":
		// Delete events carry only the document key.
		return ChangeEvent{Type: EventRemoved, Table: table, Old: bson.M{"_id": raw.DocumentKey.ID}}, true
	default:
		return ChangeEvent{}, false
	}
}

// ========== lookups ==========

func (b *MongoBackend) departmentLookup(ctx context.Context) DepartmentLookup {
	return func(id string) (*models.Department, error) {
		var department models.Department
		err := b.db.Collection("departments").FindOne(ctx, bson.M{"_id": id}).Decode(&department)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &department, nil
	}
}

func (b *MongoBackend) vehicleLookup(ctx context.Context) VehicleLookup {
	return func(id string) (*models.Vehicle, error) {
		var vehicle models.Vehicle
		err := b.db.Collection("vehicles").FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &vehicle, nil
	}
}

func (b *MongoBackend) profileLookup(ctx context.Context) ProfileLookup {
	return func(id string) (*models.Profile, error) {
		var profile models.Profile
		err := b.db.Collection("profiles").FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &profile, nil
	}
}
