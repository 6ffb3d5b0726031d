// File: /database/database.go
package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jeromeleyapps-bit/flotteLPD/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Department{},
		&models.Vehicle{},
		&models.Reservation{},
		&models.Trip{},
		&models.Maintenance{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	// Composite indexes for the ordered list reads.
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_vehicles_brand_model ON vehicles(brand, model)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for vehicles: %v\n", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_reservations_created ON reservations(created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for reservations: %v\n", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_trips_depart ON trips(date_heure_depart DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for trips: %v\n", err)
	}
	return nil
}

// SeedDepartments inserts the six fixed departments. Existing rows are left
// untouched, so repeated startups are safe.
func SeedDepartments(db *gorm.DB) error {
	for _, department := range models.SeedDepartments() {
		var existing models.Department
		err := db.Where("id = ?", department.ID).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to check department %s: %w", department.ID, err)
		}
		if err := db.Create(&department).Error; err != nil {
			return fmt.Errorf("failed to seed department %s: %w", department.ID, err)
		}
	}
	return nil
}
