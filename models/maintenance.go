// File: /models/maintenance.go
package models

import "time"

// Maintenance records are read-only through the adapter contract; they are
// produced by the fleet administration tooling.
type Maintenance struct {
	ID         string    `json:"id" bson:"_id" gorm:"primaryKey;size:191"`
	VehicleID  string    `json:"vehicle_id" bson:"vehicle_id" gorm:"index;not null;size:191"`
	DatePrevue time.Time `json:"date_prevue" bson:"date_prevue" gorm:"column:date_prevue"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

type MaintenanceWithVehicle struct {
	Maintenance
	VehicleName string `json:"vehicle_name"`
}
