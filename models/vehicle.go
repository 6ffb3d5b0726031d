// File: /models/vehicle.go
package models

import "time"

type Vehicle struct {
	ID           string    `json:"id" bson:"_id" gorm:"primaryKey;size:191"`
	PlateNumber  string    `json:"plate_number" bson:"plate_number" gorm:"uniqueIndex;not null;size:20"`
	Brand        string    `json:"brand" bson:"brand" gorm:"not null;size:100"`
	Model        string    `json:"model" bson:"model" gorm:"not null;size:100"`
	Year         int       `json:"year" bson:"year"`
	Type         string    `json:"type" bson:"type" gorm:"size:50"`
	FuelType     string    `json:"fuel_type" bson:"fuel_type" gorm:"size:50"`
	Status       string    `json:"status" bson:"status" gorm:"default:'available';size:20"`
	DepartmentID *string   `json:"department_id" bson:"department_id" gorm:"index;size:191"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// VehicleWithDepartment is the denormalized vehicle view every backend returns:
// the vehicle plus its department name and code, with placeholder fallbacks
// when no department is assigned.
type VehicleWithDepartment struct {
	Vehicle
	DepartmentName string `json:"department_name"`
	DepartmentCode string `json:"department_code"`
}

// VehicleSummary is the vehicle sub-object embedded in reservation views.
type VehicleSummary struct {
	PlateNumber string `json:"plate_number" bson:"plate_number"`
	Brand       string `json:"brand" bson:"brand"`
	Model       string `json:"model" bson:"model"`
	Type        string `json:"type" bson:"type"`
}
