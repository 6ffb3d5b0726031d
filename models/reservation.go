// File: /models/reservation.go
package models

import "time"

type Reservation struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;size:191"`
	VehicleID string    `json:"vehicle_id" bson:"vehicle_id" gorm:"index;not null;size:191"`
	UserID    string    `json:"user_id" bson:"user_id" gorm:"index;not null;size:191"`
	StartDate time.Time `json:"start_date" bson:"start_date"`
	EndDate   time.Time `json:"end_date" bson:"end_date"`
	Status    string    `json:"status" bson:"status" gorm:"default:'pending';size:20"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ReservationWithRelations embeds the vehicle and profile summaries. The
// sub-object keys mirror the joined table names, so the view reads the same
// no matter which backend produced it.
type ReservationWithRelations struct {
	Reservation
	Vehicles *VehicleSummary `json:"vehicles"`
	Profiles *ProfileSummary `json:"profiles"`
}
