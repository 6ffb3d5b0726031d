// File: /models/trip.go
package models

import "time"

// Trip keeps the original French column names; they are the wire format the
// fleet deployment already stores.
type Trip struct {
	ID              string    `json:"id" bson:"_id" gorm:"primaryKey;size:191"`
	VehiculeID      string    `json:"vehicule_id" bson:"vehicule_id" gorm:"column:vehicule_id;index;not null;size:191"`
	ConducteurID    string    `json:"conducteur_id" bson:"conducteur_id" gorm:"column:conducteur_id;index;not null;size:191"`
	DateHeureDepart time.Time `json:"date_heure_depart" bson:"date_heure_depart" gorm:"column:date_heure_depart"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

// TripWithVehicle carries the "brand model" display name of the trip's vehicle.
type TripWithVehicle struct {
	Trip
	VehicleNom string `json:"vehicle_nom"`
}
