// File: /controllers/trip_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeromeleyapps-bit/flotteLPD/backends"
	"github.com/jeromeleyapps-bit/flotteLPD/utils"
)

type TripController struct {
	backend backends.Adapter
}

func NewTripController(backend backends.Adapter) *TripController {
	return &TripController{backend: backend}
}

type CreateTripRequest struct {
	VehiculeID      string    `json:"vehicule_id" binding:"required"`
	DateHeureDepart time.Time `json:"date_heure_depart" binding:"required"`
}

type UpdateTripRequest struct {
	DateHeureDepart *time.Time `json:"date_heure_depart"`
}

// GetTrips lists trips newest departure first. The mine=true query restricts
// the list to trips driven by the caller.
func (tc *TripController) GetTrips(c *gin.Context) {
	filter := backends.TripFilter{}
	if c.Query("mine") == "true" {
		filter.UserID = c.GetString("user_id")
	}

	trips, err := tc.backend.GetTrips(c.Request.Context(), filter)
	if err != nil {
		respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

func (tc *TripController) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := tc.backend.CreateTrip(c.Request.Context(), backends.CreateTripInput{
		VehiculeID:      req.VehiculeID,
		ConducteurID:    c.GetString("user_id"),
		DateHeureDepart: req.DateHeureDepart,
	})
	if err != nil {
		respondBackendError(c, err)
		return
	}
	utils.SendCreated(c, "Trip created", trip)
}

func (tc *TripController) UpdateTrip(c *gin.Context) {
	var req UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := tc.backend.UpdateTrip(c.Request.Context(), c.Param("id"), backends.UpdateTripInput{
		DateHeureDepart: req.DateHeureDepart,
	})
	if err != nil {
		respondBackendError(c, err)
		return
	}
	utils.SendSuccess(c, "Trip updated", trip)
}
