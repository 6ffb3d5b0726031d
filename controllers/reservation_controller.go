// File: /controllers/reservation_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeromeleyapps-bit/flotteLPD/backends"
	"github.com/jeromeleyapps-bit/flotteLPD/services"
	"github.com/jeromeleyapps-bit/flotteLPD/utils"
)

type ReservationController struct {
	backend      backends.Adapter
	reservations *services.ReservationService
}

func NewReservationController(backend backends.Adapter, reservations *services.ReservationService) *ReservationController {
	return &ReservationController{
		backend:      backend,
		reservations: reservations,
	}
}

type CreateReservationRequest struct {
	VehicleID string    `json:"vehicle_id" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// GetReservations lists reservations newest first. Admins see every
// reservation, other users only their own.
func (rc *ReservationController) GetReservations(c *gin.Context) {
	filter := backends.ReservationFilter{}
	if !rc.isAdmin(c) {
		filter.UserID = c.GetString("user_id")
	}

	reservations, err := rc.backend.GetReservations(c.Request.Context(), filter)
	if err != nil {
		respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !utils.IsValidDateRange(req.StartDate, req.EndDate) {
		utils.SendValidationError(c, "end_date must not be before start_date")
		return
	}

	reservation, err := rc.reservations.Create(c.Request.Context(), backends.CreateReservationInput{
		VehicleID: req.VehicleID,
		UserID:    c.GetString("user_id"),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		respondBackendError(c, err)
		return
	}
	utils.SendCreated(c, "Reservation created", reservation)
}

func (rc *ReservationController) ConfirmReservation(c *gin.Context) {
	if !rc.requireAdmin(c) {
		return
	}
	reservation, err := rc.reservations.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBackendError(c, err)
		return
	}
	utils.SendSuccess(c, "Reservation confirmed", reservation)
}

func (rc *ReservationController) CancelReservation(c *gin.Context) {
	reservation, err := rc.reservations.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBackendError(c, err)
		return
	}
	utils.SendSuccess(c, "Reservation cancelled", reservation)
}

func (rc *ReservationController) CompleteReservation(c *gin.Context) {
	if !rc.requireAdmin(c) {
		return
	}
	reservation, err := rc.reservations.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBackendError(c, err)
		return
	}
	utils.SendSuccess(c, "Reservation completed", reservation)
}

// CheckAvailability reports whether the vehicle is free over the requested
// window. Dates are RFC 3339.
func (rc *ReservationController) CheckAvailability(c *gin.Context) {
	vehicleID := c.Query("vehicle_id")
	if vehicleID == "" {
		utils.SendValidationError(c, "vehicle_id is required")
		return
	}
	start, err := time.Parse(time.RFC3339, c.Query("start_date"))
	if err != nil {
		utils.SendValidationError(c, "start_date must be RFC 3339")
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end_date"))
	if err != nil {
		utils.SendValidationError(c, "end_date must be RFC 3339")
		return
	}
	if !utils.IsValidDateRange(start, end) {
		utils.SendValidationError(c, "end_date must not be before start_date")
		return
	}

	available, err := rc.reservations.IsVehicleAvailable(c.Request.Context(), vehicleID, start, end)
	if err != nil {
		respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle_id": vehicleID, "available": available})
}

func (rc *ReservationController) isAdmin(c *gin.Context) bool {
	user, err := rc.backend.GetUser(c.Request.Context())
	if err != nil || user == nil {
		return false
	}
	return user.IsAdmin()
}

func (rc *ReservationController) requireAdmin(c *gin.Context) bool {
	if rc.isAdmin(c) {
		return true
	}
	utils.SendError(c, http.StatusForbidden, "Admin role required")
	return false
}
