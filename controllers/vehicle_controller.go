// File: /controllers/vehicle_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeromeleyapps-bit/flotteLPD/backends"
	"github.com/jeromeleyapps-bit/flotteLPD/utils"
)

type VehicleController struct {
	backend backends.Adapter
}

func NewVehicleController(backend backends.Adapter) *VehicleController {
	return &VehicleController{backend: backend}
}

type CreateVehicleRequest struct {
	PlateNumber  string  `json:"plate_number" binding:"required"`
	Brand        string  `json:"brand" binding:"required"`
	Model        string  `json:"model" binding:"required"`
	Year         int     `json:"year"`
	Type         string  `json:"type"`
	FuelType     string  `json:"fuel_type"`
	DepartmentID *string `json:"department_id"`
}

type UpdateVehicleRequest struct {
	PlateNumber  *string `json:"plate_number"`
	Brand        *string `json:"brand"`
	Model        *string `json:"model"`
	Year         *int    `json:"year"`
	Type         *string `json:"type"`
	FuelType     *string `json:"fuel_type"`
	Status       *string `json:"status"`
	DepartmentID *string `json:"department_id"`
}

// GetVehicles lists vehicles ordered by brand then model, optionally filtered
// by department.
func (vc *VehicleController) GetVehicles(c *gin.Context) {
	filter := backends.VehicleFilter{
		DepartmentID: c.Query("department_id"),
	}

	vehicles, err := vc.backend.GetVehicles(c.Request.Context(), filter)
	if err != nil {
		respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

func (vc *VehicleController) CreateVehicle(c *gin.Context) {
	if !vc.requireAdmin(c) {
		return
	}

	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !utils.IsValidPlateNumber(req.PlateNumber) {
		utils.SendValidationError(c, "Invalid plate number")
		return
	}

	vehicle, err := vc.backend.CreateVehicle(c.Request.Context(), backends.CreateVehicleInput{
		PlateNumber:  req.PlateNumber,
		Brand:        req.Brand,
		Model:        req.Model,
		Year:         req.Year,
		Type:         req.Type,
		FuelType:     req.FuelType,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondBackendError(c, err)
		return
	}
	utils.SendCreated(c, "Vehicle created", vehicle)
}

func (vc *VehicleController) UpdateVehicle(c *gin.Context) {
	if !vc.requireAdmin(c) {
		return
	}

	var req UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PlateNumber != nil && !utils.IsValidPlateNumber(*req.PlateNumber) {
		utils.SendValidationError(c, "Invalid plate number")
		return
	}

	vehicle, err := vc.backend.UpdateVehicle(c.Request.Context(), c.Param("id"), backends.UpdateVehicleInput{
		PlateNumber:  req.PlateNumber,
		Brand:        req.Brand,
		Model:        req.Model,
		Year:         req.Year,
		Type:         req.Type,
		FuelType:     req.FuelType,
		Status:       req.Status,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondBackendError(c, err)
		return
	}
	utils.SendSuccess(c, "Vehicle updated", vehicle)
}

func (vc *VehicleController) DeleteVehicle(c *gin.Context) {
	if !vc.requireAdmin(c) {
		return
	}

	if err := vc.backend.DeleteVehicle(c.Request.Context(), c.Param("id")); err != nil {
		respondBackendError(c, err)
		return
	}
	utils.SendSuccess(c, "Vehicle deleted", nil)
}

// requireAdmin resolves the current user and aborts with 403 unless their
// profile carries the admin role.
func (vc *VehicleController) requireAdmin(c *gin.Context) bool {
	user, err := vc.backend.GetUser(c.Request.Context())
	if err != nil {
		respondBackendError(c, err)
		return false
	}
	if user == nil || !user.IsAdmin() {
		utils.SendError(c, http.StatusForbidden, "Admin role required")
		return false
	}
	return true
}
