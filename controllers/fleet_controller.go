// File: /controllers/fleet_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeromeleyapps-bit/flotteLPD/backends"
	"github.com/jeromeleyapps-bit/flotteLPD/utils"
)

// FleetController serves the reference reads (maintenances, departments) and
// the profile update.
type FleetController struct {
	backend backends.Adapter
}

func NewFleetController(backend backends.Adapter) *FleetController {
	return &FleetController{backend: backend}
}

type UpdateProfileRequest struct {
	FullName     *string `json:"full_name"`
	DepartmentID *string `json:"department_id"`
}

// GetMaintenances lists maintenances by scheduled date, soonest first.
func (fc *FleetController) GetMaintenances(c *gin.Context) {
	filter := backends.MaintenanceFilter{
		VehicleID: c.Query("vehicle_id"),
	}

	maintenances, err := fc.backend.GetMaintenances(c.Request.Context(), filter)
	if err != nil {
		respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, maintenances)
}

// GetDepartments lists the departments alphabetically.
func (fc *FleetController) GetDepartments(c *gin.Context) {
	departments, err := fc.backend.GetDepartments(c.Request.Context())
	if err != nil {
		respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, departments)
}

// UpdateProfile applies a partial update to the caller's own profile.
func (fc *FleetController) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := fc.backend.UpdateProfile(c.Request.Context(), c.GetString("user_id"), backends.UpdateProfileInput{
		FullName:     req.FullName,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondBackendError(c, err)
		return
	}
	utils.SendSuccess(c, "Profile updated", profile)
}
