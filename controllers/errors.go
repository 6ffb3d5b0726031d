// File: /controllers/errors.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeromeleyapps-bit/flotteLPD/backends"
	"github.com/jeromeleyapps-bit/flotteLPD/utils"
)

// respondBackendError translates the typed backend errors into HTTP statuses.
// The French messages carried by the sentinels go out verbatim.
func respondBackendError(c *gin.Context, err error) {
	switch {
	case backends.IsNotFound(err):
		utils.SendError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, backends.ErrVehicleNotAvailable):
		utils.SendError(c, http.StatusConflict, err.Error())
	case errors.Is(err, backends.ErrEmailAlreadyUsed):
		utils.SendError(c, http.StatusConflict, err.Error())
	case errors.Is(err, backends.ErrInvalidCredentials):
		utils.SendError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, backends.ErrNotAuthenticated):
		utils.SendError(c, http.StatusUnauthorized, err.Error())
	default:
		utils.SendError(c, http.StatusInternalServerError, "Internal server error")
	}
}
