// File: /backends/errors.go
package backends

import "errors"

// Sentinel errors returned across the adapter contract. The HTTP layer maps
// them to status codes; they stay distinct so the UI can show a specific
// message for each failure.
var (
	// Configuration errors (fatal at construction, selector falls back)
	ErrMissingConfiguration = errors.New("missing required backend configuration")

	// Auth
	ErrInvalidCredentials = errors.New("email ou mot de passe incorrect")
	ErrEmailAlreadyUsed   = errors.New("cet email est déjà utilisé")
	ErrNotAuthenticated   = errors.New("utilisateur non connecté")

	// Not found
	ErrVehicleNotFound     = errors.New("véhicule non trouvé")
	ErrReservationNotFound = errors.New("réservation non trouvée")
	ErrTripNotFound        = errors.New("trajet non trouvé")
	ErrProfileNotFound     = errors.New("profil non trouvé")

	// Business rules
	ErrVehicleNotAvailable = errors.New("ce véhicule n'est pas disponible")
)

// IsNotFound reports whether err is one of the entity not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrVehicleNotFound) ||
		errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrTripNotFound) ||
		errors.Is(err, ErrProfileNotFound)
}
