// File: /routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/jeromeleyapps-bit/flotteLPD/backends"
	"github.com/jeromeleyapps-bit/flotteLPD/config"
	"github.com/jeromeleyapps-bit/flotteLPD/controllers"
	"github.com/jeromeleyapps-bit/flotteLPD/middleware"
	"github.com/jeromeleyapps-bit/flotteLPD/services"
)

func SetupRoutes(r *gin.Engine, backend backends.Adapter, cfg *config.Config, reservationService *services.ReservationService) {
	// Controllers
	authController := controllers.NewAuthController(backend, cfg.JWTSecret)
	vehicleController := controllers.NewVehicleController(backend)
	reservationController := controllers.NewReservationController(backend, reservationService)
	tripController := controllers.NewTripController(backend)
	fleetController := controllers.NewFleetController(backend)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
			"backend": cfg.BackendType,
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/register", authController.Register)
		auth.POST("/logout", authController.Logout)
		auth.GET("/session", authController.GetSession)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/me", authController.Me)
		protected.PUT("/profile", fleetController.UpdateProfile)

		// Vehicle routes
		vehicles := protected.Group("/vehicles")
		{
			vehicles.GET("/", vehicleController.GetVehicles)
			vehicles.POST("/", vehicleController.CreateVehicle)
			vehicles.PUT("/:id", vehicleController.UpdateVehicle)
			vehicles.DELETE("/:id", vehicleController.DeleteVehicle)
		}

		// Reservation routes
		reservations := protected.Group("/reservations")
		{
			reservations.GET("/", reservationController.GetReservations)
			reservations.POST("/", reservationController.CreateReservation)
			reservations.GET("/availability", reservationController.CheckAvailability)
			reservations.PATCH("/:id/confirm", reservationController.ConfirmReservation)
			reservations.PATCH("/:id/cancel", reservationController.CancelReservation)
			reservations.PATCH("/:id/complete", reservationController.CompleteReservation)
		}

		// Trip routes
		trips := protected.Group("/trips")
		{
			trips.GET("/", tripController.GetTrips)
			trips.POST("/", tripController.CreateTrip)
			trips.PUT("/:id", tripController.UpdateTrip)
		}

		// Maintenance routes
		maintenances := protected.Group("/maintenances")
		{
			maintenances.GET("/", fleetController.GetMaintenances)
		}

		// Department routes
		departments := protected.Group("/departments")
		{
			departments.GET("/", fleetController.GetDepartments)
		}
	}
}
