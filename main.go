// File: /main.go
package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeromeleyapps-bit/flotteLPD/backends"
	"github.com/jeromeleyapps-bit/flotteLPD/config"
	"github.com/jeromeleyapps-bit/flotteLPD/jobs"
	"github.com/jeromeleyapps-bit/flotteLPD/middleware"
	"github.com/jeromeleyapps-bit/flotteLPD/routes"
	"github.com/jeromeleyapps-bit/flotteLPD/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Select the storage backend; a misconfigured or unreachable backend falls
	// back to the local store
	backend, err := backends.Select(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage backend:", err)
	}

	// Services
	notificationService := services.NewNotificationService(cfg)
	reservationService := services.NewReservationService(backend, notificationService)

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()

	// Setup CORS middleware
	router.Use(routes.SetupCORS())

	// Request logging middleware
	router.Use(gin.Logger())

	// Recovery middleware
	router.Use(gin.Recovery())

	// Security and rate limiting
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimit(120, 30))

	// Setup routes
	routes.SetupRoutes(router, backend, cfg, reservationService)

	// Background reconcile pass for stuck vehicle statuses
	reconcileJob := jobs.NewStatusReconcileJob(backend, 10*time.Minute)
	reconcileJob.Start()
	defer reconcileJob.Stop()

	// Start server
	log.Printf("Starting Flotte LPD API server on port %s (backend: %s)", cfg.Port, cfg.BackendType)
	log.Printf("Health check available at: http://localhost:%s/ping", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
