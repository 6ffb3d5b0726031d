// File: /config/config.go
package config

import (
	"os"
	"strconv"
)

// Backend type values accepted in BACKEND_TYPE. "pocketbase" and "rest" are
// declared but not implemented; the selector falls back to the local store.
const (
	BackendLocalStorage = "localstorage"
	BackendMySQL        = "mysql"
	BackendMongoDB      = "mongodb"
	BackendPocketBase   = "pocketbase"
	BackendREST         = "rest"
)

type Config struct {
	Port        string
	BackendType string
	JWTSecret   string

	// MySQL backend
	DatabaseURL string

	// MongoDB backend
	MongoURI      string
	MongoDatabase string

	// Local storage backend
	LocalDataDir string

	// Email Configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

func Load() *Config {
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "2525"))
	return &Config{
		Port:        getEnv("PORT", "8080"),
		BackendType: getEnv("BACKEND_TYPE", BackendLocalStorage),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "flotte_lpd"),

		LocalDataDir: getEnv("LOCAL_DATA_DIR", "./data"),

		// Email settings
		SMTPHost:     getEnv("SMTP_HOST", "sandbox.smtp.mailtrap.io"),
		SMTPPort:     smtpPort,
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@flotte-lpd.fr"),
		FromName:     getEnv("FROM_NAME", "Flotte LPD"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
