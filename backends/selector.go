// File: /backends/selector.go
package backends

import (
	"log"

	"github.com/jeromeleyapps-bit/flotteLPD/config"
)

// Select builds the backend named by the configuration. Placeholder backends,
// unknown names and construction failures all fall back to the local storage
// backend so the application always starts with a working adapter; only a
// failure to build the fallback itself is returned as an error.
func Select(cfg *config.Config) (Adapter, error) {
	switch cfg.BackendType {
	case config.BackendMySQL:
		adapter, err := NewMySQLBackend(cfg)
		if err != nil {
			log.Printf("backend %s unavailable, falling back to local storage: %v", cfg.BackendType, err)
			return NewLocalStorage(cfg.LocalDataDir)
		}
		return adapter, nil

	case config.BackendMongoDB:
		adapter, err := NewMongoBackend(cfg)
		if err != nil {
			log.Printf("backend %s unavailable, falling back to local storage: %v", cfg.BackendType, err)
			return NewLocalStorage(cfg.LocalDataDir)
		}
		return adapter, nil

	case config.BackendPocketBase, config.BackendREST:
		log.Printf("backend %s is not implemented, falling back to local storage", cfg.BackendType)
		return NewLocalStorage(cfg.LocalDataDir)

	case config.BackendLocalStorage:
		return NewLocalStorage(cfg.LocalDataDir)

	default:
		log.Printf("unknown backend %q, falling back to local storage", cfg.BackendType)
		return NewLocalStorage(cfg.LocalDataDir)
	}
}
