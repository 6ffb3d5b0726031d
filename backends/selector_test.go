// File: /backends/selector_test.go
package backends

import (
	"testing"

	"github.com/jeromeleyapps-bit/flotteLPD/config"
)

func TestSelectLocalStorage(t *testing.T) {
	cfg := &config.Config{BackendType: config.BackendLocalStorage, LocalDataDir: t.TempDir()}

	adapter, err := Select(cfg)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, ok := adapter.(*LocalStorage); !ok {
		t.Errorf("Select returned %T, want *LocalStorage", adapter)
	}

	// The local store does not provide realtime.
	if _, ok := adapter.(RealtimeAdapter); ok {
		t.Errorf("local storage should not satisfy RealtimeAdapter")
	}
}

func TestSelectFallsBackToLocalStorage(t *testing.T) {
	tests := []struct {
		name        string
		backendType string
	}{
		{"mysql without dsn", config.BackendMySQL},
		{"mongodb without uri", config.BackendMongoDB},
		{"pocketbase placeholder", config.BackendPocketBase},
		{"rest placeholder", config.BackendREST},
		{"unknown backend", "cassandra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{BackendType: tt.backendType, LocalDataDir: t.TempDir()}

			adapter, err := Select(cfg)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if _, ok := adapter.(*LocalStorage); !ok {
				t.Errorf("Select(%s) returned %T, want *LocalStorage fallback", tt.backendType, adapter)
			}
		})
	}
}

func TestSelectFallbackFailure(t *testing.T) {
	cfg := &config.Config{BackendType: "unknown", LocalDataDir: ""}

	if _, err := Select(cfg); err == nil {
		t.Error("expected error when the fallback itself cannot be built")
	}
}
