package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SEATING_BLOCK_MINUTES", "")
	t.Setenv("HOLD_WINDOW_MINUTES", "")
	t.Setenv("SEATING_FALLBACK_POLICY", "")
	t.Setenv("RESTAURANT_TZ", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverREST, cfg.Store.Driver)
	assert.Equal(t, 120, cfg.Seating.DefaultBlockMinutes)
	assert.Equal(t, 120, cfg.Seating.HoldMinutes)
	assert.Equal(t, "seat_anyway", cfg.Seating.FallbackPolicy)
	assert.Equal(t, 5, cfg.Seating.BusyThreshold)
	assert.Equal(t, time.UTC, cfg.App.Location())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("HOLD_WINDOW_MINUTES", "45")
	t.Setenv("SEATING_FALLBACK_POLICY", "Strict")
	t.Setenv("SEATING_LOCK_TTL_SECONDS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 45, cfg.Seating.HoldMinutes)
	assert.Equal(t, "strict", cfg.Seating.FallbackPolicy)
	assert.Equal(t, 3*time.Second, cfg.Seating.LockTTL())
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "sqlite"}},
		{name: "postgres without dsn", env: map[string]string{"STORE_DRIVER": "postgres", "POSTGRES_DSN": ""}},
		{name: "bad zone", env: map[string]string{"STORE_DRIVER": "memory", "RESTAURANT_TZ": "Mars/Olympus"}},
		{name: "bad redis db", env: map[string]string{"REDIS_DB": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "nope")
	t.Setenv("X_BOOL", "maybe")
	assert.Equal(t, 7, getEnvAsInt("X_INT", 7))
	assert.True(t, getEnvAsBool("X_BOOL", true))
	assert.Equal(t, "fallback", getEnv("X_MISSING", "fallback"))
}
