package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, k := range []string{"KINSHIP_ADDR", "STORE_DRIVER", "REDIS_URL", "PERSON_CACHE_TTL", "MATCH_BURST", "JWT_SIGNING_KEY"} {
			t.Setenv(k, "")
		}
		cfg := FromEnv()

		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, DriverMemory, cfg.Store.Driver)
		assert.Empty(t, cfg.Redis.URL)
		assert.Equal(t, time.Minute, cfg.Redis.PersonTTL)
		assert.Equal(t, 5, cfg.Match.Burst)
		assert.NotEmpty(t, cfg.Auth.JWTSigningKey)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("KINSHIP_ADDR", ":9999")
		t.Setenv("STORE_DRIVER", DriverPostgres)
		t.Setenv("DATABASE_URL", "postgres://kinship@localhost/kinship")
		t.Setenv("PERSON_CACHE_TTL", "30s")
		t.Setenv("MATCH_RATE_PER_SECOND", "0.5")
		t.Setenv("REQUEST_TIMEOUT", "2s")

		cfg := FromEnv()

		assert.Equal(t, ":9999", cfg.Addr)
		assert.Equal(t, DriverPostgres, cfg.Store.Driver)
		assert.Equal(t, "postgres://kinship@localhost/kinship", cfg.Store.DatabaseURL)
		assert.Equal(t, 30*time.Second, cfg.Redis.PersonTTL)
		assert.InDelta(t, 0.5, cfg.Match.RatePerSecond, 1e-9)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	})

	t.Run("malformed values fall back", func(t *testing.T) {
		t.Setenv("PERSON_CACHE_TTL", "soon")
		t.Setenv("MATCH_BURST", "-3")

		cfg := FromEnv()

		assert.Equal(t, time.Minute, cfg.Redis.PersonTTL)
		assert.Equal(t, 5, cfg.Match.Burst)
	})
}
