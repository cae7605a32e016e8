package config

import (
	"os"
	"strconv"
	"time"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	MetricsAddr    string
	RequestTimeout time.Duration
	LogLevel       string
	LogFormat      string

	Store Store
	Redis RedisConfig
	Auth  Auth
	Match MatchThrottle
}

// Store selects and locates the person/relationship store.
type Store struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
}

// RedisConfig configures the optional person cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PersonTTL    time.Duration
}

// Auth configures bearer token validation.
type Auth struct {
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

// MatchThrottle bounds duplicate searches per requester.
type MatchThrottle struct {
	RatePerSecond float64
	Burst         int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:           envOr("KINSHIP_ADDR", ":8080"),
		MetricsAddr:    envOr("METRICS_ADDR", ":9090"),
		RequestTimeout: durationOr("REQUEST_TIMEOUT", 10*time.Second),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		LogFormat:      envOr("LOG_FORMAT", "json"),
		Store: Store{
			Driver:      envOr("STORE_DRIVER", DriverMemory),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			SQLitePath:  envOr("SQLITE_PATH", "kinship.db"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PersonTTL:    durationOr("PERSON_CACHE_TTL", time.Minute),
		},
		Auth: Auth{
			JWTSigningKey: jwtSigningKey,
			JWTIssuer:     envOr("JWT_ISSUER", "kinship"),
			JWTAudience:   envOr("JWT_AUDIENCE", "kinship-api"),
		},
		Match: MatchThrottle{
			RatePerSecond: floatOr("MATCH_RATE_PER_SECOND", 2),
			Burst:         intOr("MATCH_BURST", 5),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func floatOr(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && f > 0 {
		return f
	}
	return fallback
}
