package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers understood by docstore.Open.
const (
	StoreDriverREST     = "rest"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Seating  SeatingConfig
	Holds    HoldsConfig
	Broker   BrokerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	TimeZone              string
}

// StoreConfig selects and configures the document store backing all collections.
type StoreConfig struct {
	Driver         string
	BaseURL        string
	AdminEmail     string
	AdminPassword  string
	TimeoutSeconds int
	CircuitBreaker bool
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines staff token parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// SeatingConfig tunes table assignment and hold windows.
type SeatingConfig struct {
	DefaultBlockMinutes int
	HoldMinutes         int
	FallbackPolicy      string
	BusyThreshold       int
	LockTTLSeconds      int
}

// HoldsConfig controls the periodic hold sweep.
type HoldsConfig struct {
	Enabled         bool
	IntervalSeconds int
}

// BrokerConfig holds the optional AMQP endpoint for staffing broadcasts.
type BrokerConfig struct {
	URL           string
	StaffingQueue string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "reservation-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			TimeZone:              getEnv("RESTAURANT_TZ", "UTC"),
		},
		Store: StoreConfig{
			Driver:         strings.ToLower(getEnv("STORE_DRIVER", StoreDriverREST)),
			BaseURL:        getEnv("STORE_URL", "http://127.0.0.1:8090"),
			AdminEmail:     os.Getenv("STORE_ADMIN_EMAIL"),
			AdminPassword:  os.Getenv("STORE_ADMIN_PASSWORD"),
			TimeoutSeconds: getEnvAsInt("STORE_TIMEOUT_SECONDS", 10),
			CircuitBreaker: getEnvAsBool("STORE_CIRCUIT_BREAKER", true),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 720),
		},
		Seating: SeatingConfig{
			DefaultBlockMinutes: getEnvAsInt("SEATING_BLOCK_MINUTES", 120),
			HoldMinutes:         getEnvAsInt("HOLD_WINDOW_MINUTES", 120),
			FallbackPolicy:      strings.ToLower(getEnv("SEATING_FALLBACK_POLICY", "seat_anyway")),
			BusyThreshold:       getEnvAsInt("SEATING_BUSY_THRESHOLD", 5),
			LockTTLSeconds:      getEnvAsInt("SEATING_LOCK_TTL_SECONDS", 10),
		},
		Holds: HoldsConfig{
			Enabled:         getEnvAsBool("HOLDS_WORKER_ENABLED", false),
			IntervalSeconds: getEnvAsInt("HOLDS_INTERVAL_SECONDS", 300),
		},
		Broker: BrokerConfig{
			URL:           os.Getenv("AMQP_URL"),
			StaffingQueue: getEnv("AMQP_STAFFING_QUEUE", "staffing.requested"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreDriverREST, StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Store.Driver == StoreDriverPostgres && c.Postgres.DSN == "" {
		return fmt.Errorf("POSTGRES_DSN required for STORE_DRIVER=%s", StoreDriverPostgres)
	}
	if _, err := time.LoadLocation(c.App.TimeZone); err != nil {
		return fmt.Errorf("invalid RESTAURANT_TZ: %w", err)
	}
	if c.Seating.DefaultBlockMinutes <= 0 {
		return fmt.Errorf("SEATING_BLOCK_MINUTES must be positive")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location resolves the restaurant time zone, defaulting to UTC.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Timeout returns the per-call store timeout.
func (s StoreConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// LockTTL returns how long a table+day lock is held at most.
func (s SeatingConfig) LockTTL() time.Duration {
	if s.LockTTLSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.LockTTLSeconds) * time.Second
}

// Interval returns the hold sweep period.
func (h HoldsConfig) Interval() time.Duration {
	if h.IntervalSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(h.IntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
