package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers supported for API token persistence.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// ErrMissingClientSecret is returned when AUTH_CLIENT_SECRET is not configured.
var ErrMissingClientSecret = errors.New("AUTH_CLIENT_SECRET is required")

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Links    LinksConfig
	Features FeaturesConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	URL                   string
	RequestTimeoutSeconds int
}

// StoreConfig selects the API token store backend.
type StoreConfig struct {
	Driver     string
	SQLitePath string
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

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	ClientSecret      string
	Audience          string
	SessionTTLSeconds int
	LeewaySeconds     int
}

// LinksConfig holds base URLs used for annotation links.
type LinksConfig struct {
	BouncerURL string
}

// FeaturesConfig holds feature flag defaults used when the flag store has no value.
type FeaturesConfig struct {
	DirectLinking bool
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
			Name:                  getEnv("APP_NAME", "annotation-auth"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			URL:                   getEnv("APP_URL", "http://localhost:8080"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
			SQLitePath: getEnv("SQLITE_PATH", "data/tokens.db"),
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
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			ClientSecret:      os.Getenv("AUTH_CLIENT_SECRET"),
			Audience:          os.Getenv("AUTH_AUDIENCE"),
			SessionTTLSeconds: getEnvAsInt("AUTH_SESSION_TTL_SECONDS", 3600),
			LeewaySeconds:     getEnvAsInt("AUTH_LEEWAY_SECONDS", 240),
		},
		Links: LinksConfig{
			BouncerURL: os.Getenv("LINKS_BOUNCER_URL"),
		},
		Features: FeaturesConfig{
			DirectLinking: getEnvAsBool("FEATURE_DIRECT_LINKING", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that must never fall back to a default.
func (c *Config) Validate() error {
	if c.Auth.ClientSecret == "" {
		return ErrMissingClientSecret
	}
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverSQLite:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q", c.Store.Driver)
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

// SessionTTL returns the lifetime of issued session tokens.
func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLSeconds) * time.Second
}

// Leeway returns the clock skew tolerated when verifying session tokens.
func (a AuthConfig) Leeway() time.Duration {
	if a.LeewaySeconds < 0 {
		return 0
	}
	return time.Duration(a.LeewaySeconds) * time.Second
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
