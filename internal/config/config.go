package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the API server's configuration values.
// Tags like `envconfig:"APP_ENV"` name the environment variable, `default:""` supplies a fallback
// and `required:"true"` makes a variable mandatory.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // debug, info, warn, error
	Migrate    bool   `envconfig:"MIGRATE" default:"false"`       // apply the embedded schema at startup
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Postgres   PostgresConfig
	Admin      AdminConfig
	Catalog    CatalogConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
	// Comma separated; the browser storefront is served from a different origin than the API.
	AllowedOrigins []string `envconfig:"HTTP_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	// Per client IP, applied to feedback and admin login.
	RateLimitRPS   float64 `envconfig:"HTTP_RATE_LIMIT_RPS" default:"0.5"`
	RateLimitBurst int     `envconfig:"HTTP_RATE_LIMIT_BURST" default:"5"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// PostgresConfig holds PostgreSQL database connection details.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	DBName   string `envconfig:"POSTGRES_DBNAME" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName, pc.SSLMode)
}

// AdminConfig holds the demo admin account accepted by the login endpoint.
// Admin rows in the users table are accepted as well.
type AdminConfig struct {
	Email    string `envconfig:"ADMIN_EMAIL" default:"admin@buyzzle.com"`
	Password string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
}

// CatalogConfig tunes catalog listing.
type CatalogConfig struct {
	PageSize          int `envconfig:"CATALOG_PAGE_SIZE" default:"12"`
	RecommendedLimit  int `envconfig:"CATALOG_RECOMMENDED_LIMIT" default:"8"`
	RecentFeedbackMax int `envconfig:"CATALOG_RECENT_FEEDBACK" default:"5"`
}

// ClientConfig configures the shopper CLI: where the API lives and where local state is kept.
type ClientConfig struct {
	LogLevel   string        `envconfig:"LOG_LEVEL" default:"warn"`
	APIBaseURL string        `envconfig:"STOREFRONT_API_URL" default:"http://localhost:8080"`
	Timeout    time.Duration `envconfig:"STOREFRONT_API_TIMEOUT" default:"10s"`
	Storage    StorageConfig
	Redis      RedisConfig
}

// StorageConfig selects the backend for durable local state.
type StorageConfig struct {
	Backend string `envconfig:"STOREFRONT_STORAGE" default:"file"` // file, redis, memory
	Dir     string `envconfig:"STOREFRONT_STORAGE_DIR" default:".storefront"`
}

// RedisConfig holds Redis connection details for the redis storage backend.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Prefix   string `envconfig:"REDIS_KEY_PREFIX" default:"storefront:"`
}

// loadDotEnv reads .env from the working directory. A missing file is not an error:
// variables may come from the environment instead.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, relying on system environment", slog.String("error", err.Error()))
	}
}

// Load reads the server configuration from .env and the environment.
func Load() (*Config, error) {
	loadDotEnv()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if cfg.Catalog.PageSize <= 0 {
		return nil, fmt.Errorf("invalid CATALOG_PAGE_SIZE: %d", cfg.Catalog.PageSize)
	}
	return &cfg, nil
}

// LoadClient reads the shopper CLI configuration.
func LoadClient() (*ClientConfig, error) {
	loadDotEnv()
	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process client configuration: %w", err)
	}
	switch cfg.Storage.Backend {
	case "file", "redis", "memory":
	default:
		return nil, fmt.Errorf("invalid STOREFRONT_STORAGE: %q (want file, redis or memory)", cfg.Storage.Backend)
	}
	return &cfg, nil
}
