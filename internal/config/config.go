package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/omar3814/baeed-wa-qareeb-store/pkg/config"
)

// Catalog backends.
const (
	CatalogPostgres = "postgres"
	CatalogREST     = "rest"
)

// State backends.
const (
	StateRedis  = "redis"
	StateMemory = "memory"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Version     string `env:"SERVICE_VERSION" envDefault:"dev"`

	// HTTP server
	HTTPPort        int           `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Basket and quick view state
	StateBackend string `env:"STATE_BACKEND" envDefault:"redis"`
	RedisAddr    string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass    string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB      int    `env:"REDIS_DB" envDefault:"0"`
	StateTTL     int    `env:"STATE_TTL_HOURS" envDefault:"720"`

	// Catalog
	CatalogBackend     string        `env:"CATALOG_BACKEND" envDefault:"postgres"`
	CatalogRESTURL     string        `env:"CATALOG_REST_URL"`
	CatalogRESTAPIKey  string        `env:"CATALOG_REST_API_KEY"`
	CatalogRESTTimeout time.Duration `env:"CATALOG_REST_TIMEOUT" envDefault:"10s"`
	CatalogCacheMaxAge time.Duration `env:"CATALOG_CACHE_MAX_AGE" envDefault:"60s"`

	// PostgreSQL
	PostgresHost     string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPassword string        `env:"POSTGRES_PASSWORD" envDefault:""`
	PostgresDB       string        `env:"STOREFRONT_DB_NAME" envDefault:"storefront"`
	PostgresSSLMode  string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	RunMigrations    bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	SlowQuery        time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Auth
	JWTSecret   string `env:"AUTH_JWT_SECRET"`
	JWTAudience string `env:"AUTH_JWT_AUDIENCE" envDefault:"authenticated"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELInsecure   bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// HTTP edge
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimitRPS       float64  `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StateTTLDuration returns the state TTL as a duration.
func (c *Config) StateTTLDuration() time.Duration {
	return time.Duration(c.StateTTL) * time.Hour
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.StateTTL < 1 {
		return fmt.Errorf("STATE_TTL_HOURS must be positive, got %d", c.StateTTL)
	}

	switch c.StateBackend {
	case StateRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis state backend")
		}
	case StateMemory:
	default:
		return fmt.Errorf("unknown STATE_BACKEND %q", c.StateBackend)
	}

	switch c.CatalogBackend {
	case CatalogPostgres:
		if c.PostgresPort < 1 || c.PostgresPort > 65535 {
			return fmt.Errorf("invalid POSTGRES_PORT: %d", c.PostgresPort)
		}
	case CatalogREST:
		if c.CatalogRESTURL == "" {
			return fmt.Errorf("CATALOG_REST_URL is required for the rest catalog backend")
		}
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", c.CatalogBackend)
	}

	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.Environment == "production" && c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least 32 characters in production")
	}
	return nil
}
