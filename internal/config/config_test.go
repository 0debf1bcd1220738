package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 720, cfg.StateTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.StateTTLDuration())
	assert.Equal(t, CatalogPostgres, cfg.CatalogBackend)
	assert.Equal(t, StateRedis, cfg.StateBackend)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, time.Minute, cfg.CatalogCacheMaxAge)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "2.0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_RESTBackendRequiresURL(t *testing.T) {
	t.Setenv("CATALOG_BACKEND", "rest")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CATALOG_REST_URL")

	t.Setenv("CATALOG_REST_URL", "https://backend.example.com/rest/v1")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, CatalogREST, cfg.CatalogBackend)
}

func TestLoad_UnknownBackends(t *testing.T) {
	t.Setenv("CATALOG_BACKEND", "mongo")
	_, err := Load()
	assert.ErrorContains(t, err, "unknown CATALOG_BACKEND")

	t.Setenv("CATALOG_BACKEND", "postgres")
	t.Setenv("STATE_BACKEND", "disk")
	_, err = Load()
	assert.ErrorContains(t, err, "unknown STATE_BACKEND")
}

func TestLoad_MemoryStateBackend(t *testing.T) {
	t.Setenv("STATE_BACKEND", "memory")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, StateMemory, cfg.StateBackend)
}

func TestLoad_NonPositiveTTL(t *testing.T) {
	t.Setenv("STATE_TTL_HOURS", "0")

	_, err := Load()

	assert.ErrorContains(t, err, "STATE_TTL_HOURS")
}

func TestLoad_ShortSecretInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("AUTH_JWT_SECRET", "short")

	_, err := Load()

	assert.ErrorContains(t, err, "AUTH_JWT_SECRET")
}

func TestLoad_KafkaBrokersList(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com,https://admin.example.com")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Len(t, cfg.CORSAllowedOrigins, 2)
}
