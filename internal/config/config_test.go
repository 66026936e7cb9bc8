package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RATE_LIMIT_MAX", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60, cfg.RateLimit.MaxRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "info@mindschool.com", cfg.Mail.ContactDestination)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, int64(10<<20), cfg.Storage.MaxUploadB)
	assert.Equal(t, int64(1<<30), cfg.Storage.MaxMediaB)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("EVENTS_ENABLED", "false")
	t.Setenv("AUTH_PROVIDER", "casdoor")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "casdoor", cfg.AuthProvider)
}

func TestEventConfig_GetKafkaBrokers(t *testing.T) {
	c := EventConfig{KafkaBrokers: "k1:9092,k2:9092"}
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.GetKafkaBrokers())
}

func TestLoadConfig_Tracing(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 0.1, cfg.Tracing.SampleRatio)
	assert.Nil(t, cfg.Tracing.Headers)

	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc, broken ,x-team = lms")
	t.Setenv("OTEL_SAMPLER_RATIO", "3")

	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "collector:4318", cfg.Tracing.Endpoint)
	assert.Equal(t, map[string]string{"x-api-key": "abc", "x-team": "lms"}, cfg.Tracing.Headers)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}
