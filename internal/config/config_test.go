package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"AUTH_HTTP_BOOTSTRAP", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "LOG_QUIET_PATHS",
		"OTEL_ENABLED", "OTEL_SAMPLING_RATIO", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTLP_ENDPOINT",
		"OTEL_EXPORTER_OTLP_PROTOCOL", "OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "LEDGER_DRIVER",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.False(t, cfg.Bootstrap.HTTPEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "stdout", cfg.LogOutput)
	assert.Equal(t, []string{"/health", "/api/debug/health", "/metrics"}, cfg.QuietRequestPaths)
	assert.False(t, cfg.TracingEnabled)
	assert.Equal(t, 0.1, cfg.TraceSampleRatio)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "grpc", cfg.OTLPProtocol)
	assert.Equal(t, LedgerDriverGorm, cfg.LedgerDriver)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("AUTH_HTTP_BOOTSTRAP", "true")
	t.Setenv("LOG_LEVEL", " WARN ")
	t.Setenv("LOG_QUIET_PATHS", "/ping, /metrics")
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("OTEL_SAMPLING_RATIO", "not-a-number")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTLP_ENDPOINT", "ignored:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP")
	t.Setenv("LEDGER_DRIVER", "Mongo")

	cfg := Load()
	assert.True(t, cfg.Bootstrap.HTTPEnabled)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, []string{"/ping", "/metrics"}, cfg.QuietRequestPaths)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, 0.1, cfg.TraceSampleRatio)
	assert.Equal(t, "collector:4318", cfg.OTLPEndpoint)
	assert.Equal(t, "http", cfg.OTLPProtocol)
	assert.Equal(t, LedgerDriverMongo, cfg.LedgerDriver)
}
