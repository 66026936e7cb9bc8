package observability

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracing_DisabledIsNoop(t *testing.T) {
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	shutdown, err := InitTracing(context.Background(), logger, config.TracingConfig{}, "lms-service", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewTracerProvider_StdoutExporter(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	cfg := config.TracingConfig{Enabled: true, SampleRatio: 1, Version: "1.2.3"}

	tp, err := NewTracerProvider(ctx, cfg, "lms-service", "test", &out)
	require.NoError(t, err)

	_, span := tp.Tracer(TracerName).Start(ctx, "course.enroll")
	span.SetAttributes(attribute.Int("curso_id", 7))
	span.End()
	require.NoError(t, tp.Shutdown(ctx))

	exported := out.String()
	assert.Contains(t, exported, "course.enroll")
	assert.Contains(t, exported, "lms-service")
	assert.Contains(t, exported, "1.2.3")
}

func TestNewTracerProvider_ZeroRatioDropsRootSpans(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	tp, err := NewTracerProvider(ctx, config.TracingConfig{SampleRatio: 0}, "lms-service", "test", &out)
	require.NoError(t, err)

	_, span := tp.Tracer(TracerName).Start(ctx, "dropped")
	assert.False(t, span.SpanContext().IsSampled())
	span.End()
	require.NoError(t, tp.Shutdown(ctx))
	assert.NotContains(t, out.String(), "dropped")
}

func TestNewTracerProvider_OTLPExporter(t *testing.T) {
	ctx := context.Background()
	cfg := config.TracingConfig{
		Enabled:     true,
		Endpoint:    "localhost:4318",
		Insecure:    true,
		Headers:     map[string]string{"x-api-key": "secret"},
		SampleRatio: 0.5,
	}

	tp, err := NewTracerProvider(ctx, cfg, "lms-service", "test", io.Discard)
	require.NoError(t, err)
	require.NoError(t, tp.Shutdown(ctx))
}
