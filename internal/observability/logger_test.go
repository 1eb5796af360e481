package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/ev-demand-service/internal/config"
)

func TestNewLogger_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "text"})

	assert.Same(t, logger, slog.Default())
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

func TestNewLogger_DebugLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()
	m.Analyses.WithLabelValues("analyze").Inc()
	m.BatchSkipped.Inc()
	m.AreasStored.Set(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Analyses.WithLabelValues("analyze")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchSkipped))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AreasStored))
	assert.NotNil(t, m.LookupDuration)
}
