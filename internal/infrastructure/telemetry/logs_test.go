package telemetry_test

import (
	"context"
	"sync"
	"testing"

	"github.com/donortrack/backend/internal/infrastructure/config"
	"github.com/donortrack/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func TestBridgeLogger(t *testing.T) {
	exp := &recordingExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp)))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	core, logs := observer.New(zapcore.DebugLevel)
	log := telemetry.BridgeLogger(zap.New(core), provider, "donortrack", zapcore.InfoLevel)

	log.Debug("cache miss")
	log.Warn("settlement replayed", zap.String("donation_id", "d-1"))

	// base output is untouched
	assert.Equal(t, 2, logs.Len())

	exp.mu.Lock()
	defer exp.mu.Unlock()
	require.Len(t, exp.records, 1)
	assert.Equal(t, "settlement replayed", exp.records[0].Body().AsString())
	assert.Equal(t, otellog.SeverityWarn, exp.records[0].Severity())
}

func TestDisabledLoggerProviderKeepsBase(t *testing.T) {
	base := zap.NewNop()
	lp, err := telemetry.NewLoggerProvider(context.Background(), config.TelemetryConfig{}, base)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.Same(t, base, lp.Bridge(base, "donortrack", zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(context.Background()))
}
