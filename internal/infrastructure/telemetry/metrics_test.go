package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"

	"github.com/erp/storesync/internal/infrastructure/telemetry"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(m metricdata.Metrics) int64 {
	var total int64
	if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
		for _, dp := range sum.DataPoints {
			total += dp.Value
		}
	}
	return total
}

func TestSyncMetrics_RecordRun(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewSyncMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordRun(ctx, "products", 3, 2, 1500*time.Millisecond)
	m.RecordRun(ctx, "orders", 0, 0, time.Second)
	m.RecordErrors(ctx, "products", "batch_item_failed", 2)
	m.RecordErrors(ctx, "products", "ignored", 0)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(metrics["storesync.sync.runs"]))
	assert.Equal(t, int64(5), sumOf(metrics["storesync.sync.items"]))
	assert.Equal(t, int64(2), sumOf(metrics["storesync.sync.errors"]))

	hist, ok := metrics["storesync.sync.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestSyncMetrics_NilIsNoop(t *testing.T) {
	var m *telemetry.SyncMetrics
	assert.NotPanics(t, func() {
		m.RecordRun(context.Background(), "products", 1, 1, time.Second)
		m.RecordErrors(context.Background(), "products", "x", 1)
	})
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}
