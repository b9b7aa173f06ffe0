package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration
	ServiceName       string
	ServiceVersion    string
	Insecure          bool
}

// MeterProvider wraps the OpenTelemetry MeterProvider with lifecycle management.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
	config   MetricsConfig
}

// NewMeterProvider creates and configures a new MeterProvider.
// When metrics are disabled the global no-op meter is used.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{
		logger: logger,
		config: cfg,
	}

	if !cfg.Enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = time.Minute
	}

	exporterOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Shutdown flushes pending metrics and stops the exporter.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		mp.logger.Error("Error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Meter returns a named meter from the provider.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// IsEnabled returns whether metrics are enabled.
func (mp *MeterProvider) IsEnabled() bool {
	return mp.config.Enabled && mp.provider != nil
}

// Metric attribute keys
var (
	AttrSyncKind      = attribute.Key("sync_kind")
	AttrSyncOperation = attribute.Key("sync_operation")
	AttrErrorType     = attribute.Key("error_type")
)

// SyncDurationBuckets are histogram boundaries for whole sync passes (seconds).
var SyncDurationBuckets = []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600}

// SyncMetrics records counters and durations for sync passes.
type SyncMetrics struct {
	runs     metric.Int64Counter
	items    metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewSyncMetrics creates the sync instruments on meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	runs, err := meter.Int64Counter("storesync.sync.runs",
		metric.WithDescription("Completed sync passes"),
		metric.WithUnit("{run}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create runs counter: %w", err)
	}
	items, err := meter.Int64Counter("storesync.sync.items",
		metric.WithDescription("Records created or updated by sync passes"),
		metric.WithUnit("{item}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create items counter: %w", err)
	}
	errs, err := meter.Int64Counter("storesync.sync.errors",
		metric.WithDescription("Per-item and per-call sync errors"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create errors counter: %w", err)
	}
	duration, err := meter.Float64Histogram("storesync.sync.duration",
		metric.WithDescription("Duration of sync passes"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(SyncDurationBuckets...))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	return &SyncMetrics{runs: runs, items: items, errors: errs, duration: duration}, nil
}

// RecordRun records one finished pass of kind with its created/updated counts.
// A nil receiver is a no-op.
func (m *SyncMetrics) RecordRun(ctx context.Context, kind string, created, updated int, elapsed time.Duration) {
	if m == nil {
		return
	}
	kindAttr := AttrSyncKind.String(kind)
	m.runs.Add(ctx, 1, metric.WithAttributes(kindAttr))
	if created > 0 {
		m.items.Add(ctx, int64(created), metric.WithAttributes(kindAttr, AttrSyncOperation.String("created")))
	}
	if updated > 0 {
		m.items.Add(ctx, int64(updated), metric.WithAttributes(kindAttr, AttrSyncOperation.String("updated")))
	}
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(kindAttr))
}

// RecordErrors counts errors of one type for kind.
func (m *SyncMetrics) RecordErrors(ctx context.Context, kind, errorType string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.errors.Add(ctx, int64(n), metric.WithAttributes(AttrSyncKind.String(kind), AttrErrorType.String(errorType)))
}
