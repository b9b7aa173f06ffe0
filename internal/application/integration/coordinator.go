package integration

import (
	"context"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/logger"
	"github.com/erp/storesync/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncCoordinator is the trigger surface shared by the HTTP handlers and the
// scheduler. Every pass holds the lock of its kind and runs under a deadline.
type SyncCoordinator struct {
	catalog *CatalogSyncService
	orders  *OrderSyncService
	locker  SyncLocker
	timeout time.Duration
	metrics *telemetry.SyncMetrics
	logger  *zap.Logger
}

// NewSyncCoordinator creates a new SyncCoordinator. A zero timeout disables the deadline.
func NewSyncCoordinator(
	catalog *CatalogSyncService,
	orders *OrderSyncService,
	locker SyncLocker,
	timeout time.Duration,
	logger *zap.Logger,
) *SyncCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = NewLocalSyncLocker()
	}
	return &SyncCoordinator{
		catalog: catalog,
		orders:  orders,
		locker:  locker,
		timeout: timeout,
		logger:  logger,
	}
}

// SetMetrics sets the instruments runs are recorded on
func (c *SyncCoordinator) SetMetrics(metrics *telemetry.SyncMetrics) {
	c.metrics = metrics
}

// SyncAllProducts pushes every active product
func (c *SyncCoordinator) SyncAllProducts(ctx context.Context, actor *uuid.UUID) (*SyncSummary, error) {
	return c.run(ctx, integration.SyncKindProducts, "sync", func(ctx context.Context) (*SyncSummary, error) {
		return c.catalog.SyncAllProducts(ctx, actor)
	})
}

// SyncProducts pushes one page of active products. page is zero based.
func (c *SyncCoordinator) SyncProducts(ctx context.Context, actor *uuid.UUID, pageSize, page int) (*SyncSummary, error) {
	return c.run(ctx, integration.SyncKindProducts, "sync", func(ctx context.Context) (*SyncSummary, error) {
		return c.catalog.SyncProducts(ctx, actor, pageSize, page)
	})
}

// SyncCategories pushes categories and subcategories
func (c *SyncCoordinator) SyncCategories(ctx context.Context, actor *uuid.UUID, scope SyncScope) (*SyncSummary, error) {
	return c.run(ctx, integration.SyncKindCategories, "sync", func(ctx context.Context) (*SyncSummary, error) {
		return c.catalog.SyncCategories(ctx, actor, scope)
	})
}

// SyncOrders pulls storefront orders into invoices
func (c *SyncCoordinator) SyncOrders(ctx context.Context, actor *uuid.UUID) (*SyncSummary, error) {
	return c.run(ctx, integration.SyncKindOrders, "sync", func(ctx context.Context) (*SyncSummary, error) {
		return c.orders.SyncOrders(ctx, actor)
	})
}

// ResetProducts unlinks every product
func (c *SyncCoordinator) ResetProducts(ctx context.Context, actor *uuid.UUID) (*SyncSummary, error) {
	return c.run(ctx, integration.SyncKindProducts, "reset", func(ctx context.Context) (*SyncSummary, error) {
		return c.catalog.ResetProducts(ctx, actor)
	})
}

// ResetCategories unlinks every category and subcategory
func (c *SyncCoordinator) ResetCategories(ctx context.Context, actor *uuid.UUID) (*SyncSummary, error) {
	return c.run(ctx, integration.SyncKindCategories, "reset", func(ctx context.Context) (*SyncSummary, error) {
		return c.catalog.ResetCategories(ctx, actor)
	})
}

func (c *SyncCoordinator) run(
	ctx context.Context,
	kind integration.SyncKind,
	action string,
	fn func(ctx context.Context) (*SyncSummary, error),
) (*SyncSummary, error) {
	release, err := c.locker.Acquire(ctx, kind)
	if err != nil {
		c.logger.Info("Sync skipped", zap.String("sync_type", kind.String()), zap.Error(err))
		return nil, err
	}
	defer release()

	ctx, log := logger.WithSyncRun(ctx, c.logger, kind.String()+":"+uuid.NewString())
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	log.Info("Sync started", zap.String("sync_type", kind.String()), zap.String("action", action))
	start := time.Now()
	var summary *SyncSummary
	telemetry.WithSyncLabels(ctx, kind.String(), action, func(ctx context.Context) {
		summary, err = fn(ctx)
	})
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.RecordErrors(ctx, kind.String(), "pass_failed", 1)
		logger.WithLogger(ctx, log).Error("Sync failed",
			zap.String("sync_type", kind.String()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	c.metrics.RecordRun(ctx, kind.String(), summary.Created, summary.Updated, elapsed)
	byType := make(map[string]int)
	for _, e := range summary.Errors {
		byType[e.ErrorType]++
	}
	for errorType, n := range byType {
		c.metrics.RecordErrors(ctx, kind.String(), errorType, n)
	}

	logger.WithLogger(ctx, log).Info("Sync finished",
		zap.String("sync_type", kind.String()),
		zap.String("action", action),
		zap.Bool("success", summary.Success),
		zap.Bool("partial", summary.Partial),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("errors", len(summary.Errors)),
		zap.Duration("elapsed", elapsed),
	)
	return summary, nil
}
