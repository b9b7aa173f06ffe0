package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/erp/storesync/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// IntervalTriggerConfig
// ---------------------------------------------------------------------------

// IntervalTriggerConfig holds the per-kind sync intervals. A zero interval
// disables scheduled passes of that kind.
type IntervalTriggerConfig struct {
	// CheckInterval is how often due kinds are looked for
	CheckInterval time.Duration
	// Intervals maps each kind to the time between scheduled passes
	Intervals map[integration.SyncKind]time.Duration
}

// DefaultIntervalTriggerConfig returns default configuration
func DefaultIntervalTriggerConfig() IntervalTriggerConfig {
	return IntervalTriggerConfig{
		CheckInterval: time.Minute,
		Intervals: map[integration.SyncKind]time.Duration{
			integration.SyncKindCategories: time.Hour,
			integration.SyncKindProducts:   time.Hour,
			integration.SyncKindOrders:     15 * time.Minute,
		},
	}
}

// ---------------------------------------------------------------------------
// IntervalTrigger
// ---------------------------------------------------------------------------

// IntervalTrigger submits a sync job for every kind whose interval elapsed
type IntervalTrigger struct {
	config    IntervalTriggerConfig
	scheduler *SyncScheduler
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastScheduledMu sync.RWMutex
	lastScheduled   map[integration.SyncKind]time.Time
}

// NewIntervalTrigger creates a new interval trigger
func NewIntervalTrigger(config IntervalTriggerConfig, scheduler *SyncScheduler, logger *zap.Logger) *IntervalTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntervalTrigger{
		config:        config,
		scheduler:     scheduler,
		logger:        logger,
		lastScheduled: make(map[integration.SyncKind]time.Time),
	}
}

// Start starts the trigger loop
func (c *IntervalTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}
	if c.config.CheckInterval <= 0 {
		return ErrInvalidConfig
	}
	c.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	fields := []zap.Field{zap.Duration("check_interval", c.config.CheckInterval)}
	for kind, interval := range c.config.Intervals {
		fields = append(fields, zap.Duration(kind.String()+"_interval", interval))
	}
	c.logger.Info("Sync interval trigger started", fields...)
	return nil
}

// Stop stops the trigger loop
func (c *IntervalTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Sync interval trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *IntervalTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	c.checkAndSchedule(time.Now())

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.checkAndSchedule(now)
		}
	}
}

// checkAndSchedule submits a job for every due kind. Categories go first so
// products find their categories linked.
func (c *IntervalTrigger) checkAndSchedule(now time.Time) {
	for _, kind := range []integration.SyncKind{
		integration.SyncKindCategories,
		integration.SyncKindProducts,
		integration.SyncKindOrders,
	} {
		if !c.isDue(kind, now) {
			continue
		}

		job, err := c.scheduler.ScheduleSync(kind)
		switch {
		case errors.Is(err, ErrJobAlreadyQueued):
			c.logger.Debug("Sync job still queued, not scheduling another", zap.String("sync_type", kind.String()))
			continue
		case err != nil:
			c.logger.Error("Failed to schedule sync job", zap.String("sync_type", kind.String()), zap.Error(err))
			continue
		}

		c.logger.Info("Scheduled sync job",
			zap.String("sync_type", kind.String()),
			zap.String("job_id", job.ID.String()),
		)
		c.lastScheduledMu.Lock()
		c.lastScheduled[kind] = now
		c.lastScheduledMu.Unlock()
	}
}

func (c *IntervalTrigger) isDue(kind integration.SyncKind, now time.Time) bool {
	interval := c.config.Intervals[kind]
	if interval <= 0 {
		return false
	}
	c.lastScheduledMu.RLock()
	last, ok := c.lastScheduled[kind]
	c.lastScheduledMu.RUnlock()
	return !ok || now.Sub(last) >= interval
}

// LastScheduled returns when kind was last submitted
func (c *IntervalTrigger) LastScheduled(kind integration.SyncKind) (time.Time, bool) {
	c.lastScheduledMu.RLock()
	defer c.lastScheduledMu.RUnlock()
	t, ok := c.lastScheduled[kind]
	return t, ok
}
