package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appintegration "github.com/erp/storesync/internal/application/integration"
	"github.com/erp/storesync/internal/domain/integration"
)

// SyncRunner is the trigger surface jobs are executed against
type SyncRunner interface {
	SyncAllProducts(ctx context.Context, actor *uuid.UUID) (*appintegration.SyncSummary, error)
	SyncCategories(ctx context.Context, actor *uuid.UUID, scope appintegration.SyncScope) (*appintegration.SyncSummary, error)
	SyncOrders(ctx context.Context, actor *uuid.UUID) (*appintegration.SyncSummary, error)
}

var _ SyncRunner = (*appintegration.SyncCoordinator)(nil)

// RunnerExecutor executes scheduled jobs through a SyncRunner. Scheduled
// category passes are incremental.
type RunnerExecutor struct {
	runner SyncRunner
	actor  *uuid.UUID
	logger *zap.Logger
}

// NewRunnerExecutor creates a new RunnerExecutor. Ledger entries of
// scheduled passes carry actor, which may be nil.
func NewRunnerExecutor(runner SyncRunner, actor *uuid.UUID, logger *zap.Logger) *RunnerExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunnerExecutor{runner: runner, actor: actor, logger: logger}
}

// Execute runs the pass for job.Kind
func (e *RunnerExecutor) Execute(ctx context.Context, job *SyncJob) error {
	var (
		summary *appintegration.SyncSummary
		err     error
	)
	switch job.Kind {
	case integration.SyncKindProducts:
		summary, err = e.runner.SyncAllProducts(ctx, e.actor)
	case integration.SyncKindCategories:
		summary, err = e.runner.SyncCategories(ctx, e.actor, appintegration.SyncScopeIncremental)
	case integration.SyncKindOrders:
		summary, err = e.runner.SyncOrders(ctx, e.actor)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedSyncKind, job.Kind)
	}
	if err != nil {
		return err
	}
	if !summary.Success {
		return fmt.Errorf("%w: %s", ErrSyncPassFailed, summary.Message)
	}

	job.Complete(summary.Created, summary.Updated, len(summary.Errors), summary.Partial)
	e.logger.Debug("Scheduled sync pass done",
		zap.String("job_id", job.ID.String()),
		zap.String("sync_type", job.Kind.String()),
		zap.String("message", summary.Message),
	)
	return nil
}
