package integration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/shared"
	"github.com/erp/storesync/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncLedgerService appends and reads sync ledger entries
type SyncLedgerService struct {
	repo   integration.SyncLogRepository
	logger *zap.Logger
}

// NewSyncLedgerService creates a new SyncLedgerService
func NewSyncLedgerService(repo integration.SyncLogRepository, logger *zap.Logger) *SyncLedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncLedgerService{repo: repo, logger: logger}
}

// Record appends one immutable entry
func (s *SyncLedgerService) Record(
	ctx context.Context,
	kind integration.SyncKind,
	op integration.SyncOperation,
	actor *uuid.UUID,
	items []string,
	errs []integration.SyncError,
) (*integration.SyncLogEntry, error) {
	entry, err := integration.NewSyncLogEntry(kind, op, actor, items, errs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append sync log: %w", err)
	}

	s.logger.Info("Sync ledger entry recorded",
		zap.String("sync_type", kind.String()),
		zap.String("operation", string(op)),
		zap.Int("items", len(entry.Items)),
		zap.Int("errors", len(entry.Errors)),
	)
	return entry, nil
}

// LastSuccessfulSync returns the newest entry time of kind, or nil when a
// reset at or after that time invalidated it
func (s *SyncLedgerService) LastSuccessfulSync(ctx context.Context, kind integration.SyncKind) (*time.Time, error) {
	latest, err := s.repo.LatestCreatedAt(ctx, kind)
	if err != nil || latest == nil {
		return nil, err
	}
	reset, err := s.repo.LatestResetAt(ctx, kind)
	if err != nil {
		return nil, err
	}
	if reset != nil && !reset.Before(*latest) {
		return nil, nil
	}
	return latest, nil
}

// List returns one page of entries, newest first
func (s *SyncLedgerService) List(ctx context.Context, filter SyncLogListFilter) (*SyncLogListResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sync_ledger", "list")
	defer span.End()

	f := integration.SyncLogFilter{
		Kind:     integration.SyncKind(filter.Kind),
		Term:     strings.TrimSpace(filter.Term),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if f.Kind != "" && !f.Kind.IsValid() {
		return nil, integration.ErrInvalidSyncKind
	}
	if !filter.From.IsZero() {
		from := filter.From.UTC()
		f.From = &from
	}
	if !filter.To.IsZero() {
		to := filter.To.UTC()
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, shared.NewDomainError("INVALID_INPUT", "to must not be before from")
	}
	if filter.Operation != "" {
		op := integration.SyncOperation(filter.Operation)
		if filter.Operation == "none" {
			op = integration.SyncOperationNone
		}
		if !op.IsValid() {
			return nil, integration.ErrInvalidSyncOperation
		}
		f.Operation = &op
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}

	entries, total, err := s.repo.List(ctx, f)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	items := make([]SyncLogResponse, len(entries))
	for i := range entries {
		items[i] = ToSyncLogResponse(&entries[i])
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrItemsCount, len(items))
	return &SyncLogListResponse{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}
