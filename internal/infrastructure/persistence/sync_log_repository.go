package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const (
	defaultSyncLogPageSize = 20
	maxSyncLogPageSize     = 100
)

// likeEscaper makes a search term match literally inside LIKE ... ESCAPE '\'
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// GormSyncLogRepository implements the append-only SyncLogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Append inserts one ledger entry
func (r *GormSyncLogRepository) Append(ctx context.Context, entry *integration.SyncLogEntry) error {
	model := &models.SyncLogModel{}
	if err := model.FromDomain(entry); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// LatestCreatedAt returns the newest entry time of kind, ignoring failed passes
func (r *GormSyncLogRepository) LatestCreatedAt(ctx context.Context, kind integration.SyncKind) (*time.Time, error) {
	return r.latest(r.db.WithContext(ctx).
		Where("sync_type = ? AND operation <> ?", kind, integration.SyncOperationFailed))
}

// LatestResetAt returns the newest reset entry time of kind
func (r *GormSyncLogRepository) LatestResetAt(ctx context.Context, kind integration.SyncKind) (*time.Time, error) {
	return r.latest(r.db.WithContext(ctx).
		Where("sync_type = ? AND operation = ?", kind, integration.SyncOperationReset))
}

func (r *GormSyncLogRepository) latest(query *gorm.DB) (*time.Time, error) {
	var model models.SyncLogModel
	if err := query.Order("created_at DESC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	t := model.CreatedAt.UTC()
	return &t, nil
}

// List returns one page of entries, newest first, with the total count
func (r *GormSyncLogRepository) List(ctx context.Context, filter integration.SyncLogFilter) ([]integration.SyncLogEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SyncLogModel{})
	if filter.Kind != "" {
		query = query.Where("sync_type = ?", filter.Kind)
	}
	if filter.Operation != nil {
		query = query.Where("operation = ?", *filter.Operation)
	}
	if term := strings.TrimSpace(filter.Term); term != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		query = query.Where(
			"(LOWER(sync_type) LIKE ? ESCAPE '\\' OR LOWER(operation) LIKE ? ESCAPE '\\' OR "+
				"LOWER(CAST(affected_items AS TEXT)) LIKE ? ESCAPE '\\' OR LOWER(CAST(created_by AS TEXT)) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = defaultSyncLogPageSize
	}
	if size > maxSyncLogPageSize {
		size = maxSyncLogPageSize
	}

	var rows []models.SyncLogModel
	if err := query.Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]integration.SyncLogEntry, 0, len(rows))
	for i := range rows {
		entry, err := rows[i].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *entry)
	}
	return entries, total, nil
}

// Ensure GormSyncLogRepository implements SyncLogRepository
var _ integration.SyncLogRepository = (*GormSyncLogRepository)(nil)
