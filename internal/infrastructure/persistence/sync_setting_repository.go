package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSyncSettingRepository implements SyncSettingRepository using GORM
type GormSyncSettingRepository struct {
	db *gorm.DB
}

// NewGormSyncSettingRepository creates a new GormSyncSettingRepository
func NewGormSyncSettingRepository(db *gorm.DB) *GormSyncSettingRepository {
	return &GormSyncSettingRepository{db: db}
}

// Get returns the stored value and whether the setting exists
func (r *GormSyncSettingRepository) Get(ctx context.Context, name string) (string, bool, error) {
	var model models.SyncSettingModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.Value, true, nil
}

// Set upserts one setting
func (r *GormSyncSettingRepository) Set(ctx context.Context, name, value string) error {
	return upsertSetting(r.db.WithContext(ctx), name, value)
}

// SetMany upserts several settings in one transaction
func (r *GormSyncSettingRepository) SetMany(ctx context.Context, values map[string]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, value := range values {
			if err := upsertSetting(tx, name, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// All returns every stored setting
func (r *GormSyncSettingRepository) All(ctx context.Context) (map[string]string, error) {
	var rows []models.SyncSettingModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Name] = row.Value
	}
	return values, nil
}

func upsertSetting(db *gorm.DB, name, value string) error {
	model := &models.SyncSettingModel{Name: name, Value: value, UpdatedAt: time.Now().UTC()}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(model).Error
}

// Ensure GormSyncSettingRepository implements SyncSettingRepository
var _ integration.SyncSettingRepository = (*GormSyncSettingRepository)(nil)
