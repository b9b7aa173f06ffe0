package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SyncLogModel is the persistence model for a sync ledger entry. Rows are
// never updated.
type SyncLogModel struct {
	ID        uuid.UUID                 `gorm:"type:uuid;primary_key"`
	Kind      integration.SyncKind      `gorm:"column:sync_type;type:varchar(20);not null;index:idx_sync_log_kind_created,priority:1"`
	Operation integration.SyncOperation `gorm:"type:varchar(20);not null;default:''"`
	CreatedBy *uuid.UUID                `gorm:"type:uuid"`
	Items     datatypes.JSON            `gorm:"column:affected_items"`
	Errors    datatypes.JSON            `gorm:"column:errors"`
	CreatedAt time.Time                 `gorm:"not null;index:idx_sync_log_kind_created,priority:2"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the persistence model to a domain SyncLogEntry.
func (m *SyncLogModel) ToDomain() (*integration.SyncLogEntry, error) {
	entry := &integration.SyncLogEntry{
		ID:        m.ID,
		Kind:      m.Kind,
		Operation: m.Operation,
		CreatedBy: m.CreatedBy,
		Items:     []string{},
		Errors:    []integration.SyncError{},
		CreatedAt: m.CreatedAt,
	}
	if len(m.Items) > 0 {
		if err := json.Unmarshal(m.Items, &entry.Items); err != nil {
			return nil, fmt.Errorf("sync log %s: affected items: %w", m.ID, err)
		}
	}
	if len(m.Errors) > 0 {
		if err := json.Unmarshal(m.Errors, &entry.Errors); err != nil {
			return nil, fmt.Errorf("sync log %s: errors: %w", m.ID, err)
		}
	}
	return entry, nil
}

// FromDomain populates the persistence model from a domain SyncLogEntry.
func (m *SyncLogModel) FromDomain(e *integration.SyncLogEntry) error {
	items, err := json.Marshal(e.Items)
	if err != nil {
		return fmt.Errorf("sync log: affected items: %w", err)
	}
	errs, err := json.Marshal(e.Errors)
	if err != nil {
		return fmt.Errorf("sync log: errors: %w", err)
	}
	m.ID = e.ID
	m.Kind = e.Kind
	m.Operation = e.Operation
	m.CreatedBy = e.CreatedBy
	m.Items = datatypes.JSON(items)
	m.Errors = datatypes.JSON(errs)
	m.CreatedAt = e.CreatedAt
	return nil
}

// SyncSettingModel is one name/value row of the sync settings store.
type SyncSettingModel struct {
	Name      string    `gorm:"type:varchar(100);primaryKey"`
	Value     string    `gorm:"type:text;not null;default:''"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncSettingModel) TableName() string {
	return "sync_settings"
}

// NumberSequenceModel is a named counter for document numbers.
type NumberSequenceModel struct {
	Name  string `gorm:"type:varchar(50);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (NumberSequenceModel) TableName() string {
	return "number_sequences"
}
