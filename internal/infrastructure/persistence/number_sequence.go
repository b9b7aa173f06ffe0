package persistence

import (
	"context"
	"fmt"

	"github.com/erp/storesync/internal/domain/trade"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// sequenceSeed names the column a counter continues from on first use
type sequenceSeed struct {
	table  string
	column string
}

var sequenceSeeds = map[string]sequenceSeed{
	trade.SequenceInvoice: {table: "invoices", column: "invoice_no"},
	trade.SequenceReturn:  {table: "invoice_returns", column: "return_no"},
	trade.SequenceClient:  {table: "clients", column: "code"},
}

// GormNumberSequence implements NumberSequence with a counter row per name.
// The increment takes a row lock until the surrounding transaction ends, so
// concurrent passes never hand out the same number.
type GormNumberSequence struct {
	db *gorm.DB
}

// NewGormNumberSequence creates a new GormNumberSequence
func NewGormNumberSequence(db *gorm.DB) *GormNumberSequence {
	return &GormNumberSequence{db: db}
}

// Next increments and returns the named counter
func (s *GormNumberSequence) Next(ctx context.Context, name string) (int64, error) {
	var next int64
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		lastErr = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&models.NumberSequenceModel{}).
				Where("name = ?", name).
				UpdateColumn("value", gorm.Expr("value + 1"))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return s.seed(tx, name, &next)
			}
			var values []int64
			if err := tx.Model(&models.NumberSequenceModel{}).
				Where("name = ?", name).
				Pluck("value", &values).Error; err != nil {
				return err
			}
			if len(values) == 0 {
				return fmt.Errorf("number sequence %q vanished", name)
			}
			next = values[0]
			return nil
		})
		if lastErr == nil {
			return next, nil
		}
	}
	return 0, fmt.Errorf("number sequence %q: %w", name, lastErr)
}

// seed creates the counter, continuing after the highest number in use
func (s *GormNumberSequence) seed(tx *gorm.DB, name string, next *int64) error {
	var max int64
	if src, ok := sequenceSeeds[name]; ok {
		row := tx.Table(src.table).Select(fmt.Sprintf("COALESCE(MAX(%s), 0)", src.column)).Row()
		if err := row.Scan(&max); err != nil {
			return err
		}
	}
	model := &models.NumberSequenceModel{Name: name, Value: max + 1}
	if err := tx.Create(model).Error; err != nil {
		return err
	}
	*next = model.Value
	return nil
}

// Ensure GormNumberSequence implements NumberSequence
var _ trade.NumberSequence = (*GormNumberSequence)(nil)
