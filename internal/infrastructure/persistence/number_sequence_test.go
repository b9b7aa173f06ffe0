package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/erp/storesync/internal/domain/trade"
)

func TestGormNumberSequence_Next(t *testing.T) {
	db := setupTestDB(t)
	seq := NewGormNumberSequence(db)
	ctx := context.Background()

	t.Run("starts at one on an empty table", func(t *testing.T) {
		n, err := seq.Next(ctx, trade.SequenceReturn)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = seq.Next(ctx, trade.SequenceReturn)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("continues after numbers already in use", func(t *testing.T) {
		invoices := NewGormInvoiceRepository(db)
		for i, no := range []int64{7, 41} {
			inv := trade.NewRemoteInvoice(no, uuid.New(), int64(900+i), "900", time.Now().UTC(), nil)
			require.NoError(t, invoices.Create(ctx, inv))
		}

		n, err := seq.Next(ctx, trade.SequenceInvoice)
		require.NoError(t, err)
		assert.Equal(t, int64(42), n)
	})

	t.Run("unknown names start at one", func(t *testing.T) {
		n, err := seq.Next(ctx, "voucher")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("rolled back increments are reused", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			n, err := NewGormNumberSequence(tx).Next(ctx, trade.SequenceClient)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		n, err := seq.Next(ctx, trade.SequenceClient)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
