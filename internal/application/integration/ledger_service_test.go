package integration_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appintegration "github.com/erp/storesync/internal/application/integration"
	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/shared"
)

func TestSyncLedgerService_Record(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()

	entry, err := env.ledger.Record(ctx, integration.SyncKindOrders, integration.SyncOperationCreated, nil,
		[]string{"501"}, []integration.SyncError{{ErrorType: integration.ErrorTypeCustomerFetchFailed, OrderNumber: "501"}})
	require.NoError(t, err)
	assert.True(t, entry.HasErrors())

	entries := env.ledgerEntries(t, integration.SyncKindOrders)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, []string{"501"}, entries[0].Items)
	assert.Equal(t, "501", entries[0].Errors[0].OrderNumber)

	_, err = env.ledger.Record(ctx, integration.SyncKind("stock"), integration.SyncOperationCreated, nil, nil, nil)
	assert.True(t, errors.Is(err, integration.ErrInvalidSyncKind))
}

func TestSyncLedgerService_LastSuccessfulSync(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()
	kind := integration.SyncKindProducts

	last, err := env.ledger.LastSuccessfulSync(ctx, kind)
	require.NoError(t, err)
	assert.Nil(t, last, "empty ledger has no cursor")

	first, err := env.ledger.Record(ctx, kind, integration.SyncOperationCreated, nil, []string{"Hammer"}, nil)
	require.NoError(t, err)
	last, err = env.ledger.LastSuccessfulSync(ctx, kind)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.WithinDuration(t, first.CreatedAt, *last, time.Millisecond)

	t.Run("failed passes are ignored", func(t *testing.T) {
		_, err := env.ledger.Record(ctx, kind, integration.SyncOperationFailed, nil, nil, nil)
		require.NoError(t, err)
		last, err := env.ledger.LastSuccessfulSync(ctx, kind)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.WithinDuration(t, first.CreatedAt, *last, time.Millisecond)
	})

	t.Run("other kinds do not interfere", func(t *testing.T) {
		_, err := env.ledger.Record(ctx, integration.SyncKindCategories, integration.SyncOperationReset, nil, nil, nil)
		require.NoError(t, err)
		last, err := env.ledger.LastSuccessfulSync(ctx, kind)
		require.NoError(t, err)
		assert.NotNil(t, last)
	})

	t.Run("reset invalidates the cursor", func(t *testing.T) {
		_, err := env.ledger.Record(ctx, kind, integration.SyncOperationReset, nil, nil, nil)
		require.NoError(t, err)
		last, err := env.ledger.LastSuccessfulSync(ctx, kind)
		require.NoError(t, err)
		assert.Nil(t, last)
	})

	t.Run("a pass after the reset sets a new cursor", func(t *testing.T) {
		next, err := env.ledger.Record(ctx, kind, integration.SyncOperationNone, nil, nil, nil)
		require.NoError(t, err)
		last, err := env.ledger.LastSuccessfulSync(ctx, kind)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.WithinDuration(t, next.CreatedAt, *last, time.Millisecond)
	})
}

func TestSyncLedgerService_List(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()

	for _, op := range []integration.SyncOperation{
		integration.SyncOperationCreated,
		integration.SyncOperationUpdated,
		integration.SyncOperationNone,
	} {
		_, err := env.ledger.Record(ctx, integration.SyncKindOrders, op, nil, nil, nil)
		require.NoError(t, err)
	}
	_, err := env.ledger.Record(ctx, integration.SyncKindProducts, integration.SyncOperationReset, nil, nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		filter  appintegration.SyncLogListFilter
		total   int64
		items   int
		wantErr error
	}{
		{name: "everything", filter: appintegration.SyncLogListFilter{}, total: 4, items: 4},
		{name: "by kind", filter: appintegration.SyncLogListFilter{Kind: "orders"}, total: 3, items: 3},
		{name: "by operation", filter: appintegration.SyncLogListFilter{Operation: "reset"}, total: 1, items: 1},
		{name: "no-op passes", filter: appintegration.SyncLogListFilter{Kind: "orders", Operation: "none"}, total: 1, items: 1},
		{name: "second page", filter: appintegration.SyncLogListFilter{Page: 2, PageSize: 3}, total: 4, items: 1},
		{name: "unknown kind", filter: appintegration.SyncLogListFilter{Kind: "stock"}, wantErr: integration.ErrInvalidSyncKind},
		{name: "unknown operation", filter: appintegration.SyncLogListFilter{Operation: "deleted"}, wantErr: integration.ErrInvalidSyncOperation},
		{name: "term", filter: appintegration.SyncLogListFilter{Term: "  RESET "}, total: 1, items: 1},
		{name: "open range", filter: appintegration.SyncLogListFilter{From: time.Now().Add(-time.Hour)}, total: 4, items: 4},
		{name: "range in the past", filter: appintegration.SyncLogListFilter{To: time.Now().Add(-time.Hour)}, total: 0, items: 0},
		{name: "inverted range", filter: appintegration.SyncLogListFilter{From: time.Now(), To: time.Now().Add(-time.Hour)}, wantErr: shared.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.ledger.List(ctx, tt.filter)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.total, resp.Total)
			assert.Len(t, resp.Items, tt.items)
		})
	}

	resp, err := env.ledger.List(ctx, appintegration.SyncLogListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
	assert.Equal(t, "reset", resp.Items[0].Operation, "newest first")
}
