package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/storesync/internal/domain/trade"
)

func newTestInvoice(remoteOrderID int64, lines ...uuid.UUID) *trade.Invoice {
	inv := trade.NewRemoteInvoice(remoteOrderID, uuid.New(), remoteOrderID, "WC-1001",
		time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), nil)
	inv.ApplyTotals(trade.InvoiceTotals{
		SubTotal:      decimal.NewFromInt(40),
		Discount:      decimal.NewFromInt(10),
		DiscountType:  trade.DiscountPercent,
		TransportCost: decimal.NewFromInt(5),
		DeliveryPlace: "Main St 1",
	})
	for _, productID := range lines {
		inv.LineItems = append(inv.LineItems,
			inv.NewLineItem(productID, 2, decimal.NewFromInt(10), decimal.NewFromInt(6), decimal.Zero))
	}
	return inv
}

func linesByProduct(lines []trade.InvoiceLineItem) map[uuid.UUID]trade.InvoiceLineItem {
	out := make(map[uuid.UUID]trade.InvoiceLineItem, len(lines))
	for _, l := range lines {
		out[l.ProductID] = l
	}
	return out
}

func TestGormInvoiceRepository_CreateAndFind(t *testing.T) {
	repo := NewGormInvoiceRepository(setupTestDB(t))
	ctx := context.Background()
	p1, p2 := uuid.New(), uuid.New()

	inv := newTestInvoice(501, p1, p2)
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.FindByRemoteOrderID(ctx, 501)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, "WC-1001", got.RemoteOrderNumber)
	assert.Equal(t, trade.DiscountPercent, got.DiscountType)
	assert.True(t, decimal.NewFromInt(41).Equal(got.GrandTotal()))
	require.Len(t, got.LineItems, 2)
	lines := linesByProduct(got.LineItems)
	assert.Equal(t, inv.ID, lines[p1].InvoiceID)
	assert.Equal(t, int64(2), lines[p2].Quantity)

	_, err = repo.FindByRemoteOrderID(ctx, 999)
	assert.ErrorIs(t, err, trade.ErrInvoiceNotFound)
}

func TestGormInvoiceRepository_FindRemote(t *testing.T) {
	repo := NewGormInvoiceRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestInvoice(7)))
	require.NoError(t, repo.Create(ctx, newTestInvoice(3)))
	local := newTestInvoice(9)
	local.RemoteOrderID = nil
	require.NoError(t, repo.Create(ctx, local))

	remote, err := repo.FindRemote(ctx)
	require.NoError(t, err)
	require.Len(t, remote, 2)
	assert.Equal(t, int64(3), *remote[0].RemoteOrderID)
	assert.Equal(t, int64(7), *remote[1].RemoteOrderID)
	assert.Empty(t, remote[0].LineItems)
}

func TestGormInvoiceRepository_Update(t *testing.T) {
	repo := NewGormInvoiceRepository(setupTestDB(t))
	ctx := context.Background()
	inv := newTestInvoice(12)
	require.NoError(t, repo.Create(ctx, inv))

	modified := time.Date(2026, 4, 3, 8, 0, 0, 0, time.UTC)
	inv.MirrorRemote("completed", &modified, true)
	inv.ApplyTotals(trade.InvoiceTotals{SubTotal: decimal.NewFromInt(50)})
	require.NoError(t, repo.Update(ctx, inv))

	got, err := repo.FindByRemoteOrderID(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.RemoteOrderStatus)
	assert.True(t, got.IsPaid)
	require.NotNil(t, got.RemoteModifiedAt)
	assert.True(t, modified.Equal(*got.RemoteModifiedAt))
	assert.Equal(t, trade.DiscountFixed, got.DiscountType)
	assert.True(t, decimal.NewFromInt(50).Equal(got.SubTotal))

	ghost := newTestInvoice(13)
	assert.ErrorIs(t, repo.Update(ctx, ghost), trade.ErrInvoiceNotFound)
}

func TestGormInvoiceRepository_ApplyLineItemDiff(t *testing.T) {
	repo := NewGormInvoiceRepository(setupTestDB(t))
	ctx := context.Background()
	keep, change, drop, add := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	inv := newTestInvoice(20, keep, change, drop)
	require.NoError(t, repo.Create(ctx, inv))
	current, err := repo.FindLineItems(ctx, inv.ID)
	require.NoError(t, err)
	before := linesByProduct(current)

	desired := []trade.InvoiceLineItem{
		inv.NewLineItem(keep, 2, decimal.NewFromInt(10), decimal.NewFromInt(6), decimal.Zero),
		inv.NewLineItem(change, 5, decimal.NewFromInt(10), decimal.NewFromInt(6), decimal.Zero),
		inv.NewLineItem(add, 1, decimal.NewFromInt(3), decimal.NewFromInt(1), decimal.Zero),
	}
	diff := trade.DiffLineItems(current, desired)
	require.Len(t, diff.Insert, 1)
	require.Len(t, diff.Update, 1)
	require.Len(t, diff.Delete, 1)
	require.NoError(t, repo.ApplyLineItemDiff(ctx, diff))

	after, err := repo.FindLineItems(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, after, 3)
	lines := linesByProduct(after)
	assert.Equal(t, before[keep].ID, lines[keep].ID)
	assert.Equal(t, before[change].ID, lines[change].ID, "updated lines keep their id")
	assert.Equal(t, int64(5), lines[change].Quantity)
	assert.Contains(t, lines, add)
	assert.NotContains(t, lines, drop)

	assert.NoError(t, repo.ApplyLineItemDiff(ctx, trade.LineItemDiff{}))
}

func TestGormInvoiceReturnRepository(t *testing.T) {
	db := setupTestDB(t)
	invoices := NewGormInvoiceRepository(db)
	returns := NewGormInvoiceReturnRepository(db)
	ctx := context.Background()
	product := uuid.New()

	inv := newTestInvoice(30, product)
	require.NoError(t, invoices.Create(ctx, inv))

	none, err := returns.FindByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	ret := trade.NewInvoiceReturn(1, inv.ID, uuid.New(), "refunded", decimal.NewFromInt(41), time.Now().UTC(), nil)
	assert.True(t, ret.AddLine(product, 2, decimal.NewFromInt(10)))
	assert.False(t, ret.AddLine(uuid.New(), 0, decimal.NewFromInt(10)))
	require.NoError(t, returns.Create(ctx, ret))

	found, err := returns.FindByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "refunded", found[0].Reason)
	assert.True(t, decimal.NewFromInt(41).Equal(found[0].Total))
	require.Len(t, found[0].LineItems, 1)
	assert.Equal(t, product, found[0].LineItems[0].ProductID)
	assert.Equal(t, ret.ID, found[0].LineItems[0].ReturnID)
}
