package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/storesync/internal/domain/finance"
	"github.com/erp/storesync/internal/domain/partner"
	"github.com/erp/storesync/internal/domain/shared"
)

func TestGormClientRepository_FindByEmail(t *testing.T) {
	repo := NewGormClientRepository(setupTestDB(t))
	ctx := context.Background()

	first := partner.NewClient(1, "Ada", "ADA@example.com ")
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, partner.NewClient(2, "Ada Again", "ada@example.com")))

	got, err := repo.FindByEmail(ctx, "  Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID, "oldest client wins")
	assert.Equal(t, "ada@example.com", got.Email)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, partner.ErrClientNotFound)
	_, err = repo.FindByEmail(ctx, "   ")
	assert.ErrorIs(t, err, partner.ErrClientNotFound)

	first.UpdateContact("", "+351 900", "Rua 1")
	require.NoError(t, repo.Save(ctx, first))
	byID, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)
	assert.Equal(t, "+351 900", byID.Phone)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, partner.ErrClientNotFound)
}

func TestGormTransactionRepository_Settlement(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewGormAccountRepository(db)
	txs := NewGormTransactionRepository(db)
	ctx := context.Background()

	account := &finance.Account{BaseEntity: shared.NewBaseEntity(), AccountNumber: "100", Name: "Web shop"}
	require.NoError(t, accounts.Save(ctx, account))
	_, err := accounts.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, finance.ErrAccountNotFound)

	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	invoiceID := uuid.New()
	credit, err := finance.NewAccountTransaction(account.ID, decimal.NewFromInt(41), finance.TransactionCredit, "order WC-1", day, nil)
	require.NoError(t, err)
	payment := finance.NewInvoicePayment(invoiceID, credit, "storefront payment")
	require.NoError(t, txs.CreateSettlement(ctx, credit, payment))

	debit, err := finance.NewAccountTransaction(account.ID, decimal.NewFromInt(41), finance.TransactionDebit, "refund WC-1", day.AddDate(0, 0, 1), nil)
	require.NoError(t, err)
	require.NoError(t, txs.Create(ctx, debit))

	payments, err := txs.FindPaymentsByInvoice(ctx, invoiceID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, credit.ID, payments[0].TransactionID)
	assert.True(t, decimal.NewFromInt(41).Equal(payments[0].Amount))

	ledger, err := txs.FindByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, finance.TransactionCredit, ledger[0].Type)
	assert.Equal(t, finance.TransactionDebit, ledger[1].Type)

	_, err = finance.NewAccountTransaction(account.ID, decimal.Zero, finance.TransactionCredit, "", day, nil)
	assert.ErrorIs(t, err, finance.ErrInvalidAmount)
}

func TestGormVatRateRepository_TaxRateLinks(t *testing.T) {
	repo := NewGormVatRateRepository(setupTestDB(t))
	ctx := context.Background()

	high, err := finance.NewVatRate("High", decimal.NewFromInt(21))
	require.NoError(t, err)
	low, err := finance.NewVatRate("Low", decimal.RequireFromString("6.5"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, high))
	require.NoError(t, repo.Save(ctx, low))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, low.ID, all[0].ID)
	assert.True(t, decimal.RequireFromString("6.5").Equal(all[0].Rate))
	assert.Nil(t, all[0].RemoteTaxRateID)

	taxID := int64(7)
	require.NoError(t, all[1].LinkTaxRate(&taxID))
	require.NoError(t, repo.SaveTaxRateLinks(ctx, all[1:]))

	found, err := repo.FindByIDs(ctx, []uuid.UUID{high.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.NotNil(t, found[0].RemoteTaxRateID)
	assert.Equal(t, int64(7), *found[0].RemoteTaxRateID)

	require.NoError(t, found[0].LinkTaxRate(nil))
	require.NoError(t, repo.SaveTaxRateLinks(ctx, found))
	found, err = repo.FindByIDs(ctx, []uuid.UUID{high.ID})
	require.NoError(t, err)
	assert.Nil(t, found[0].RemoteTaxRateID)

	t.Run("missing rate rolls back the batch", func(t *testing.T) {
		other := int64(8)
		require.NoError(t, found[0].LinkTaxRate(&other))
		ghost, err := finance.NewVatRate("Ghost", decimal.Zero)
		require.NoError(t, err)
		err = repo.SaveTaxRateLinks(ctx, []finance.VatRate{found[0], *ghost})
		assert.ErrorIs(t, err, finance.ErrVatRateNotFound)

		reloaded, err := repo.FindByIDs(ctx, []uuid.UUID{high.ID})
		require.NoError(t, err)
		assert.Nil(t, reloaded[0].RemoteTaxRateID)
	})

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
