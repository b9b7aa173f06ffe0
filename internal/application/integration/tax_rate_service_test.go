package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	appintegration "github.com/erp/storesync/internal/application/integration"
	"github.com/erp/storesync/internal/domain/finance"
	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/shared"
	"github.com/erp/storesync/internal/infrastructure/persistence"
)

type taxEnv struct {
	platform *fakePlatform
	vatRates *persistence.GormVatRateRepository
	service  *appintegration.TaxRateService
}

func newTaxEnv(t *testing.T) *taxEnv {
	t.Helper()
	db := setupTestDB(t)
	env := &taxEnv{
		platform: newFakePlatform(),
		vatRates: persistence.NewGormVatRateRepository(db),
	}
	env.platform.taxRates = []integration.TaxRate{
		{ID: 1, Name: "Standard", Rate: decimal.NewFromInt(21), Country: "NL", Class: "standard"},
		{ID: 2, Name: "Reduced", Rate: decimal.NewFromInt(9), Country: "NL", Class: "reduced-rate"},
	}
	env.service = appintegration.NewTaxRateService(env.platform, env.vatRates, zaptest.NewLogger(t))
	env.service.SetRetryPolicy(appintegration.RetryPolicy{MaxRetries: 1, Delay: time.Millisecond})
	return env
}

func (e *taxEnv) newVatRate(t *testing.T, name string, rate int64) *finance.VatRate {
	t.Helper()
	v, err := finance.NewVatRate(name, decimal.NewFromInt(rate))
	require.NoError(t, err)
	require.NoError(t, e.vatRates.Save(context.Background(), v))
	return v
}

func TestTaxRateService_ListRemoteTaxRates(t *testing.T) {
	env := newTaxEnv(t)
	env.platform.taxErrs = []error{integration.ErrPlatformUnavailable}

	rates, err := env.service.ListRemoteTaxRates(context.Background())
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, int64(1), rates[0].ID)
	assert.Equal(t, "Standard", rates[0].Name)
	assert.True(t, decimal.NewFromInt(21).Equal(rates[0].Rate))
	assert.Equal(t, 2, env.platform.taxCalls, "unavailable storefront is retried")

	t.Run("rejected request is not retried", func(t *testing.T) {
		env := newTaxEnv(t)
		env.platform.taxErrs = []error{integration.ErrPlatformRequestFailed}
		_, err := env.service.ListRemoteTaxRates(context.Background())
		assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)
		assert.Equal(t, 1, env.platform.taxCalls)
	})
}

func TestTaxRateService_MapVatRates(t *testing.T) {
	env := newTaxEnv(t)
	ctx := context.Background()
	standard := env.newVatRate(t, "High", 21)
	reduced := env.newVatRate(t, "Low", 9)

	one, two := int64(1), int64(2)
	rates, err := env.service.MapVatRates(ctx, appintegration.MapVatRatesRequest{Mappings: []appintegration.VatRateMapping{
		{VatRateID: standard.ID.String(), TaxRateID: &one},
		{VatRateID: reduced.ID.String(), TaxRateID: &two},
	}})
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, reduced.ID, rates[0].ID, "ordered by rate")
	assert.Equal(t, &two, rates[0].TaxRateID)
	assert.Equal(t, &one, rates[1].TaxRateID)

	t.Run("nil tax rate removes the link without a remote call", func(t *testing.T) {
		calls := env.platform.taxCalls
		rates, err := env.service.MapVatRates(ctx, appintegration.MapVatRatesRequest{Mappings: []appintegration.VatRateMapping{
			{VatRateID: reduced.ID.String()},
		}})
		require.NoError(t, err)
		assert.Nil(t, rates[0].TaxRateID)
		assert.Equal(t, &one, rates[1].TaxRateID)
		assert.Equal(t, calls, env.platform.taxCalls)
	})

	t.Run("unknown storefront tax rate writes nothing", func(t *testing.T) {
		missing := int64(99)
		_, err := env.service.MapVatRates(ctx, appintegration.MapVatRatesRequest{Mappings: []appintegration.VatRateMapping{
			{VatRateID: reduced.ID.String(), TaxRateID: &two},
			{VatRateID: standard.ID.String(), TaxRateID: &missing},
		}})
		assert.ErrorIs(t, err, integration.ErrUnknownTaxRate)

		rates, err := env.service.ListVatRates(ctx)
		require.NoError(t, err)
		assert.Nil(t, rates[0].TaxRateID)
		assert.Equal(t, &one, rates[1].TaxRateID)
	})

	t.Run("unknown vat rate", func(t *testing.T) {
		_, err := env.service.MapVatRates(ctx, appintegration.MapVatRatesRequest{Mappings: []appintegration.VatRateMapping{
			{VatRateID: uuid.NewString(), TaxRateID: &one},
		}})
		assert.ErrorIs(t, err, finance.ErrVatRateNotFound)
	})

	t.Run("invalid requests", func(t *testing.T) {
		zero := int64(0)
		for name, req := range map[string]appintegration.MapVatRatesRequest{
			"empty":         {},
			"bad uuid":      {Mappings: []appintegration.VatRateMapping{{VatRateID: "nope", TaxRateID: &one}}},
			"zero tax rate": {Mappings: []appintegration.VatRateMapping{{VatRateID: standard.ID.String(), TaxRateID: &zero}}},
			"duplicate": {Mappings: []appintegration.VatRateMapping{
				{VatRateID: standard.ID.String(), TaxRateID: &one},
				{VatRateID: standard.ID.String(), TaxRateID: &two},
			}},
		} {
			t.Run(name, func(t *testing.T) {
				_, err := env.service.MapVatRates(ctx, req)
				assert.ErrorIs(t, err, shared.ErrInvalidInput)
			})
		}
	})
}
