package ecommerce

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/erp/storesync/internal/domain/integration"
)

// NewPlatform connects to the configured store. Without a store URL it
// returns a platform whose every call fails with ErrPlatformNotConfigured,
// so the service still starts and reports the missing connection per pass.
func NewPlatform(config *WooCommerceConfig, logger *zap.Logger) (integration.CommercePlatform, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := NewWooCommerceClient(config, WithLogger(logger))
	if errors.Is(err, ErrWooConfigMissingURL) {
		logger.Warn("WooCommerce store URL not set, sync passes will fail until configured")
		return UnconfiguredPlatform{}, nil
	}
	if err != nil {
		return nil, err
	}
	return NewWooCommerceAdapter(client, logger), nil
}

// UnconfiguredPlatform stands in for a store that has no connection settings
type UnconfiguredPlatform struct{}

var _ integration.CommercePlatform = UnconfiguredPlatform{}

// BatchCategories always fails
func (UnconfiguredPlatform) BatchCategories(context.Context, integration.CategoryBatch) (*integration.BatchResult, error) {
	return nil, integration.ErrPlatformNotConfigured
}

// BatchProducts always fails
func (UnconfiguredPlatform) BatchProducts(context.Context, integration.ProductBatch) (*integration.BatchResult, error) {
	return nil, integration.ErrPlatformNotConfigured
}

// ListOrders always fails
func (UnconfiguredPlatform) ListOrders(context.Context) ([]integration.RemoteOrder, error) {
	return nil, integration.ErrPlatformNotConfigured
}

// GetCustomer always fails
func (UnconfiguredPlatform) GetCustomer(context.Context, int64) (*integration.RemoteCustomer, error) {
	return nil, integration.ErrPlatformNotConfigured
}

// ListTaxRates always fails
func (UnconfiguredPlatform) ListTaxRates(context.Context) ([]integration.TaxRate, error) {
	return nil, integration.ErrPlatformNotConfigured
}

// MaxBatchSize is the default batch size
func (UnconfiguredPlatform) MaxBatchSize() int { return DefaultBatchSize }
