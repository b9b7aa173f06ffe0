package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/erp/storesync/internal/domain/integration"
)

const (
	pathCategoryBatch = "products/categories/batch"
	pathProductBatch  = "products/batch"
	pathOrders        = "orders"
	pathCustomers     = "customers"
	pathTaxes         = "taxes"
)

// WooCommerceAdapter implements integration.CommercePlatform on top of the
// WooCommerce REST API
type WooCommerceAdapter struct {
	client *WooCommerceClient
	logger *zap.Logger
}

// NewWooCommerceAdapter creates a new adapter
func NewWooCommerceAdapter(client *WooCommerceClient, logger *zap.Logger) *WooCommerceAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WooCommerceAdapter{client: client, logger: logger}
}

// BatchCategories creates and updates categories in one call
func (a *WooCommerceAdapter) BatchCategories(ctx context.Context, batch integration.CategoryBatch) (*integration.BatchResult, error) {
	if batch.Size() > a.MaxBatchSize() {
		return nil, fmt.Errorf("%w: %d categories", integration.ErrBatchTooLarge, batch.Size())
	}

	req := BatchRequest{}
	for _, c := range batch.Create {
		req.Create = append(req.Create, categoryPayloadToWoo(c))
	}
	for _, c := range batch.Update {
		req.Update = append(req.Update, categoryPayloadToWoo(c))
	}

	resp, err := a.client.PostBatch(ctx, pathCategoryBatch, req)
	if err != nil {
		return nil, err
	}
	return batchResponseToDomain(resp), nil
}

// BatchProducts creates and updates products in one call
func (a *WooCommerceAdapter) BatchProducts(ctx context.Context, batch integration.ProductBatch) (*integration.BatchResult, error) {
	if batch.Size() > a.MaxBatchSize() {
		return nil, fmt.Errorf("%w: %d products", integration.ErrBatchTooLarge, batch.Size())
	}

	req := BatchRequest{}
	for _, p := range batch.Create {
		req.Create = append(req.Create, productPayloadToWoo(p, true))
	}
	for _, p := range batch.Update {
		req.Update = append(req.Update, productPayloadToWoo(p, false))
	}

	resp, err := a.client.PostBatch(ctx, pathProductBatch, req)
	if err != nil {
		return nil, err
	}
	return batchResponseToDomain(resp), nil
}

// ListOrders pages through every order, oldest first
func (a *WooCommerceAdapter) ListOrders(ctx context.Context) ([]integration.RemoteOrder, error) {
	query := url.Values{}
	query.Set("orderby", "id")
	query.Set("order", "asc")

	raw, fetchErr := a.client.GetAll(ctx, pathOrders, query)

	orders := make([]integration.RemoteOrder, 0, len(raw))
	for _, item := range raw {
		var wo wooOrder
		if err := json.Unmarshal(item, &wo); err != nil {
			a.logger.Warn("skipping undecodable order", zap.Error(err))
			if fetchErr == nil {
				fetchErr = fmt.Errorf("%w: order: %v", integration.ErrPlatformInvalidResponse, err)
			}
			continue
		}
		orders = append(orders, wo.toDomain())
	}
	return orders, fetchErr
}

// GetCustomer fetches one customer record
func (a *WooCommerceAdapter) GetCustomer(ctx context.Context, id int64) (*integration.RemoteCustomer, error) {
	var wc wooCustomer
	if err := a.client.Get(ctx, pathCustomers+"/"+strconv.FormatInt(id, 10), nil, &wc); err != nil {
		return nil, err
	}
	return wc.toDomain(), nil
}

// ListTaxRates returns every configured tax rate
func (a *WooCommerceAdapter) ListTaxRates(ctx context.Context) ([]integration.TaxRate, error) {
	raw, err := a.client.GetAll(ctx, pathTaxes, nil)
	if err != nil {
		return nil, err
	}
	rates := make([]integration.TaxRate, 0, len(raw))
	for _, item := range raw {
		var wt wooTaxRate
		if err := json.Unmarshal(item, &wt); err != nil {
			return nil, fmt.Errorf("%w: tax rate: %v", integration.ErrPlatformInvalidResponse, err)
		}
		rates = append(rates, wt.toDomain())
	}
	return rates, nil
}

// MaxBatchSize is the item limit of one batch call
func (a *WooCommerceAdapter) MaxBatchSize() int {
	return a.client.BatchSize()
}

// Ensure WooCommerceAdapter implements CommercePlatform
var _ integration.CommercePlatform = (*WooCommerceAdapter)(nil)
