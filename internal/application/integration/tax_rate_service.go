package integration

import (
	"context"
	"fmt"

	"github.com/erp/storesync/internal/domain/finance"
	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaxRateService lists storefront tax rates and links local VAT rates to them
type TaxRateService struct {
	platform  integration.CommercePlatform
	vatRates  finance.VatRateRepository
	retry     RetryPolicy
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTaxRateService creates a new TaxRateService
func NewTaxRateService(platform integration.CommercePlatform, vatRates finance.VatRateRepository, logger *zap.Logger) *TaxRateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaxRateService{
		platform:  platform,
		vatRates:  vatRates,
		retry:     DefaultRetryPolicy(),
		validator: validator.New(),
		logger:    logger,
	}
}

// SetRetryPolicy overrides the retry policy for remote reads
func (s *TaxRateService) SetRetryPolicy(policy RetryPolicy) {
	s.retry = policy
}

// ListRemoteTaxRates returns every tax rate configured in the storefront
func (s *TaxRateService) ListRemoteTaxRates(ctx context.Context) ([]TaxRateResponse, error) {
	rates, err := s.fetchTaxRates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TaxRateResponse, len(rates))
	for i, r := range rates {
		out[i] = ToTaxRateResponse(r)
	}
	return out, nil
}

// ListVatRates returns the local VAT rates with their storefront links
func (s *TaxRateService) ListVatRates(ctx context.Context) ([]VatRateResponse, error) {
	rates, err := s.vatRates.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vat rates: %w", err)
	}
	out := make([]VatRateResponse, len(rates))
	for i := range rates {
		out[i] = ToVatRateResponse(&rates[i])
	}
	return out, nil
}

// MapVatRates links VAT rates to storefront tax rates. Every referenced tax
// rate must exist in the storefront; nothing is written otherwise.
func (s *TaxRateService) MapVatRates(ctx context.Context, req MapVatRatesRequest) ([]VatRateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	links := make(map[uuid.UUID]*int64, len(req.Mappings))
	ids := make([]uuid.UUID, 0, len(req.Mappings))
	needsRemote := false
	for _, m := range req.Mappings {
		id, err := uuid.Parse(m.VatRateID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "vat_rate_id must be a UUID")
		}
		if _, dup := links[id]; dup {
			return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("VAT rate %s is mapped twice", id))
		}
		links[id] = m.TaxRateID
		ids = append(ids, id)
		needsRemote = needsRemote || m.TaxRateID != nil
	}

	rates, err := s.vatRates.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load vat rates: %w", err)
	}
	if len(rates) != len(ids) {
		found := make(map[uuid.UUID]struct{}, len(rates))
		for _, r := range rates {
			found[r.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				return nil, fmt.Errorf("%w: %s", finance.ErrVatRateNotFound, id)
			}
		}
	}

	if needsRemote {
		if err := s.checkTaxRatesExist(ctx, links); err != nil {
			return nil, err
		}
	}

	for i := range rates {
		if err := rates[i].LinkTaxRate(links[rates[i].ID]); err != nil {
			return nil, err
		}
	}
	if err := s.vatRates.SaveTaxRateLinks(ctx, rates); err != nil {
		return nil, fmt.Errorf("save vat rate links: %w", err)
	}
	s.logger.Info("VAT rates mapped to storefront tax rates", zap.Int("count", len(rates)))
	return s.ListVatRates(ctx)
}

func (s *TaxRateService) checkTaxRatesExist(ctx context.Context, links map[uuid.UUID]*int64) error {
	remote, err := s.fetchTaxRates(ctx)
	if err != nil {
		return err
	}
	known := make(map[int64]struct{}, len(remote))
	for _, r := range remote {
		known[r.ID] = struct{}{}
	}
	for _, taxID := range links {
		if taxID == nil {
			continue
		}
		if _, ok := known[*taxID]; !ok {
			return fmt.Errorf("%w: %d", integration.ErrUnknownTaxRate, *taxID)
		}
	}
	return nil
}

func (s *TaxRateService) fetchTaxRates(ctx context.Context) ([]integration.TaxRate, error) {
	var rates []integration.TaxRate
	err := withRetry(ctx, s.retry, retryFetch, func() error {
		var err error
		rates, err = s.platform.ListTaxRates(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list storefront tax rates: %w", err)
	}
	return rates, nil
}
