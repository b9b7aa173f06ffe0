package finance

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/storesync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrVatRateNotFound    = errors.New("finance: vat rate not found")
	ErrInvalidVatRate     = errors.New("finance: vat rate must be between 0 and 100")
	ErrInvalidTaxRateLink = errors.New("finance: storefront tax rate id must be positive")
)

// VatRate is a local VAT rate. RemoteTaxRateID links it to the storefront
// tax rate that charges the same tax.
type VatRate struct {
	shared.BaseEntity
	Name            string
	Rate            decimal.Decimal
	RemoteTaxRateID *int64
}

// NewVatRate creates a VAT rate with a percentage between 0 and 100
func NewVatRate(name string, rate decimal.Decimal) (*VatRate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "VAT rate name cannot be empty")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrInvalidVatRate
	}
	return &VatRate{BaseEntity: shared.NewBaseEntity(), Name: name, Rate: rate}, nil
}

// LinkTaxRate points the rate at a storefront tax rate; nil removes the link
func (v *VatRate) LinkTaxRate(remoteID *int64) error {
	if remoteID != nil && *remoteID <= 0 {
		return ErrInvalidTaxRateLink
	}
	v.RemoteTaxRateID = remoteID
	v.Touch()
	return nil
}

// VatRateRepository persists VAT rates
type VatRateRepository interface {
	FindAll(ctx context.Context) ([]VatRate, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]VatRate, error)
	Save(ctx context.Context, rate *VatRate) error
	// SaveTaxRateLinks writes the RemoteTaxRateID of every rate in one unit
	SaveTaxRateLinks(ctx context.Context, rates []VatRate) error
}
