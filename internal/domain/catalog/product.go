package catalog

import (
	"strings"

	"github.com/erp/storesync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType is how a product discount is applied to its list price
type DiscountType string

const (
	DiscountTypeNone    DiscountType = ""
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

// Product is a sellable item in the local catalog.
// RemoteID is the join key with the storefront once set; before that the
// product is unmatched.
type Product struct {
	shared.BaseEntity
	Code           string
	Name           string
	Note           string // pushed as the remote description
	ImagePath      string // object key of the product image
	Price          decimal.Decimal
	PurchasePrice  decimal.Decimal
	DiscountType   DiscountType
	DiscountValue  decimal.Decimal
	InventoryCount int64
	SubCategoryID  *uuid.UUID
	Active         bool
	RemoteID       *int64
	RemoteMediaID  *int64
}

// NewProduct creates an active product with no remote identity
func NewProduct(code, name string, price decimal.Decimal) (*Product, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	return &Product{
		BaseEntity:    shared.NewBaseEntity(),
		Code:          code,
		Name:          name,
		Price:         price,
		PurchasePrice: decimal.Zero,
		DiscountValue: decimal.Zero,
		Active:        true,
	}, nil
}

// SellingPrice returns the price after the product discount, never below zero.
func (p *Product) SellingPrice() decimal.Decimal {
	price := p.Price
	switch p.DiscountType {
	case DiscountTypePercent:
		price = price.Sub(price.Mul(p.DiscountValue).Div(decimal.NewFromInt(100)))
	case DiscountTypeFixed:
		price = price.Sub(p.DiscountValue)
	}
	if price.IsNegative() {
		return decimal.Zero
	}
	return price.Round(2)
}

// IsMatched reports whether the product is linked to a remote product
func (p *Product) IsMatched() bool {
	return p.RemoteID != nil
}

// AssignRemoteID links the product to a remote product id
func (p *Product) AssignRemoteID(id int64) error {
	if id <= 0 {
		return shared.NewDomainError("INVALID_REMOTE_ID", "Remote product id must be positive")
	}
	p.RemoteID = &id
	p.Touch()
	return nil
}

// AssignRemoteMediaID records the remote id of the product image
func (p *Product) AssignRemoteMediaID(id int64) {
	if id <= 0 {
		return
	}
	p.RemoteMediaID = &id
	p.Touch()
}

// ClearRemoteIdentity unlinks the product. Only resets call this.
func (p *Product) ClearRemoteIdentity() {
	p.RemoteID = nil
	p.RemoteMediaID = nil
	p.Touch()
}

// StockQuantity is the quantity advertised remotely, clamped at zero
func (p *Product) StockQuantity() int64 {
	if p.InventoryCount < 0 {
		return 0
	}
	return p.InventoryCount
}
