package trade

import (
	"time"

	"github.com/erp/storesync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType is how the invoice discount applies to the subtotal
type DiscountType string

const (
	DiscountFixed   DiscountType = "fixed"
	DiscountPercent DiscountType = "percent"
)

// Invoice is a local sale. A non-nil RemoteOrderID marks an invoice that
// mirrors a storefront order; nil means the invoice originated locally.
type Invoice struct {
	shared.BaseEntity
	InvoiceNo         int64
	ClientID          uuid.UUID
	SubTotal          decimal.Decimal
	Discount          decimal.Decimal
	DiscountType      DiscountType
	TransportCost     decimal.Decimal
	TaxTotal          decimal.Decimal
	DeliveryPlace     string
	InvoiceDate       time.Time
	RemoteOrderID     *int64
	RemoteOrderNumber string
	RemoteOrderStatus string
	RemoteModifiedAt  *time.Time
	IsPaid            bool
	CreatedBy         *uuid.UUID
	LineItems         []InvoiceLineItem
}

// InvoiceLineItem is one product line of an invoice
type InvoiceLineItem struct {
	shared.BaseEntity
	InvoiceID     uuid.UUID
	ProductID     uuid.UUID
	Quantity      int64
	SalePrice     decimal.Decimal
	PurchasePrice decimal.Decimal
	UnitCost      decimal.Decimal
	TaxAmount     decimal.Decimal
}

// InvoiceTotals carries the order-derived monetary fields of an invoice
type InvoiceTotals struct {
	SubTotal      decimal.Decimal
	Discount      decimal.Decimal
	DiscountType  DiscountType
	TransportCost decimal.Decimal
	TaxTotal      decimal.Decimal
	DeliveryPlace string
}

// NewRemoteInvoice creates the local invoice for a storefront order
func NewRemoteInvoice(invoiceNo int64, clientID uuid.UUID, remoteOrderID int64, orderNumber string, date time.Time, actor *uuid.UUID) *Invoice {
	return &Invoice{
		BaseEntity:        shared.NewBaseEntity(),
		InvoiceNo:         invoiceNo,
		ClientID:          clientID,
		SubTotal:          decimal.Zero,
		Discount:          decimal.Zero,
		DiscountType:      DiscountFixed,
		TransportCost:     decimal.Zero,
		TaxTotal:          decimal.Zero,
		InvoiceDate:       date,
		RemoteOrderID:     &remoteOrderID,
		RemoteOrderNumber: orderNumber,
		CreatedBy:         actor,
	}
}

// ApplyTotals overwrites the monetary fields
func (i *Invoice) ApplyTotals(t InvoiceTotals) {
	i.SubTotal = t.SubTotal
	i.Discount = t.Discount
	i.DiscountType = t.DiscountType
	if i.DiscountType == "" {
		i.DiscountType = DiscountFixed
	}
	i.TransportCost = t.TransportCost
	i.TaxTotal = t.TaxTotal
	i.DeliveryPlace = t.DeliveryPlace
	i.Touch()
}

// MirrorRemote records the storefront status and modification time.
// Paid follows the completed status.
func (i *Invoice) MirrorRemote(status string, modifiedAt *time.Time, paid bool) {
	i.RemoteOrderStatus = status
	i.RemoteModifiedAt = modifiedAt
	i.IsPaid = paid
	i.Touch()
}

// IsRemote reports whether the invoice mirrors a storefront order
func (i *Invoice) IsRemote() bool {
	return i.RemoteOrderID != nil
}

// DiscountAmount resolves a percent discount against the subtotal
func (i *Invoice) DiscountAmount() decimal.Decimal {
	if i.DiscountType == DiscountPercent {
		return i.SubTotal.Mul(i.Discount).Div(decimal.NewFromInt(100)).Round(2)
	}
	return i.Discount
}

// GrandTotal is subtotal minus discount plus transport and tax
func (i *Invoice) GrandTotal() decimal.Decimal {
	return i.SubTotal.Sub(i.DiscountAmount()).Add(i.TransportCost).Add(i.TaxTotal)
}

// NewLineItem builds a line for this invoice
func (i *Invoice) NewLineItem(productID uuid.UUID, qty int64, salePrice, purchasePrice, tax decimal.Decimal) InvoiceLineItem {
	return InvoiceLineItem{
		BaseEntity:    shared.NewBaseEntity(),
		InvoiceID:     i.ID,
		ProductID:     productID,
		Quantity:      qty,
		SalePrice:     salePrice,
		PurchasePrice: purchasePrice,
		UnitCost:      salePrice,
		TaxAmount:     tax,
	}
}

// sameValues compares the order-derived columns of two lines
func (l InvoiceLineItem) sameValues(o InvoiceLineItem) bool {
	return l.Quantity == o.Quantity &&
		l.SalePrice.Equal(o.SalePrice) &&
		l.PurchasePrice.Equal(o.PurchasePrice) &&
		l.UnitCost.Equal(o.UnitCost) &&
		l.TaxAmount.Equal(o.TaxAmount)
}

// LineItemDiff is the minimal change set turning current lines into desired lines
type LineItemDiff struct {
	Insert []InvoiceLineItem
	Update []InvoiceLineItem
	Delete []uuid.UUID
}

// IsEmpty reports whether nothing changes
func (d LineItemDiff) IsEmpty() bool {
	return len(d.Insert) == 0 && len(d.Update) == 0 && len(d.Delete) == 0
}

// DiffLineItems matches lines by product id in order of appearance. Matched
// lines keep their id and are updated only when a value differs; unmatched
// desired lines are inserted and leftover current lines deleted.
func DiffLineItems(current, desired []InvoiceLineItem) LineItemDiff {
	pool := make(map[uuid.UUID][]InvoiceLineItem, len(current))
	for _, l := range current {
		pool[l.ProductID] = append(pool[l.ProductID], l)
	}

	var diff LineItemDiff
	for _, want := range desired {
		candidates := pool[want.ProductID]
		if len(candidates) == 0 {
			diff.Insert = append(diff.Insert, want)
			continue
		}
		have := candidates[0]
		pool[want.ProductID] = candidates[1:]
		if have.sameValues(want) {
			continue
		}
		want.BaseEntity = have.BaseEntity
		want.InvoiceID = have.InvoiceID
		want.Touch()
		diff.Update = append(diff.Update, want)
	}

	for _, l := range current {
		for _, left := range pool[l.ProductID] {
			if left.ID == l.ID {
				diff.Delete = append(diff.Delete, l.ID)
			}
		}
	}
	return diff
}
