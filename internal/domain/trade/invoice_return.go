package trade

import (
	"time"

	"github.com/erp/storesync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceReturn reverses a sale. It is linked to the debit transaction that
// paid the refund out.
type InvoiceReturn struct {
	shared.BaseEntity
	ReturnNo      int64
	InvoiceID     uuid.UUID
	TransactionID uuid.UUID
	Reason        string
	Total         decimal.Decimal
	ReturnDate    time.Time
	CreatedBy     *uuid.UUID
	LineItems     []InvoiceReturnLineItem
}

// InvoiceReturnLineItem is the returned quantity of one product
type InvoiceReturnLineItem struct {
	shared.BaseEntity
	ReturnID      uuid.UUID
	ProductID     uuid.UUID
	Quantity      int64
	SalePrice     decimal.Decimal
	PurchasePrice decimal.Decimal
}

// NewInvoiceReturn creates an empty return for invoice
func NewInvoiceReturn(returnNo int64, invoiceID, transactionID uuid.UUID, reason string, total decimal.Decimal, date time.Time, actor *uuid.UUID) *InvoiceReturn {
	return &InvoiceReturn{
		BaseEntity:    shared.NewBaseEntity(),
		ReturnNo:      returnNo,
		InvoiceID:     invoiceID,
		TransactionID: transactionID,
		Reason:        reason,
		Total:         total,
		ReturnDate:    date,
		CreatedBy:     actor,
	}
}

// AddLine appends a returned product line. Non-positive quantities are ignored.
func (r *InvoiceReturn) AddLine(productID uuid.UUID, qty int64, price decimal.Decimal) bool {
	if qty <= 0 {
		return false
	}
	r.LineItems = append(r.LineItems, InvoiceReturnLineItem{
		BaseEntity:    shared.NewBaseEntity(),
		ReturnID:      r.ID,
		ProductID:     productID,
		Quantity:      qty,
		SalePrice:     price,
		PurchasePrice: price,
	})
	return true
}
