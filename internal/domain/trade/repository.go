package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrInvoiceNotFound = errors.New("trade: invoice not found")

// InvoiceRepository persists invoices and their line items
type InvoiceRepository interface {
	// FindRemote returns every invoice carrying a remote order id, without line items
	FindRemote(ctx context.Context) ([]Invoice, error)

	// FindByRemoteOrderID returns ErrInvoiceNotFound when no invoice mirrors the order
	FindByRemoteOrderID(ctx context.Context, remoteOrderID int64) (*Invoice, error)

	// Create inserts the invoice and its line items
	Create(ctx context.Context, invoice *Invoice) error

	// Update writes header columns only
	Update(ctx context.Context, invoice *Invoice) error

	FindLineItems(ctx context.Context, invoiceID uuid.UUID) ([]InvoiceLineItem, error)

	// ApplyLineItemDiff inserts, updates and deletes lines in one call
	ApplyLineItemDiff(ctx context.Context, diff LineItemDiff) error
}

// InvoiceReturnRepository persists returns with their line items
type InvoiceReturnRepository interface {
	Create(ctx context.Context, ret *InvoiceReturn) error
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]InvoiceReturn, error)
}

// NumberSequence hands out monotonic document numbers
type NumberSequence interface {
	// Next returns the next value for the named counter
	Next(ctx context.Context, name string) (int64, error)
}

// Sequence names
const (
	SequenceInvoice = "invoice"
	SequenceReturn  = "invoice_return"
	SequenceClient  = "client"
)
