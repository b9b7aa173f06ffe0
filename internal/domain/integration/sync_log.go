package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncKind / SyncOperation
// ---------------------------------------------------------------------------

// SyncKind identifies what a ledger entry is about
type SyncKind string

const (
	SyncKindProducts   SyncKind = "products"
	SyncKindCategories SyncKind = "categories"
	SyncKindOrders     SyncKind = "orders"
)

// IsValid returns true if the sync kind is known
func (k SyncKind) IsValid() bool {
	switch k {
	case SyncKindProducts, SyncKindCategories, SyncKindOrders:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncKind
func (k SyncKind) String() string {
	return string(k)
}

// SyncOperation tags the outcome recorded by a ledger entry.
// SyncOperationNone marks a pass that changed nothing.
type SyncOperation string

const (
	SyncOperationNone    SyncOperation = ""
	SyncOperationCreated SyncOperation = "created"
	SyncOperationUpdated SyncOperation = "updated"
	SyncOperationReset   SyncOperation = "reset"
	SyncOperationFailed  SyncOperation = "failed"
)

// IsValid returns true if the operation is known
func (o SyncOperation) IsValid() bool {
	switch o {
	case SyncOperationNone, SyncOperationCreated, SyncOperationUpdated, SyncOperationReset, SyncOperationFailed:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// SyncError
// ---------------------------------------------------------------------------

// Error types recorded in the ledger error payload
const (
	ErrorTypeOrderProductNotFound = "order_product_not_found"
	ErrorTypeOrderFailed          = "order_sync_failed"
	ErrorTypeOrdersFetchFailed    = "orders_fetch_failed"
	ErrorTypeCustomerFetchFailed  = "customer_fetch_failed"
	ErrorTypeBatchItemFailed      = "batch_item_failed"
	ErrorTypeBatchFailed          = "batch_failed"
	ErrorTypeSyncTimeout          = "sync_timeout"
)

// SyncError is one recovered error persisted with a ledger entry
type SyncError struct {
	ErrorType   string   `json:"error_type"`
	OrderNumber string   `json:"order_number,omitempty"`
	Products    []string `json:"products,omitempty"`
	Item        string   `json:"item,omitempty"`
	Code        string   `json:"code,omitempty"`
	Message     string   `json:"message,omitempty"`
}

// ---------------------------------------------------------------------------
// SyncLogEntry
// ---------------------------------------------------------------------------

// SyncLogEntry is one immutable ledger row
type SyncLogEntry struct {
	ID        uuid.UUID
	Kind      SyncKind
	Operation SyncOperation
	CreatedBy *uuid.UUID
	Items     []string
	Errors    []SyncError
	CreatedAt time.Time
}

// NewSyncLogEntry validates and builds a ledger entry stamped with the current time
func NewSyncLogEntry(kind SyncKind, op SyncOperation, actor *uuid.UUID, items []string, errs []SyncError) (*SyncLogEntry, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidSyncKind
	}
	if !op.IsValid() {
		return nil, ErrInvalidSyncOperation
	}
	if items == nil {
		items = []string{}
	}
	if errs == nil {
		errs = []SyncError{}
	}
	return &SyncLogEntry{
		ID:        uuid.New(),
		Kind:      kind,
		Operation: op,
		CreatedBy: actor,
		Items:     items,
		Errors:    errs,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// HasErrors reports whether the entry recorded any error
func (e *SyncLogEntry) HasErrors() bool {
	return len(e.Errors) > 0
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// SyncLogFilter narrows ledger listings
type SyncLogFilter struct {
	Kind      SyncKind
	Operation *SyncOperation
	// Term matches kind, operation, affected items or the acting user id,
	// case-insensitively
	Term string
	// From and To bound the creation time, both inclusive
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// SyncLogRepository is append-only: no update or delete
type SyncLogRepository interface {
	Append(ctx context.Context, entry *SyncLogEntry) error

	// LatestCreatedAt returns the newest entry time of kind, ignoring failed
	// entries, or nil when there is none
	LatestCreatedAt(ctx context.Context, kind SyncKind) (*time.Time, error)

	// LatestResetAt returns the newest reset entry time of kind, or nil
	LatestResetAt(ctx context.Context, kind SyncKind) (*time.Time, error)

	// List returns entries newest first with the total count for the filter
	List(ctx context.Context, filter SyncLogFilter) ([]SyncLogEntry, int64, error)
}
