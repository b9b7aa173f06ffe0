package integration

import (
	"context"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// CommercePlatform port
// ---------------------------------------------------------------------------

// CommercePlatform is the storefront the local store is reconciled with.
// Calls are single attempts; callers decide about retries.
type CommercePlatform interface {
	// BatchCategories creates and updates categories in one call
	BatchCategories(ctx context.Context, batch CategoryBatch) (*BatchResult, error)

	// BatchProducts creates and updates products in one call
	BatchProducts(ctx context.Context, batch ProductBatch) (*BatchResult, error)

	// ListOrders pages through every order. On failure the orders fetched so
	// far are returned together with the error.
	ListOrders(ctx context.Context) ([]RemoteOrder, error)

	// GetCustomer fetches one customer record
	GetCustomer(ctx context.Context, id int64) (*RemoteCustomer, error)

	// ListTaxRates returns the configured tax rates
	ListTaxRates(ctx context.Context) ([]TaxRate, error)

	// MaxBatchSize is the item limit of one batch call (create + update)
	MaxBatchSize() int
}

// ---------------------------------------------------------------------------
// Outgoing payloads
// ---------------------------------------------------------------------------

// CategoryPayload is one category in a batch. RemoteID is zero for creates.
type CategoryPayload struct {
	RemoteID int64
	Name     string
	ParentID *int64
}

// ImageRef references a remote media item by id, or a source URL to import
type ImageRef struct {
	MediaID *int64
	Src     string
}

// ProductPayload is one product in a batch. Nil fields are omitted from the
// request so the remote value is left untouched.
type ProductPayload struct {
	RemoteID      int64
	Name          *string
	Price         *decimal.Decimal
	Description   *string
	CategoryIDs   []int64
	Image         *ImageRef
	StockQuantity *int64
}

// CategoryBatch groups category creates and updates
type CategoryBatch struct {
	Create []CategoryPayload
	Update []CategoryPayload
}

// Size returns the number of items in the batch
func (b CategoryBatch) Size() int { return len(b.Create) + len(b.Update) }

// ProductBatch groups product creates and updates
type ProductBatch struct {
	Create []ProductPayload
	Update []ProductPayload
}

// Size returns the number of items in the batch
func (b ProductBatch) Size() int { return len(b.Create) + len(b.Update) }

// ---------------------------------------------------------------------------
// Batch results
// ---------------------------------------------------------------------------

// BatchItemError is the error object attached to a failed batch entry
type BatchItemError struct {
	Code       string
	Message    string
	Status     int
	ResourceID int64 // set on duplicate conflicts; points at the existing remote resource
}

// BatchItemResult is one entry of a batch response
type BatchItemResult struct {
	ID      int64
	MediaID *int64
	Error   *BatchItemError
}

// AssignedID returns the remote id the local entity should carry after a
// create: the assigned id, or the conflicting resource id of a duplicate.
func (r BatchItemResult) AssignedID() (int64, bool) {
	if r.ID != 0 {
		return r.ID, true
	}
	if r.Error != nil && r.Error.ResourceID != 0 {
		return r.Error.ResourceID, true
	}
	return 0, false
}

// Failed reports whether the entry carries an error and no usable id
func (r BatchItemResult) Failed() bool {
	_, ok := r.AssignedID()
	return !ok
}

// BatchResult mirrors the batch request: Create[i] answers request Create[i]
type BatchResult struct {
	Create []BatchItemResult
	Update []BatchItemResult
}

// ---------------------------------------------------------------------------
// Reference data
// ---------------------------------------------------------------------------

// TaxRate is a remote tax rate
type TaxRate struct {
	ID       int64
	Country  string
	State    string
	Rate     decimal.Decimal
	Name     string
	Class    string
	Shipping bool
}
