package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound  = errors.New("catalog: product not found")
	ErrCategoryNotFound = errors.New("catalog: category not found")
)

// ProductRepository defines the persistence operations the sync engine needs
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindActivePage returns active products ordered by code
	FindActivePage(ctx context.Context, limit, offset int) ([]Product, error)

	// FindByRemoteIDs returns products linked to any of the given remote ids
	FindByRemoteIDs(ctx context.Context, remoteIDs []int64) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpdateRemoteIdentity writes only the remote id and remote media id columns
	UpdateRemoteIdentity(ctx context.Context, product *Product) error

	// AdjustInventory adds delta to the inventory count atomically
	AdjustInventory(ctx context.Context, id uuid.UUID, delta int64) error

	// ClearRemoteIdentities unlinks every product, returning the number of rows touched
	ClearRemoteIdentities(ctx context.Context) (int64, error)
}

// CategoryRepository covers categories and their subcategories
type CategoryRepository interface {
	// FindActive returns active categories. When since is set only categories
	// updated after it, or still unmatched, are returned.
	FindActive(ctx context.Context, since *time.Time) ([]Category, error)

	// FindActiveSubCategories applies the same selection to subcategories
	FindActiveSubCategories(ctx context.Context, since *time.Time) ([]SubCategory, error)

	// FindByIDs returns categories by id regardless of state
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Category, error)

	// FindSubCategoriesByIDs returns subcategories by id regardless of state
	FindSubCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]SubCategory, error)

	Save(ctx context.Context, category *Category) error
	SaveSubCategory(ctx context.Context, sub *SubCategory) error

	// UpdateRemoteID and UpdateSubCategoryRemoteID write only the remote id column
	UpdateRemoteID(ctx context.Context, category *Category) error
	UpdateSubCategoryRemoteID(ctx context.Context, sub *SubCategory) error

	// ClearRemoteIDs unlinks all categories and subcategories
	ClearRemoteIDs(ctx context.Context) (int64, error)
}
