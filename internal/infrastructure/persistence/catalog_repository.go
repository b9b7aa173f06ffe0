package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/storesync/internal/domain/catalog"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActivePage returns one page of active products ordered by code
func (r *GormProductRepository) FindActivePage(ctx context.Context, limit, offset int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("code ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// FindByRemoteIDs returns products linked to any of the given remote ids
func (r *GormProductRepository) FindByRemoteIDs(ctx context.Context, remoteIDs []int64) ([]catalog.Product, error) {
	if len(remoteIDs) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("woocommerce_product_id IN ?", remoteIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error
}

// UpdateRemoteIdentity writes the remote id and media id without touching updated_at
func (r *GormProductRepository) UpdateRemoteIdentity(ctx context.Context, product *catalog.Product) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", product.ID).
		UpdateColumns(map[string]any{
			"woocommerce_product_id": product.RemoteID,
			"woocommerce_media_id":   product.RemoteMediaID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// AdjustInventory adds delta to the inventory count in a single statement
func (r *GormProductRepository) AdjustInventory(ctx context.Context, id uuid.UUID, delta int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", id).
		UpdateColumn("inventory_count", gorm.Expr("inventory_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// ClearRemoteIdentities unlinks every product from the storefront
func (r *GormProductRepository) ClearRemoteIdentities(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("woocommerce_product_id IS NOT NULL OR woocommerce_media_id IS NOT NULL").
		UpdateColumns(map[string]any{
			"woocommerce_product_id": nil,
			"woocommerce_media_id":   nil,
		})
	return result.RowsAffected, result.Error
}

func productsToDomain(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// activeSince selects active rows, narrowed to rows changed after since or
// not yet linked when since is set
func activeSince(db *gorm.DB, since *time.Time) *gorm.DB {
	query := db.Where("active = ?", true)
	if since != nil {
		query = query.Where("(updated_at > ? OR woocommerce_category_id IS NULL)", since.UTC())
	}
	return query.Order("name ASC")
}

// FindActive returns active categories, optionally only those changed since a point in time
func (r *GormCategoryRepository) FindActive(ctx context.Context, since *time.Time) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	if err := activeSince(r.db.WithContext(ctx), since).Find(&rows).Error; err != nil {
		return nil, err
	}
	return categoriesToDomain(rows), nil
}

// FindActiveSubCategories returns active subcategories with the same selection rules
func (r *GormCategoryRepository) FindActiveSubCategories(ctx context.Context, since *time.Time) ([]catalog.SubCategory, error) {
	var rows []models.SubCategoryModel
	if err := activeSince(r.db.WithContext(ctx), since).Find(&rows).Error; err != nil {
		return nil, err
	}
	return subCategoriesToDomain(rows), nil
}

// FindByIDs returns categories by id
func (r *GormCategoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Category, error) {
	if len(ids) == 0 {
		return []catalog.Category{}, nil
	}
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return categoriesToDomain(rows), nil
}

// FindSubCategoriesByIDs returns subcategories by id
func (r *GormCategoryRepository) FindSubCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.SubCategory, error) {
	if len(ids) == 0 {
		return []catalog.SubCategory{}, nil
	}
	var rows []models.SubCategoryModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return subCategoriesToDomain(rows), nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	model := &models.CategoryModel{}
	model.FromDomain(category)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveSubCategory creates or updates a subcategory
func (r *GormCategoryRepository) SaveSubCategory(ctx context.Context, sub *catalog.SubCategory) error {
	model := &models.SubCategoryModel{}
	model.FromDomain(sub)
	return r.db.WithContext(ctx).Save(model).Error
}

// UpdateRemoteID writes the remote category id without touching updated_at
func (r *GormCategoryRepository) UpdateRemoteID(ctx context.Context, category *catalog.Category) error {
	result := r.db.WithContext(ctx).
		Model(&models.CategoryModel{}).
		Where("id = ?", category.ID).
		UpdateColumn("woocommerce_category_id", category.RemoteID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// UpdateSubCategoryRemoteID writes the remote category id of a subcategory
func (r *GormCategoryRepository) UpdateSubCategoryRemoteID(ctx context.Context, sub *catalog.SubCategory) error {
	result := r.db.WithContext(ctx).
		Model(&models.SubCategoryModel{}).
		Where("id = ?", sub.ID).
		UpdateColumn("woocommerce_category_id", sub.RemoteID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// ClearRemoteIDs unlinks all categories and subcategories
func (r *GormCategoryRepository) ClearRemoteIDs(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.CategoryModel{}, &models.SubCategoryModel{}} {
			result := tx.Model(model).
				Where("woocommerce_category_id IS NOT NULL").
				UpdateColumn("woocommerce_category_id", nil)
			if result.Error != nil {
				return result.Error
			}
			total += result.RowsAffected
		}
		return nil
	})
	return total, err
}

func categoriesToDomain(rows []models.CategoryModel) []catalog.Category {
	out := make([]catalog.Category, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

func subCategoriesToDomain(rows []models.SubCategoryModel) []catalog.SubCategory {
	out := make([]catalog.SubCategory, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
