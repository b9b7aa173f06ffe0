package models

import (
	"github.com/erp/storesync/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	Code           string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string               `gorm:"type:varchar(200);not null"`
	Note           string               `gorm:"type:text"`
	ImagePath      string               `gorm:"type:varchar(500)"`
	Price          decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	PurchasePrice  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountType   catalog.DiscountType `gorm:"type:varchar(20);not null;default:''"`
	DiscountValue  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	InventoryCount int64                `gorm:"not null;default:0"`
	SubCategoryID  *uuid.UUID           `gorm:"type:uuid;index"`
	Active         bool                 `gorm:"not null;index"`
	RemoteID       *int64               `gorm:"column:woocommerce_product_id;index"`
	RemoteMediaID  *int64               `gorm:"column:woocommerce_media_id"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:     m.BaseModel.ToDomain(),
		Code:           m.Code,
		Name:           m.Name,
		Note:           m.Note,
		ImagePath:      m.ImagePath,
		Price:          m.Price,
		PurchasePrice:  m.PurchasePrice,
		DiscountType:   m.DiscountType,
		DiscountValue:  m.DiscountValue,
		InventoryCount: m.InventoryCount,
		SubCategoryID:  m.SubCategoryID,
		Active:         m.Active,
		RemoteID:       m.RemoteID,
		RemoteMediaID:  m.RemoteMediaID,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Code = p.Code
	m.Name = p.Name
	m.Note = p.Note
	m.ImagePath = p.ImagePath
	m.Price = p.Price
	m.PurchasePrice = p.PurchasePrice
	m.DiscountType = p.DiscountType
	m.DiscountValue = p.DiscountValue
	m.InventoryCount = p.InventoryCount
	m.SubCategoryID = p.SubCategoryID
	m.Active = p.Active
	m.RemoteID = p.RemoteID
	m.RemoteMediaID = p.RemoteMediaID
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(100);not null"`
	Active   bool   `gorm:"not null;index"`
	RemoteID *int64 `gorm:"column:woocommerce_category_id;index"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Active:     m.Active,
		RemoteID:   m.RemoteID,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.Active = c.Active
	m.RemoteID = c.RemoteID
}

// SubCategoryModel is the persistence model for the SubCategory domain entity.
type SubCategoryModel struct {
	BaseModel
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(100);not null"`
	Active     bool      `gorm:"not null;index"`
	RemoteID   *int64    `gorm:"column:woocommerce_category_id;index"`
}

// TableName returns the table name for GORM
func (SubCategoryModel) TableName() string {
	return "sub_categories"
}

// ToDomain converts the persistence model to a domain SubCategory entity.
func (m *SubCategoryModel) ToDomain() *catalog.SubCategory {
	return &catalog.SubCategory{
		BaseEntity: m.BaseModel.ToDomain(),
		CategoryID: m.CategoryID,
		Name:       m.Name,
		Active:     m.Active,
		RemoteID:   m.RemoteID,
	}
}

// FromDomain populates the persistence model from a domain SubCategory entity.
func (m *SubCategoryModel) FromDomain(s *catalog.SubCategory) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.CategoryID = s.CategoryID
	m.Name = s.Name
	m.Active = s.Active
	m.RemoteID = s.RemoteID
}
