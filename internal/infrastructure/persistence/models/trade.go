package models

import (
	"time"

	"github.com/erp/storesync/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate header.
type InvoiceModel struct {
	BaseModel
	InvoiceNo         int64              `gorm:"not null;uniqueIndex"`
	ClientID          uuid.UUID          `gorm:"type:uuid;not null;index"`
	SubTotal          decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Discount          decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountType      trade.DiscountType `gorm:"type:varchar(20);not null;default:'fixed'"`
	TransportCost     decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	TaxTotal          decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	DeliveryPlace     string             `gorm:"type:varchar(500)"`
	InvoiceDate       time.Time          `gorm:"not null;index"`
	RemoteOrderID     *int64             `gorm:"column:woocommerce_order_id;uniqueIndex"`
	RemoteOrderNumber string             `gorm:"column:woocommerce_order_number;type:varchar(50)"`
	RemoteOrderStatus string             `gorm:"column:woocommerce_order_status;type:varchar(30)"`
	RemoteModifiedAt  *time.Time         `gorm:"column:woocommerce_modified_at"`
	IsPaid            bool               `gorm:"not null;default:false"`
	CreatedBy         *uuid.UUID         `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice without line items.
func (m *InvoiceModel) ToDomain() *trade.Invoice {
	return &trade.Invoice{
		BaseEntity:        m.BaseModel.ToDomain(),
		InvoiceNo:         m.InvoiceNo,
		ClientID:          m.ClientID,
		SubTotal:          m.SubTotal,
		Discount:          m.Discount,
		DiscountType:      m.DiscountType,
		TransportCost:     m.TransportCost,
		TaxTotal:          m.TaxTotal,
		DeliveryPlace:     m.DeliveryPlace,
		InvoiceDate:       m.InvoiceDate,
		RemoteOrderID:     m.RemoteOrderID,
		RemoteOrderNumber: m.RemoteOrderNumber,
		RemoteOrderStatus: m.RemoteOrderStatus,
		RemoteModifiedAt:  m.RemoteModifiedAt,
		IsPaid:            m.IsPaid,
		CreatedBy:         m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(i *trade.Invoice) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.InvoiceNo = i.InvoiceNo
	m.ClientID = i.ClientID
	m.SubTotal = i.SubTotal
	m.Discount = i.Discount
	m.DiscountType = i.DiscountType
	m.TransportCost = i.TransportCost
	m.TaxTotal = i.TaxTotal
	m.DeliveryPlace = i.DeliveryPlace
	m.InvoiceDate = i.InvoiceDate
	m.RemoteOrderID = i.RemoteOrderID
	m.RemoteOrderNumber = i.RemoteOrderNumber
	m.RemoteOrderStatus = i.RemoteOrderStatus
	m.RemoteModifiedAt = i.RemoteModifiedAt
	m.IsPaid = i.IsPaid
	m.CreatedBy = i.CreatedBy
}

// InvoiceLineItemModel is the persistence model for InvoiceLineItem.
type InvoiceLineItemModel struct {
	BaseModel
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      int64           `gorm:"not null"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceLineItemModel) TableName() string {
	return "invoice_line_items"
}

// ToDomain converts the persistence model to a domain InvoiceLineItem.
func (m *InvoiceLineItemModel) ToDomain() trade.InvoiceLineItem {
	return trade.InvoiceLineItem{
		BaseEntity:    m.BaseModel.ToDomain(),
		InvoiceID:     m.InvoiceID,
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		SalePrice:     m.SalePrice,
		PurchasePrice: m.PurchasePrice,
		UnitCost:      m.UnitCost,
		TaxAmount:     m.TaxAmount,
	}
}

// FromDomain populates the persistence model from a domain InvoiceLineItem.
func (m *InvoiceLineItemModel) FromDomain(l *trade.InvoiceLineItem) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.InvoiceID = l.InvoiceID
	m.ProductID = l.ProductID
	m.Quantity = l.Quantity
	m.SalePrice = l.SalePrice
	m.PurchasePrice = l.PurchasePrice
	m.UnitCost = l.UnitCost
	m.TaxAmount = l.TaxAmount
}

// InvoiceReturnModel is the persistence model for the InvoiceReturn header.
type InvoiceReturnModel struct {
	BaseModel
	ReturnNo      int64           `gorm:"not null;uniqueIndex"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null"`
	Reason        string          `gorm:"type:varchar(500)"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReturnDate    time.Time       `gorm:"not null"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InvoiceReturnModel) TableName() string {
	return "invoice_returns"
}

// ToDomain converts the persistence model to a domain InvoiceReturn without line items.
func (m *InvoiceReturnModel) ToDomain() *trade.InvoiceReturn {
	return &trade.InvoiceReturn{
		BaseEntity:    m.BaseModel.ToDomain(),
		ReturnNo:      m.ReturnNo,
		InvoiceID:     m.InvoiceID,
		TransactionID: m.TransactionID,
		Reason:        m.Reason,
		Total:         m.Total,
		ReturnDate:    m.ReturnDate,
		CreatedBy:     m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain InvoiceReturn.
func (m *InvoiceReturnModel) FromDomain(r *trade.InvoiceReturn) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ReturnNo = r.ReturnNo
	m.InvoiceID = r.InvoiceID
	m.TransactionID = r.TransactionID
	m.Reason = r.Reason
	m.Total = r.Total
	m.ReturnDate = r.ReturnDate
	m.CreatedBy = r.CreatedBy
}

// InvoiceReturnLineItemModel is the persistence model for InvoiceReturnLineItem.
type InvoiceReturnLineItemModel struct {
	BaseModel
	ReturnID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity      int64           `gorm:"not null"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceReturnLineItemModel) TableName() string {
	return "invoice_return_line_items"
}

// ToDomain converts the persistence model to a domain InvoiceReturnLineItem.
func (m *InvoiceReturnLineItemModel) ToDomain() trade.InvoiceReturnLineItem {
	return trade.InvoiceReturnLineItem{
		BaseEntity:    m.BaseModel.ToDomain(),
		ReturnID:      m.ReturnID,
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		SalePrice:     m.SalePrice,
		PurchasePrice: m.PurchasePrice,
	}
}

// FromDomain populates the persistence model from a domain InvoiceReturnLineItem.
func (m *InvoiceReturnLineItemModel) FromDomain(l *trade.InvoiceReturnLineItem) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.ReturnID = l.ReturnID
	m.ProductID = l.ProductID
	m.Quantity = l.Quantity
	m.SalePrice = l.SalePrice
	m.PurchasePrice = l.PurchasePrice
}
