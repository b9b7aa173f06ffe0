package models

import (
	"time"

	"github.com/erp/storesync/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for the Account domain entity.
type AccountModel struct {
	BaseModel
	AccountNumber string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account entity.
func (m *AccountModel) ToDomain() *finance.Account {
	return &finance.Account{
		BaseEntity:    m.BaseModel.ToDomain(),
		AccountNumber: m.AccountNumber,
		Name:          m.Name,
	}
}

// FromDomain populates the persistence model from a domain Account entity.
func (m *AccountModel) FromDomain(a *finance.Account) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.AccountNumber = a.AccountNumber
	m.Name = a.Name
}

// AccountTransactionModel is the persistence model for AccountTransaction.
type AccountTransactionModel struct {
	BaseModel
	AccountID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Type            finance.TransactionType `gorm:"not null"`
	Reason          string                  `gorm:"type:varchar(500)"`
	TransactionDate time.Time               `gorm:"not null;index"`
	CreatedBy       *uuid.UUID              `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (AccountTransactionModel) TableName() string {
	return "account_transactions"
}

// ToDomain converts the persistence model to a domain AccountTransaction.
func (m *AccountTransactionModel) ToDomain() *finance.AccountTransaction {
	return &finance.AccountTransaction{
		BaseEntity:      m.BaseModel.ToDomain(),
		AccountID:       m.AccountID,
		Amount:          m.Amount,
		Type:            m.Type,
		Reason:          m.Reason,
		TransactionDate: m.TransactionDate,
		CreatedBy:       m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain AccountTransaction.
func (m *AccountTransactionModel) FromDomain(t *finance.AccountTransaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.AccountID = t.AccountID
	m.Amount = t.Amount
	m.Type = t.Type
	m.Reason = t.Reason
	m.TransactionDate = t.TransactionDate
	m.CreatedBy = t.CreatedBy
}

// InvoicePaymentModel is the persistence model for InvoicePayment.
type InvoicePaymentModel struct {
	BaseModel
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentDate   time.Time       `gorm:"not null"`
	Note          string          `gorm:"type:varchar(500)"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InvoicePaymentModel) TableName() string {
	return "invoice_payments"
}

// ToDomain converts the persistence model to a domain InvoicePayment.
func (m *InvoicePaymentModel) ToDomain() *finance.InvoicePayment {
	return &finance.InvoicePayment{
		BaseEntity:    m.BaseModel.ToDomain(),
		InvoiceID:     m.InvoiceID,
		TransactionID: m.TransactionID,
		Amount:        m.Amount,
		PaymentDate:   m.PaymentDate,
		Note:          m.Note,
		CreatedBy:     m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain InvoicePayment.
func (m *InvoicePaymentModel) FromDomain(p *finance.InvoicePayment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.InvoiceID = p.InvoiceID
	m.TransactionID = p.TransactionID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.Note = p.Note
	m.CreatedBy = p.CreatedBy
}

// VatRateModel is the persistence model for VatRate.
type VatRateModel struct {
	BaseModel
	Name                 string          `gorm:"type:varchar(100);not null"`
	Rate                 decimal.Decimal `gorm:"type:decimal(6,3);not null"`
	WooCommerceTaxRateID *int64          `gorm:"column:woocommerce_tax_rate_id"`
}

// TableName returns the table name for GORM
func (VatRateModel) TableName() string {
	return "vat_rates"
}

// ToDomain converts the persistence model to a domain VatRate.
func (m *VatRateModel) ToDomain() *finance.VatRate {
	return &finance.VatRate{
		BaseEntity:      m.BaseModel.ToDomain(),
		Name:            m.Name,
		Rate:            m.Rate,
		RemoteTaxRateID: m.WooCommerceTaxRateID,
	}
}

// FromDomain populates the persistence model from a domain VatRate.
func (m *VatRateModel) FromDomain(v *finance.VatRate) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.Name = v.Name
	m.Rate = v.Rate
	m.WooCommerceTaxRateID = v.RemoteTaxRateID
}
