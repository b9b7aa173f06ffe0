package finance

import (
	"context"
	"errors"
	"time"

	"github.com/erp/storesync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound = errors.New("finance: account not found")
	ErrInvalidAmount   = errors.New("finance: transaction amount must be positive")
)

// TransactionType is the direction of an account transaction
type TransactionType int

const (
	TransactionDebit  TransactionType = 0
	TransactionCredit TransactionType = 1
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	if t == TransactionCredit {
		return "credit"
	}
	return "debit"
}

// Account is a financial account that receives or pays out money
type Account struct {
	shared.BaseEntity
	AccountNumber string
	Name          string
}

// AccountTransaction is a ledger entry against an Account
type AccountTransaction struct {
	shared.BaseEntity
	AccountID       uuid.UUID
	Amount          decimal.Decimal
	Type            TransactionType
	Reason          string
	TransactionDate time.Time
	CreatedBy       *uuid.UUID
}

// NewAccountTransaction validates and builds a transaction
func NewAccountTransaction(accountID uuid.UUID, amount decimal.Decimal, txType TransactionType, reason string, date time.Time, actor *uuid.UUID) (*AccountTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return &AccountTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		AccountID:       accountID,
		Amount:          amount,
		Type:            txType,
		Reason:          reason,
		TransactionDate: date,
		CreatedBy:       actor,
	}, nil
}

// InvoicePayment links an invoice to the transaction that settled it
type InvoicePayment struct {
	shared.BaseEntity
	InvoiceID     uuid.UUID
	TransactionID uuid.UUID
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Note          string
	CreatedBy     *uuid.UUID
}

// NewInvoicePayment builds a payment for an already created transaction
func NewInvoicePayment(invoiceID uuid.UUID, tx *AccountTransaction, note string) *InvoicePayment {
	return &InvoicePayment{
		BaseEntity:    shared.NewBaseEntity(),
		InvoiceID:     invoiceID,
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		PaymentDate:   tx.TransactionDate,
		Note:          note,
		CreatedBy:     tx.CreatedBy,
	}
}

// AccountRepository reads accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Save(ctx context.Context, account *Account) error
}

// TransactionRepository persists transactions and payments. CreateSettlement
// writes a transaction and its payment in one unit.
type TransactionRepository interface {
	Create(ctx context.Context, tx *AccountTransaction) error
	CreateSettlement(ctx context.Context, tx *AccountTransaction, payment *InvoicePayment) error
	FindPaymentsByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]InvoicePayment, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]AccountTransaction, error)
}
