package persistence

import (
	"context"
	"errors"

	"github.com/erp/storesync/internal/domain/finance"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, finance.ErrAccountNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *finance.Account) error {
	model := &models.AccountModel{}
	model.FromDomain(account)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormAccountRepository implements AccountRepository
var _ finance.AccountRepository = (*GormAccountRepository)(nil)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create inserts a single account transaction
func (r *GormTransactionRepository) Create(ctx context.Context, tx *finance.AccountTransaction) error {
	model := &models.AccountTransactionModel{}
	model.FromDomain(tx)
	return r.db.WithContext(ctx).Create(model).Error
}

// CreateSettlement inserts the transaction and the invoice payment pointing at it
func (r *GormTransactionRepository) CreateSettlement(ctx context.Context, tx *finance.AccountTransaction, payment *finance.InvoicePayment) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		txModel := &models.AccountTransactionModel{}
		txModel.FromDomain(tx)
		if err := db.Create(txModel).Error; err != nil {
			return err
		}
		payment.TransactionID = tx.ID
		paymentModel := &models.InvoicePaymentModel{}
		paymentModel.FromDomain(payment)
		return db.Create(paymentModel).Error
	})
}

// FindPaymentsByInvoice lists the payments recorded against an invoice
func (r *GormTransactionRepository) FindPaymentsByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]finance.InvoicePayment, error) {
	var rows []models.InvoicePaymentModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]finance.InvoicePayment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// FindByAccount lists the transactions of an account, oldest first
func (r *GormTransactionRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]finance.AccountTransaction, error) {
	var rows []models.AccountTransactionModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("transaction_date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	txs := make([]finance.AccountTransaction, len(rows))
	for i := range rows {
		txs[i] = *rows[i].ToDomain()
	}
	return txs, nil
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ finance.TransactionRepository = (*GormTransactionRepository)(nil)

// GormVatRateRepository implements VatRateRepository using GORM
type GormVatRateRepository struct {
	db *gorm.DB
}

// NewGormVatRateRepository creates a new GormVatRateRepository
func NewGormVatRateRepository(db *gorm.DB) *GormVatRateRepository {
	return &GormVatRateRepository{db: db}
}

// FindAll lists every VAT rate ordered by rate
func (r *GormVatRateRepository) FindAll(ctx context.Context) ([]finance.VatRate, error) {
	var rows []models.VatRateModel
	if err := r.db.WithContext(ctx).Order("rate ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return vatRatesToDomain(rows), nil
}

// FindByIDs loads the rates with the given ids; unknown ids are skipped
func (r *GormVatRateRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]finance.VatRate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.VatRateModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return vatRatesToDomain(rows), nil
}

// Save creates or updates a VAT rate
func (r *GormVatRateRepository) Save(ctx context.Context, rate *finance.VatRate) error {
	model := &models.VatRateModel{}
	model.FromDomain(rate)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveTaxRateLinks updates the storefront tax rate link of every rate
func (r *GormVatRateRepository) SaveTaxRateLinks(ctx context.Context, rates []finance.VatRate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rates {
			result := tx.Model(&models.VatRateModel{}).
				Where("id = ?", rates[i].ID).
				Updates(map[string]any{
					"woocommerce_tax_rate_id": rates[i].RemoteTaxRateID,
					"updated_at":              rates[i].UpdatedAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return finance.ErrVatRateNotFound
			}
		}
		return nil
	})
}

func vatRatesToDomain(rows []models.VatRateModel) []finance.VatRate {
	out := make([]finance.VatRate, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormVatRateRepository implements VatRateRepository
var _ finance.VatRateRepository = (*GormVatRateRepository)(nil)
