package persistence

import (
	"context"

	appintegration "github.com/erp/storesync/internal/application/integration"
	"github.com/erp/storesync/internal/domain/catalog"
	"github.com/erp/storesync/internal/domain/finance"
	"github.com/erp/storesync/internal/domain/partner"
	"github.com/erp/storesync/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction, rolling back when fn fails.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appintegration.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories builds repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) Clients() partner.ClientRepository {
	return NewGormClientRepository(r.tx)
}

func (r *gormTransactionalRepositories) Invoices() trade.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *gormTransactionalRepositories) Returns() trade.InvoiceReturnRepository {
	return NewGormInvoiceReturnRepository(r.tx)
}

func (r *gormTransactionalRepositories) Transactions() finance.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Sequences() trade.NumberSequence {
	return NewGormNumberSequence(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appintegration.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appintegration.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
