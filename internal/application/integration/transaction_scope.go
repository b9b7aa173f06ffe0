package integration

import (
	"context"

	"github.com/erp/storesync/internal/domain/catalog"
	"github.com/erp/storesync/internal/domain/finance"
	"github.com/erp/storesync/internal/domain/partner"
	"github.com/erp/storesync/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories touched
// while applying one remote order. Everything done through the repositories
// handed to fn commits or rolls back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories sharing one transaction.
type TransactionalRepositories interface {
	Products() catalog.ProductRepository
	Clients() partner.ClientRepository
	Invoices() trade.InvoiceRepository
	Returns() trade.InvoiceReturnRepository
	Transactions() finance.TransactionRepository
	Sequences() trade.NumberSequence
}

// NoOpTransactionScope runs fn directly against the given repositories.
// It is used in tests and where atomicity is provided elsewhere.
type NoOpTransactionScope struct {
	products     catalog.ProductRepository
	clients      partner.ClientRepository
	invoices     trade.InvoiceRepository
	returns      trade.InvoiceReturnRepository
	transactions finance.TransactionRepository
	sequences    trade.NumberSequence
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	products catalog.ProductRepository,
	clients partner.ClientRepository,
	invoices trade.InvoiceRepository,
	returns trade.InvoiceReturnRepository,
	transactions finance.TransactionRepository,
	sequences trade.NumberSequence,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		products:     products,
		clients:      clients,
		invoices:     invoices,
		returns:      returns,
		transactions: transactions,
		sequences:    sequences,
	}
}

// Execute runs fn without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Products() catalog.ProductRepository        { return s.products }
func (s *NoOpTransactionScope) Clients() partner.ClientRepository          { return s.clients }
func (s *NoOpTransactionScope) Invoices() trade.InvoiceRepository          { return s.invoices }
func (s *NoOpTransactionScope) Returns() trade.InvoiceReturnRepository     { return s.returns }
func (s *NoOpTransactionScope) Transactions() finance.TransactionRepository { return s.transactions }
func (s *NoOpTransactionScope) Sequences() trade.NumberSequence            { return s.sequences }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
