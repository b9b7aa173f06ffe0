package integration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erp/storesync/internal/domain/catalog"
	"github.com/erp/storesync/internal/domain/finance"
	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/partner"
	"github.com/erp/storesync/internal/domain/trade"
	"github.com/erp/storesync/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderSyncService mirrors storefront orders into local invoices
type OrderSyncService struct {
	platform integration.CommercePlatform
	scope    TransactionScope
	products catalog.ProductRepository
	invoices trade.InvoiceRepository
	accounts finance.AccountRepository
	settings *SyncSettingsService
	ledger   *SyncLedgerService
	retry    RetryPolicy
	logger   *zap.Logger
}

// NewOrderSyncService creates a new OrderSyncService
func NewOrderSyncService(
	platform integration.CommercePlatform,
	scope TransactionScope,
	products catalog.ProductRepository,
	invoices trade.InvoiceRepository,
	accounts finance.AccountRepository,
	settings *SyncSettingsService,
	ledger *SyncLedgerService,
	logger *zap.Logger,
) *OrderSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderSyncService{
		platform: platform,
		scope:    scope,
		products: products,
		invoices: invoices,
		accounts: accounts,
		settings: settings,
		ledger:   ledger,
		retry:    DefaultRetryPolicy(),
		logger:   logger,
	}
}

// SetRetryPolicy overrides the retry policy for remote reads
func (s *OrderSyncService) SetRetryPolicy(policy RetryPolicy) {
	s.retry = policy
}

// orderRun collects the outcome of one pass. Errors are kept per bucket so
// each ledger entry carries the errors of its own path.
type orderRun struct {
	actor      *uuid.UUID
	account    *finance.Account
	created    []string
	updated    []string
	createErrs []integration.SyncError
	updateErrs []integration.SyncError
	passErrs   []integration.SyncError
	partial    bool
}

func (r *orderRun) allErrors() []integration.SyncError {
	out := make([]integration.SyncError, 0, len(r.createErrs)+len(r.updateErrs)+len(r.passErrs))
	out = append(out, r.createErrs...)
	out = append(out, r.updateErrs...)
	return append(out, r.passErrs...)
}

// SyncOrders fetches every storefront order and applies it locally. Each
// order commits on its own; a failing order is recorded and skipped.
func (s *OrderSyncService) SyncOrders(ctx context.Context, actor *uuid.UUID) (*SyncSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_sync", "orders")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrSyncKind, integration.SyncKindOrders.String())

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	account, err := s.settlementAccount(ctx, settings)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Order sync aborted", zap.Error(err))
		return nil, err
	}

	run := &orderRun{actor: actor, account: account}

	var orders []integration.RemoteOrder
	fetchErr := withRetry(ctx, s.retry, retryFetch, func() error {
		var err error
		orders, err = s.platform.ListOrders(ctx)
		return err
	})
	if fetchErr != nil {
		s.logger.Warn("Order fetch incomplete, continuing with fetched orders",
			zap.Int("fetched", len(orders)),
			zap.Error(fetchErr),
		)
		run.passErrs = append(run.passErrs, integration.SyncError{
			ErrorType: integration.ErrorTypeOrdersFetchFailed,
			Message:   fetchErr.Error(),
		})
	}

	invoices, err := s.invoices.FindRemote(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load mirrored invoices: %w", err)
	}
	existing := make(map[int64]*trade.Invoice, len(invoices))
	for i := range invoices {
		existing[*invoices[i].RemoteOrderID] = &invoices[i]
	}

	for i := range orders {
		if err := ctx.Err(); err != nil {
			run.partial = true
			run.passErrs = append(run.passErrs, integration.SyncError{
				ErrorType: integration.ErrorTypeSyncTimeout,
				Message:   fmt.Sprintf("stopped after %d of %d orders: %v", i, len(orders), err),
			})
			break
		}
		s.syncOrder(ctx, run, &orders[i], existing)
	}

	return s.finish(ctx, run, len(orders))
}

func (s *OrderSyncService) settlementAccount(ctx context.Context, settings integration.SyncSettings) (*finance.Account, error) {
	if settings.SettlementAccountID == nil {
		return nil, integration.ErrSettlementAccountNotConfigured
	}
	account, err := s.accounts.FindByID(ctx, *settings.SettlementAccountID)
	if err != nil {
		if errors.Is(err, finance.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: account %s does not exist",
				integration.ErrSettlementAccountNotConfigured, settings.SettlementAccountID)
		}
		return nil, err
	}
	return account, nil
}

// syncOrder routes one order to the create, refund or update path
func (s *OrderSyncService) syncOrder(ctx context.Context, run *orderRun, order *integration.RemoteOrder, existing map[int64]*trade.Invoice) {
	number := orderNumber(order)
	ctx, span := telemetry.StartSpan(ctx, "order_sync.apply")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, order.ID,
		telemetry.SpanAttrOrderNumber, number,
		telemetry.SpanAttrOrderStatus, order.Status.String(),
	)

	inv, found := existing[order.ID]
	errs := &run.createErrs
	if found {
		errs = &run.updateErrs
	}

	products, missing, err := s.resolveProducts(ctx, order)
	if err != nil {
		telemetry.RecordError(span, err)
		*errs = append(*errs, orderFailed(number, err))
		return
	}
	if len(missing) > 0 {
		s.logger.Warn("Order references unknown products",
			zap.String("order_number", number),
			zap.Strings("products", missing),
		)
		*errs = append(*errs, integration.SyncError{
			ErrorType:   integration.ErrorTypeOrderProductNotFound,
			OrderNumber: number,
			Products:    missing,
			Message:     "order line items reference products that are not linked locally",
		})
		return
	}

	if !found {
		customer := s.fetchCustomer(ctx, run, order, number)
		err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			return s.createInvoice(ctx, repos, run, order, customer, products)
		})
		if err != nil {
			telemetry.RecordError(span, err)
			s.logger.Error("Failed to create invoice for order", zap.String("order_number", number), zap.Error(err))
			*errs = append(*errs, orderFailed(number, err))
			return
		}
		run.created = append(run.created, number)
		return
	}

	if isUnchanged(inv, order) {
		return
	}

	refund := inv.RemoteOrderStatus == integration.OrderStatusCompleted.String() &&
		order.Status == integration.OrderStatusRefunded
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if refund {
			return s.refundInvoice(ctx, repos, run, order, products)
		}
		return s.updateInvoice(ctx, repos, run, order, products)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to update invoice for order",
			zap.String("order_number", number),
			zap.Bool("refund", refund),
			zap.Error(err),
		)
		*errs = append(*errs, orderFailed(number, err))
		return
	}
	if refund {
		telemetry.AddEvent(span, "refund_detected", "order_number", number)
	}
	run.updated = append(run.updated, number)
}

// resolveProducts maps remote product ids to local products; missing holds
// the names of lines that reference no local product
func (s *OrderSyncService) resolveProducts(ctx context.Context, order *integration.RemoteOrder) (map[int64]*catalog.Product, []string, error) {
	found, err := s.products.FindByRemoteIDs(ctx, order.ProductIDs())
	if err != nil {
		return nil, nil, fmt.Errorf("load order products: %w", err)
	}
	products := make(map[int64]*catalog.Product, len(found))
	for i := range found {
		products[*found[i].RemoteID] = &found[i]
	}

	var missing []string
	for _, li := range order.LineItems {
		if _, ok := products[li.ProductID]; !ok {
			missing = append(missing, li.Name)
		}
	}
	return products, missing, nil
}

// fetchCustomer loads the customer record of an order, or nil for guest
// orders and failed fetches
func (s *OrderSyncService) fetchCustomer(ctx context.Context, run *orderRun, order *integration.RemoteOrder, number string) *integration.RemoteCustomer {
	if order.CustomerID == 0 {
		return nil
	}
	var customer *integration.RemoteCustomer
	err := withRetry(ctx, s.retry, retryFetch, func() error {
		var err error
		customer, err = s.platform.GetCustomer(ctx, order.CustomerID)
		return err
	})
	if err != nil {
		s.logger.Warn("Customer fetch failed, using billing details",
			zap.String("order_number", number),
			zap.Int64("customer_id", order.CustomerID),
			zap.Error(err),
		)
		run.createErrs = append(run.createErrs, integration.SyncError{
			ErrorType:   integration.ErrorTypeCustomerFetchFailed,
			OrderNumber: number,
			Message:     err.Error(),
		})
		return nil
	}
	return customer
}

// ---------------------------------------------------------------------------
// Create path
// ---------------------------------------------------------------------------

func (s *OrderSyncService) createInvoice(
	ctx context.Context,
	repos TransactionalRepositories,
	run *orderRun,
	order *integration.RemoteOrder,
	customer *integration.RemoteCustomer,
	products map[int64]*catalog.Product,
) error {
	client, err := upsertClient(ctx, repos, newClientDetails(order, customer))
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	invoiceNo, err := repos.Sequences().Next(ctx, trade.SequenceInvoice)
	if err != nil {
		return err
	}

	inv := trade.NewRemoteInvoice(invoiceNo, client.ID, order.ID, orderNumber(order), order.CreatedAt.UTC(), run.actor)
	inv.ApplyTotals(orderTotals(order, products))
	inv.MirrorRemote(order.Status.String(), utcTime(order.ModifiedAt), order.Status.IsCompleted())
	inv.LineItems = orderLines(inv, order, products)
	if err := repos.Invoices().Create(ctx, inv); err != nil {
		return fmt.Errorf("invoice: %w", err)
	}

	for _, line := range inv.LineItems {
		if err := repos.Products().AdjustInventory(ctx, line.ProductID, -line.Quantity); err != nil {
			return fmt.Errorf("inventory: %w", err)
		}
	}

	if order.Status.IsCompleted() {
		return settle(ctx, repos, run, inv, order)
	}
	return nil
}

// settle credits the settlement account and records the invoice payment
func settle(ctx context.Context, repos TransactionalRepositories, run *orderRun, inv *trade.Invoice, order *integration.RemoteOrder) error {
	if !order.Total.IsPositive() {
		return nil
	}
	reason := fmt.Sprintf("[INV-%d] Invoice Payment added to [%s]", inv.InvoiceNo, run.account.AccountNumber)
	tx, err := finance.NewAccountTransaction(run.account.ID, order.Total, finance.TransactionCredit, reason, order.PaymentDate().UTC(), run.actor)
	if err != nil {
		return err
	}
	payment := finance.NewInvoicePayment(inv.ID, tx, order.CustomerNote)
	if err := repos.Transactions().CreateSettlement(ctx, tx, payment); err != nil {
		return fmt.Errorf("settlement: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Update path
// ---------------------------------------------------------------------------

func (s *OrderSyncService) updateInvoice(
	ctx context.Context,
	repos TransactionalRepositories,
	run *orderRun,
	order *integration.RemoteOrder,
	products map[int64]*catalog.Product,
) error {
	inv, err := repos.Invoices().FindByRemoteOrderID(ctx, order.ID)
	if err != nil {
		return err
	}
	wasCompleted := inv.RemoteOrderStatus == integration.OrderStatusCompleted.String()

	clientID, err := refreshClient(ctx, repos, inv.ClientID, order)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	inv.ClientID = clientID
	inv.ApplyTotals(orderTotals(order, products))
	inv.MirrorRemote(order.Status.String(), utcTime(order.ModifiedAt), order.Status.IsCompleted())
	if err := repos.Invoices().Update(ctx, inv); err != nil {
		return fmt.Errorf("invoice: %w", err)
	}

	diff := trade.DiffLineItems(inv.LineItems, orderLines(inv, order, products))
	if err := repos.Invoices().ApplyLineItemDiff(ctx, diff); err != nil {
		return fmt.Errorf("line items: %w", err)
	}

	if order.Status.IsCompleted() && !wasCompleted {
		return settle(ctx, repos, run, inv, order)
	}
	return nil
}

// refundInvoice reverses a completed sale that the storefront refunded
func (s *OrderSyncService) refundInvoice(
	ctx context.Context,
	repos TransactionalRepositories,
	run *orderRun,
	order *integration.RemoteOrder,
	products map[int64]*catalog.Product,
) error {
	inv, err := repos.Invoices().FindByRemoteOrderID(ctx, order.ID)
	if err != nil {
		return err
	}
	returnNo, err := repos.Sequences().Next(ctx, trade.SequenceReturn)
	if err != nil {
		return err
	}

	date := time.Now().UTC()
	if order.ModifiedAt != nil {
		date = order.ModifiedAt.UTC()
	}
	reason := fmt.Sprintf("[RET-%d] Invoice Return payable sent from [%s]", returnNo, run.account.AccountNumber)
	tx, err := finance.NewAccountTransaction(run.account.ID, order.Total, finance.TransactionDebit, reason, date, run.actor)
	if err != nil {
		return err
	}
	if err := repos.Transactions().Create(ctx, tx); err != nil {
		return fmt.Errorf("refund transaction: %w", err)
	}

	ret := trade.NewInvoiceReturn(returnNo, inv.ID, tx.ID, order.RefundReason(), order.Total, date, run.actor)
	for _, li := range order.LineItems {
		p := products[li.ProductID]
		if !ret.AddLine(p.ID, li.Quantity, p.Price) {
			continue
		}
		if err := repos.Products().AdjustInventory(ctx, p.ID, li.Quantity); err != nil {
			return fmt.Errorf("inventory: %w", err)
		}
	}
	if err := repos.Returns().Create(ctx, ret); err != nil {
		return fmt.Errorf("invoice return: %w", err)
	}

	inv.MirrorRemote(integration.OrderStatusRefunded.String(), utcTime(order.ModifiedAt), inv.IsPaid)
	return repos.Invoices().Update(ctx, inv)
}

// ---------------------------------------------------------------------------
// Clients
// ---------------------------------------------------------------------------

type clientDetails struct {
	name    string
	email   string
	phone   string
	address string
}

// newClientDetails prefers the customer record and falls back to billing fields
func newClientDetails(order *integration.RemoteOrder, customer *integration.RemoteCustomer) clientDetails {
	d := clientDetails{
		name:    order.Billing.FullName(),
		email:   order.Billing.Email,
		phone:   order.Billing.Phone,
		address: order.Billing.Address1,
	}
	if customer != nil {
		if name := customer.FullName(); name != "" {
			d.name = name
		}
		if customer.Email != "" {
			d.email = customer.Email
		}
		if customer.Billing.Phone != "" {
			d.phone = customer.Billing.Phone
		}
		if loc := customer.Location(); loc != "" && d.address == "" {
			d.address = loc
		}
	}
	if d.address == "" {
		d.address = location(order.Billing)
	}
	if d.name == "" {
		d.name = d.email
	}
	if d.name == "" {
		d.name = "Order " + orderNumber(order)
	}
	return d
}

// upsertClient matches on email; an order without one gets a fresh client
func upsertClient(ctx context.Context, repos TransactionalRepositories, d clientDetails) (*partner.Client, error) {
	if partner.NormalizeEmail(d.email) != "" {
		client, err := repos.Clients().FindByEmail(ctx, d.email)
		switch {
		case err == nil:
			client.UpdateContact(d.name, d.phone, d.address)
			if err := repos.Clients().Save(ctx, client); err != nil {
				return nil, err
			}
			return client, nil
		case !errors.Is(err, partner.ErrClientNotFound):
			return nil, err
		}
	}

	code, err := repos.Sequences().Next(ctx, trade.SequenceClient)
	if err != nil {
		return nil, err
	}
	client := partner.NewClient(code, d.name, d.email)
	client.UpdateContact("", d.phone, d.address)
	if err := repos.Clients().Save(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// refreshClient updates the client of an invoice from the order billing
// details. A different billing email moves the invoice to that client.
func refreshClient(ctx context.Context, repos TransactionalRepositories, clientID uuid.UUID, order *integration.RemoteOrder) (uuid.UUID, error) {
	d := clientDetails{
		name:    order.Billing.FullName(),
		email:   order.Billing.Email,
		phone:   order.Billing.Phone,
		address: location(order.Billing),
	}

	current, err := repos.Clients().FindByID(ctx, clientID)
	if err != nil && !errors.Is(err, partner.ErrClientNotFound) {
		return uuid.Nil, err
	}
	email := partner.NormalizeEmail(d.email)
	if current == nil || (email != "" && email != current.Email) {
		if d.name == "" {
			d.name = d.email
		}
		client, err := upsertClient(ctx, repos, d)
		if err != nil {
			return uuid.Nil, err
		}
		return client.ID, nil
	}

	current.UpdateContact(d.name, d.phone, d.address)
	if err := repos.Clients().Save(ctx, current); err != nil {
		return uuid.Nil, err
	}
	return current.ID, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

// orderTotals sums line subtotals of known products only
func orderTotals(order *integration.RemoteOrder, products map[int64]*catalog.Product) trade.InvoiceTotals {
	subtotal := decimal.Zero
	for _, li := range order.LineItems {
		if _, ok := products[li.ProductID]; !ok {
			continue
		}
		lineSubtotal := li.Subtotal
		if lineSubtotal.IsZero() {
			lineSubtotal = li.Price.Mul(decimal.NewFromInt(li.Quantity))
		}
		subtotal = subtotal.Add(lineSubtotal)
	}

	discount, percent := order.Discount()
	discountType := trade.DiscountFixed
	if percent {
		discountType = trade.DiscountPercent
	}
	return trade.InvoiceTotals{
		SubTotal:      subtotal,
		Discount:      discount,
		DiscountType:  discountType,
		TransportCost: order.ShippingTotal,
		TaxTotal:      order.TotalTax,
		DeliveryPlace: order.DeliveryPlace(),
	}
}

func orderLines(inv *trade.Invoice, order *integration.RemoteOrder, products map[int64]*catalog.Product) []trade.InvoiceLineItem {
	lines := make([]trade.InvoiceLineItem, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		p, ok := products[li.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, inv.NewLineItem(p.ID, li.Quantity, li.Price, p.PurchasePrice, li.TotalTax))
	}
	return lines
}

// isUnchanged reports whether the stored mirror already matches the order
func isUnchanged(inv *trade.Invoice, order *integration.RemoteOrder) bool {
	if inv.RemoteOrderStatus != order.Status.String() {
		return false
	}
	switch {
	case inv.RemoteModifiedAt == nil && order.ModifiedAt == nil:
		return true
	case inv.RemoteModifiedAt == nil || order.ModifiedAt == nil:
		return false
	default:
		return inv.RemoteModifiedAt.Truncate(time.Second).Equal(order.ModifiedAt.Truncate(time.Second))
	}
}

func orderNumber(order *integration.RemoteOrder) string {
	if order.Number != "" {
		return order.Number
	}
	return strconv.FormatInt(order.ID, 10)
}

func orderFailed(number string, err error) integration.SyncError {
	return integration.SyncError{
		ErrorType:   integration.ErrorTypeOrderFailed,
		OrderNumber: number,
		Message:     err.Error(),
	}
}

func location(a integration.Address) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.City, a.State, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func utcTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// ---------------------------------------------------------------------------
// Ledger
// ---------------------------------------------------------------------------

// finish writes one entry per non-empty bucket. Errors without an entry of
// their own ride on the first entry written, or on a no-op entry.
func (s *OrderSyncService) finish(ctx context.Context, run *orderRun, fetched int) (*SyncSummary, error) {
	ledgerCtx := context.WithoutCancel(ctx)
	leftover := append([]integration.SyncError{}, run.passErrs...)

	type bucket struct {
		op    integration.SyncOperation
		items []string
		errs  []integration.SyncError
	}
	var buckets []bucket
	if len(run.created) > 0 {
		buckets = append(buckets, bucket{integration.SyncOperationCreated, run.created, run.createErrs})
	} else {
		leftover = append(leftover, run.createErrs...)
	}
	if len(run.updated) > 0 {
		buckets = append(buckets, bucket{integration.SyncOperationUpdated, run.updated, run.updateErrs})
	} else {
		leftover = append(leftover, run.updateErrs...)
	}
	if len(buckets) == 0 {
		buckets = append(buckets, bucket{op: integration.SyncOperationNone})
	}
	buckets[0].errs = append(append([]integration.SyncError{}, buckets[0].errs...), leftover...)

	for _, b := range buckets {
		if _, err := s.ledger.Record(ledgerCtx, integration.SyncKindOrders, b.op, run.actor, b.items, b.errs); err != nil {
			return nil, err
		}
	}

	summary := newSummary(integration.SyncKindOrders)
	summary.Created = len(run.created)
	summary.Updated = len(run.updated)
	summary.Partial = run.partial
	if errs := run.allErrors(); len(errs) > 0 {
		summary.Errors = errs
	}
	summary.Message = fmt.Sprintf("orders sync completed: %d fetched, %d created, %d updated, %d errors",
		fetched, summary.Created, summary.Updated, len(summary.Errors))
	if run.partial {
		summary.Message = fmt.Sprintf("orders sync interrupted: %d fetched, %d created, %d updated, %d errors",
			fetched, summary.Created, summary.Updated, len(summary.Errors))
	}

	s.logger.Info("Order sync completed",
		zap.Int("fetched", fetched),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("errors", len(summary.Errors)),
		zap.Bool("partial", run.partial),
	)
	return summary, nil
}
