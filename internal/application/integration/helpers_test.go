package integration_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appintegration "github.com/erp/storesync/internal/application/integration"
	"github.com/erp/storesync/internal/domain/catalog"
	"github.com/erp/storesync/internal/domain/finance"
	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/shared"
	"github.com/erp/storesync/internal/infrastructure/persistence"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
)

// ---------------------------------------------------------------------------
// Fake storefront
// ---------------------------------------------------------------------------

// fakePlatform assigns sequential ids to creates and echoes update ids.
// The *Fn hooks replace the default behaviour when set.
type fakePlatform struct {
	mu sync.Mutex

	batchSize int
	nextID    int64
	mediaID   int64

	categoryBatches []integration.CategoryBatch
	productBatches  []integration.ProductBatch
	categoryFn      func(integration.CategoryBatch) (*integration.BatchResult, error)
	productFn       func(integration.ProductBatch) (*integration.BatchResult, error)

	orders        []integration.RemoteOrder
	ordersErr     error
	ordersCalls   int
	customers     map[int64]*integration.RemoteCustomer
	customerErr   error
	onGetCustomer func()

	taxRates []integration.TaxRate
	taxErrs  []error
	taxCalls int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{batchSize: 99, nextID: 100, customers: map[int64]*integration.RemoteCustomer{}}
}

func (f *fakePlatform) assign(creates, updates int, ids []int64, withMedia bool) *integration.BatchResult {
	res := &integration.BatchResult{}
	for i := 0; i < creates; i++ {
		f.nextID++
		r := integration.BatchItemResult{ID: f.nextID}
		if withMedia {
			f.mediaID++
			m := f.mediaID
			r.MediaID = &m
		}
		res.Create = append(res.Create, r)
	}
	for i := 0; i < updates; i++ {
		res.Update = append(res.Update, integration.BatchItemResult{ID: ids[i]})
	}
	return res
}

func (f *fakePlatform) BatchCategories(_ context.Context, batch integration.CategoryBatch) (*integration.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categoryBatches = append(f.categoryBatches, batch)
	if f.categoryFn != nil {
		return f.categoryFn(batch)
	}
	ids := make([]int64, len(batch.Update))
	for i, c := range batch.Update {
		ids[i] = c.RemoteID
	}
	return f.assign(len(batch.Create), len(batch.Update), ids, false), nil
}

func (f *fakePlatform) BatchProducts(_ context.Context, batch integration.ProductBatch) (*integration.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productBatches = append(f.productBatches, batch)
	if f.productFn != nil {
		return f.productFn(batch)
	}
	ids := make([]int64, len(batch.Update))
	for i, p := range batch.Update {
		ids[i] = p.RemoteID
	}
	return f.assign(len(batch.Create), len(batch.Update), ids, false), nil
}

func (f *fakePlatform) ListOrders(context.Context) ([]integration.RemoteOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ordersCalls++
	out := make([]integration.RemoteOrder, len(f.orders))
	copy(out, f.orders)
	return out, f.ordersErr
}

func (f *fakePlatform) GetCustomer(_ context.Context, id int64) (*integration.RemoteCustomer, error) {
	f.mu.Lock()
	hook := f.onGetCustomer
	c, ok := f.customers[id]
	err := f.customerErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, integration.ErrPlatformRequestFailed
	}
	return c, nil
}

// ListTaxRates fails with the queued taxErrs first, then serves taxRates
func (f *fakePlatform) ListTaxRates(context.Context) ([]integration.TaxRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taxCalls++
	if len(f.taxErrs) > 0 {
		err := f.taxErrs[0]
		f.taxErrs = f.taxErrs[1:]
		return nil, err
	}
	return f.taxRates, nil
}

func (f *fakePlatform) MaxBatchSize() int { return f.batchSize }

func (f *fakePlatform) setOrders(orders ...integration.RemoteOrder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = orders
}

// staticResolver serves image URLs from a fixed host
type staticResolver struct{}

func (staticResolver) URL(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

type failingResolver struct{}

func (failingResolver) URL(context.Context, string) (string, error) {
	return "", errors.New("bucket unreachable")
}

// ---------------------------------------------------------------------------
// Environment
// ---------------------------------------------------------------------------

type syncEnv struct {
	db           *gorm.DB
	platform     *fakePlatform
	products     *persistence.GormProductRepository
	categories   *persistence.GormCategoryRepository
	clients      *persistence.GormClientRepository
	invoices     *persistence.GormInvoiceRepository
	returns      *persistence.GormInvoiceReturnRepository
	transactions *persistence.GormTransactionRepository
	accounts     *persistence.GormAccountRepository
	settingsRepo *persistence.GormSyncSettingRepository
	logRepo      *persistence.GormSyncLogRepository

	ledger   *appintegration.SyncLedgerService
	settings *appintegration.SyncSettingsService
	catalog  *appintegration.CatalogSyncService
	orders   *appintegration.OrderSyncService
	account  *finance.Account
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newSyncEnv(t *testing.T) *syncEnv {
	t.Helper()
	db := setupTestDB(t)
	log := zaptest.NewLogger(t)

	env := &syncEnv{
		db:           db,
		platform:     newFakePlatform(),
		products:     persistence.NewGormProductRepository(db),
		categories:   persistence.NewGormCategoryRepository(db),
		clients:      persistence.NewGormClientRepository(db),
		invoices:     persistence.NewGormInvoiceRepository(db),
		returns:      persistence.NewGormInvoiceReturnRepository(db),
		transactions: persistence.NewGormTransactionRepository(db),
		accounts:     persistence.NewGormAccountRepository(db),
		settingsRepo: persistence.NewGormSyncSettingRepository(db),
		logRepo:      persistence.NewGormSyncLogRepository(db),
	}
	env.ledger = appintegration.NewSyncLedgerService(env.logRepo, log)
	env.settings = appintegration.NewSyncSettingsService(env.settingsRepo, env.accounts, log)

	env.catalog = appintegration.NewCatalogSyncService(env.platform, env.products, env.categories, env.settings, env.ledger, log)
	env.catalog.SetRetryPolicy(appintegration.RetryPolicy{MaxRetries: 1, Delay: time.Millisecond})
	env.catalog.SetMediaResolver(staticResolver{})

	env.orders = appintegration.NewOrderSyncService(
		env.platform,
		persistence.NewGormTransactionScope(db),
		env.products,
		env.invoices,
		env.accounts,
		env.settings,
		env.ledger,
		log,
	)
	env.orders.SetRetryPolicy(appintegration.RetryPolicy{MaxRetries: 1, Delay: time.Millisecond})

	env.account = &finance.Account{BaseEntity: shared.NewBaseEntity(), AccountNumber: "1000-01", Name: "Store sales"}
	require.NoError(t, env.accounts.Save(context.Background(), env.account))
	return env
}

func (e *syncEnv) configureAccount(t *testing.T) {
	t.Helper()
	require.NoError(t, e.settings.Set(context.Background(), integration.SettingSettlementAccount, e.account.ID.String()))
}

func (e *syncEnv) enable(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, e.settings.Set(context.Background(), name, "1"))
	}
}

func (e *syncEnv) newProduct(t *testing.T, code, name string, price float64, stock int64, remoteID *int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(code, name, decimal.NewFromFloat(price))
	require.NoError(t, err)
	p.InventoryCount = stock
	p.RemoteID = remoteID
	require.NoError(t, e.products.Save(context.Background(), p))
	return p
}

func (e *syncEnv) newCategory(t *testing.T, name string, active bool) *catalog.Category {
	t.Helper()
	c, err := catalog.NewCategory(name)
	require.NoError(t, err)
	c.Active = active
	require.NoError(t, e.categories.Save(context.Background(), c))
	return c
}

func (e *syncEnv) newSubCategory(t *testing.T, parent uuid.UUID, name string) *catalog.SubCategory {
	t.Helper()
	s, err := catalog.NewSubCategory(parent, name)
	require.NoError(t, err)
	require.NoError(t, e.categories.SaveSubCategory(context.Background(), s))
	return s
}

func (e *syncEnv) product(t *testing.T, id uuid.UUID) *catalog.Product {
	t.Helper()
	p, err := e.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (e *syncEnv) ledgerEntries(t *testing.T, kind integration.SyncKind) []integration.SyncLogEntry {
	t.Helper()
	entries, _, err := e.logRepo.List(context.Background(), integration.SyncLogFilter{Kind: kind, PageSize: 100})
	require.NoError(t, err)
	return entries
}

func (e *syncEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func int64Ptr(v int64) *int64 { return &v }

func errorTypes(errs []integration.SyncError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.ErrorType
	}
	return out
}
