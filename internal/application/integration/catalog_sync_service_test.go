package integration_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appintegration "github.com/erp/storesync/internal/application/integration"
	"github.com/erp/storesync/internal/domain/catalog"
	"github.com/erp/storesync/internal/domain/integration"
)

func (e *syncEnv) category(t *testing.T, id uuid.UUID) catalog.Category {
	t.Helper()
	cats, err := e.categories.FindByIDs(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	require.Len(t, cats, 1)
	return cats[0]
}

func (e *syncEnv) subCategory(t *testing.T, id uuid.UUID) catalog.SubCategory {
	t.Helper()
	subs, err := e.categories.FindSubCategoriesByIDs(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	return subs[0]
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

func TestSyncCategories_CreatesCategoryThenSubCategory(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()
	actor := uuid.New()

	tools := env.newCategory(t, "Tools", true)
	hammers := env.newSubCategory(t, tools.ID, "Hammers")

	summary, err := env.catalog.SyncCategories(ctx, &actor, appintegration.SyncScopeIncremental)
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.Created)
	assert.Empty(t, summary.Errors)

	require.Len(t, env.platform.categoryBatches, 2)
	first := env.platform.categoryBatches[0]
	require.Len(t, first.Create, 1)
	assert.Equal(t, "Tools", first.Create[0].Name)
	assert.Nil(t, first.Create[0].ParentID)

	second := env.platform.categoryBatches[1]
	require.Len(t, second.Create, 1)
	assert.Equal(t, "Hammers", second.Create[0].Name)
	require.NotNil(t, second.Create[0].ParentID)
	assert.Equal(t, int64(101), *second.Create[0].ParentID)

	assert.Equal(t, int64Ptr(101), env.category(t, tools.ID).RemoteID)
	assert.Equal(t, int64Ptr(102), env.subCategory(t, hammers.ID).RemoteID)

	entries := env.ledgerEntries(t, integration.SyncKindCategories)
	require.Len(t, entries, 1)
	assert.Equal(t, integration.SyncOperationCreated, entries[0].Operation)
	assert.Equal(t, []string{"Tools", "Hammers"}, entries[0].Items)
	assert.Equal(t, &actor, entries[0].CreatedBy)
}

func TestSyncCategories_DefersSubCategoryOfUnlinkedParent(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()

	archive := env.newCategory(t, "Archive", false)
	old := env.newSubCategory(t, archive.ID, "Old stock")

	summary, err := env.catalog.SyncCategories(ctx, nil, appintegration.SyncScopeFull)
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Zero(t, summary.Created)
	assert.Empty(t, env.platform.categoryBatches)
	assert.Nil(t, env.subCategory(t, old.ID).RemoteID)

	entries := env.ledgerEntries(t, integration.SyncKindCategories)
	require.Len(t, entries, 1)
	assert.Equal(t, integration.SyncOperationNone, entries[0].Operation)

	// Once the parent is active it is linked and the subcategory follows
	archive.Active = true
	require.NoError(t, env.categories.Save(ctx, archive))

	summary, err = env.catalog.SyncCategories(ctx, nil, appintegration.SyncScopeIncremental)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.NotNil(t, env.subCategory(t, old.ID).RemoteID)
}

func TestSyncCategories_DuplicateAdoptsExistingResource(t *testing.T) {
	env := newSyncEnv(t)
	tools := env.newCategory(t, "Tools", true)

	env.platform.categoryFn = func(b integration.CategoryBatch) (*integration.BatchResult, error) {
		return &integration.BatchResult{Create: []integration.BatchItemResult{{
			Error: &integration.BatchItemError{Code: "term_exists", Message: "A term with the name provided already exists.", ResourceID: 555},
		}}}, nil
	}

	summary, err := env.catalog.SyncCategories(context.Background(), nil, appintegration.SyncScopeIncremental)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Empty(t, summary.Errors)
	assert.Equal(t, int64Ptr(555), env.category(t, tools.ID).RemoteID)
}

func TestSyncCategories_BatchFailureDoesNotAdvanceCursor(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()
	tools := env.newCategory(t, "Tools", true)

	env.platform.categoryFn = func(integration.CategoryBatch) (*integration.BatchResult, error) {
		return nil, integration.ErrPlatformRequestFailed
	}

	summary, err := env.catalog.SyncCategories(ctx, nil, appintegration.SyncScopeIncremental)
	require.NoError(t, err)
	assert.False(t, summary.Success)
	assert.Equal(t, []string{integration.ErrorTypeBatchFailed}, errorTypes(summary.Errors))
	assert.Nil(t, env.category(t, tools.ID).RemoteID)
	// A non-retryable error is sent once
	assert.Len(t, env.platform.categoryBatches, 1)

	entries := env.ledgerEntries(t, integration.SyncKindCategories)
	require.Len(t, entries, 1)
	assert.Equal(t, integration.SyncOperationFailed, entries[0].Operation)

	last, err := env.ledger.LastSuccessfulSync(ctx, integration.SyncKindCategories)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestSyncCategories_RateLimitedBatchIsRetried(t *testing.T) {
	env := newSyncEnv(t)
	tools := env.newCategory(t, "Tools", true)

	calls := 0
	env.platform.categoryFn = func(b integration.CategoryBatch) (*integration.BatchResult, error) {
		calls++
		if calls == 1 {
			return nil, integration.ErrPlatformRateLimited
		}
		return &integration.BatchResult{Create: []integration.BatchItemResult{{ID: 900}}}, nil
	}

	summary, err := env.catalog.SyncCategories(context.Background(), nil, appintegration.SyncScopeIncremental)
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64Ptr(900), env.category(t, tools.ID).RemoteID)
}

func TestSyncCategories_IncrementalSkipsUnchanged(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()
	tools := env.newCategory(t, "Tools", true)
	env.newCategory(t, "Garden", true)

	_, err := env.catalog.SyncCategories(ctx, nil, appintegration.SyncScopeIncremental)
	require.NoError(t, err)
	require.Len(t, env.platform.categoryBatches, 1)

	t.Run("nothing changed", func(t *testing.T) {
		summary, err := env.catalog.SyncCategories(ctx, nil, appintegration.SyncScopeIncremental)
		require.NoError(t, err)
		assert.Zero(t, summary.Created)
		assert.Zero(t, summary.Updated)
		assert.Len(t, env.platform.categoryBatches, 1)
	})

	t.Run("renamed category is updated", func(t *testing.T) {
		cat := env.category(t, tools.ID)
		cat.Name = "Hand tools"
		require.NoError(t, env.categories.Save(ctx, &cat))

		summary, err := env.catalog.SyncCategories(ctx, nil, appintegration.SyncScopeIncremental)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Updated)
		last := env.platform.categoryBatches[len(env.platform.categoryBatches)-1]
		require.Len(t, last.Update, 1)
		assert.Equal(t, "Hand tools", last.Update[0].Name)
		assert.Equal(t, *cat.RemoteID, last.Update[0].RemoteID)
	})

	t.Run("full scope sends every active category", func(t *testing.T) {
		summary, err := env.catalog.SyncCategories(ctx, nil, appintegration.SyncScopeFull)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Updated)
		entries := env.ledgerEntries(t, integration.SyncKindCategories)
		assert.Equal(t, integration.SyncOperationUpdated, entries[0].Operation)
	})
}

func TestResetCategories_InvalidatesCursor(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()
	tools := env.newCategory(t, "Tools", true)
	env.newSubCategory(t, tools.ID, "Hammers")

	_, err := env.catalog.SyncCategories(ctx, nil, appintegration.SyncScopeIncremental)
	require.NoError(t, err)

	summary, err := env.catalog.ResetCategories(ctx, nil)
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Contains(t, summary.Message, "2 rows unlinked")
	assert.Nil(t, env.category(t, tools.ID).RemoteID)

	last, err := env.ledger.LastSuccessfulSync(ctx, integration.SyncKindCategories)
	require.NoError(t, err)
	assert.Nil(t, last)

	summary, err = env.catalog.SyncCategories(ctx, nil, appintegration.SyncScopeIncremental)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

func TestSyncProducts_CreatePayloadAndWriteBack(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()

	tools := env.newCategory(t, "Tools", true)
	hammers := env.newSubCategory(t, tools.ID, "Hammers")
	hammers.RemoteID = int64Ptr(7)
	require.NoError(t, env.categories.UpdateSubCategoryRemoteID(ctx, hammers))

	p, err := catalog.NewProduct("P-001", "Claw hammer", decimal.NewFromInt(100))
	require.NoError(t, err)
	p.DiscountType = catalog.DiscountTypePercent
	p.DiscountValue = decimal.NewFromInt(10)
	p.InventoryCount = -3
	p.SubCategoryID = &hammers.ID
	p.Note = "Forged steel head"
	p.ImagePath = "products/claw.png"
	require.NoError(t, env.products.Save(ctx, p))

	env.enable(t, integration.SettingCreateImage, integration.SettingCreateQuantity)
	env.platform.productFn = func(b integration.ProductBatch) (*integration.BatchResult, error) {
		media := int64(900)
		return &integration.BatchResult{Create: []integration.BatchItemResult{{ID: 321, MediaID: &media}}}, nil
	}

	summary, err := env.catalog.SyncProducts(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)

	require.Len(t, env.platform.productBatches, 1)
	require.Len(t, env.platform.productBatches[0].Create, 1)
	payload := env.platform.productBatches[0].Create[0]
	require.NotNil(t, payload.Name)
	assert.Equal(t, "Claw hammer", *payload.Name)
	require.NotNil(t, payload.Price)
	assert.True(t, decimal.NewFromInt(90).Equal(*payload.Price))
	assert.Equal(t, []int64{7}, payload.CategoryIDs)
	require.NotNil(t, payload.StockQuantity)
	assert.Equal(t, int64(0), *payload.StockQuantity)
	require.NotNil(t, payload.Image)
	assert.Equal(t, "https://cdn.test/products/claw.png", payload.Image.Src)
	// Description stays off on create unless enabled
	assert.Nil(t, payload.Description)

	stored := env.product(t, p.ID)
	assert.Equal(t, int64Ptr(321), stored.RemoteID)
	assert.Equal(t, int64Ptr(900), stored.RemoteMediaID)

	entries := env.ledgerEntries(t, integration.SyncKindProducts)
	require.Len(t, entries, 1)
	assert.Equal(t, integration.SyncOperationCreated, entries[0].Operation)
	assert.Equal(t, []string{"Claw hammer"}, entries[0].Items)
}

func TestSyncProducts_UpdateOmitsDisabledFields(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()

	p := env.newProduct(t, "P-002", "Mallet", 25.5, 12, int64Ptr(55))
	p.RemoteMediaID = int64Ptr(77)
	p.ImagePath = "products/mallet.png"
	require.NoError(t, env.products.Save(ctx, p))

	env.enable(t, integration.SettingUpdatePrice, integration.SettingUpdateImage)

	summary, err := env.catalog.SyncProducts(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	require.Len(t, env.platform.productBatches, 1)
	batch := env.platform.productBatches[0]
	assert.Empty(t, batch.Create)
	require.Len(t, batch.Update, 1)
	payload := batch.Update[0]
	assert.Equal(t, int64(55), payload.RemoteID)
	assert.Nil(t, payload.Name)
	assert.Nil(t, payload.StockQuantity)
	assert.Nil(t, payload.Description)
	assert.Empty(t, payload.CategoryIDs)
	require.NotNil(t, payload.Price)
	assert.True(t, decimal.NewFromFloat(25.5).Equal(*payload.Price))
	require.NotNil(t, payload.Image)
	require.NotNil(t, payload.Image.MediaID)
	assert.Equal(t, int64(77), *payload.Image.MediaID)
	assert.Empty(t, payload.Image.Src)

	entries := env.ledgerEntries(t, integration.SyncKindProducts)
	require.Len(t, entries, 1)
	assert.Equal(t, integration.SyncOperationUpdated, entries[0].Operation)
}

func TestSyncProducts_EveryUnmatchedProductIsLinkedOrReported(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()

	a := env.newProduct(t, "A-1", "Anvil", 10, 1, nil)
	b := env.newProduct(t, "B-1", "Bolt", 1, 1, nil)
	c := env.newProduct(t, "C-1", "Chisel", 5, 1, nil)

	env.platform.productFn = func(batch integration.ProductBatch) (*integration.BatchResult, error) {
		return &integration.BatchResult{Create: []integration.BatchItemResult{
			{ID: 401},
			{Error: &integration.BatchItemError{Code: "product_invalid_sku", Message: "Invalid or duplicated SKU."}},
		}}, nil
	}

	summary, err := env.catalog.SyncProducts(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 1, summary.Created)
	require.Len(t, summary.Errors, 2)

	assert.Equal(t, int64Ptr(401), env.product(t, a.ID).RemoteID)
	assert.Nil(t, env.product(t, b.ID).RemoteID)
	assert.Nil(t, env.product(t, c.ID).RemoteID)

	assert.Equal(t, integration.SyncError{
		ErrorType: integration.ErrorTypeBatchItemFailed,
		Item:      "B-1 Bolt",
		Code:      "product_invalid_sku",
		Message:   "Invalid or duplicated SKU.",
	}, summary.Errors[0])
	assert.Equal(t, "C-1 Chisel", summary.Errors[1].Item)
	assert.Equal(t, "missing from batch response", summary.Errors[1].Message)

	entries := env.ledgerEntries(t, integration.SyncKindProducts)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Errors, 2)
}

func TestSyncProducts_ResolverFailureSendsWithoutImage(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()
	env.catalog.SetMediaResolver(failingResolver{})

	p := env.newProduct(t, "P-010", "Saw", 30, 2, nil)
	p.ImagePath = "products/saw.png"
	require.NoError(t, env.products.Save(ctx, p))
	env.enable(t, integration.SettingCreateImage)

	summary, err := env.catalog.SyncProducts(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	require.Len(t, env.platform.productBatches, 1)
	assert.Nil(t, env.platform.productBatches[0].Create[0].Image)
}

func TestSyncAllProducts_WalksEveryPage(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()
	env.catalog.SetPageSize(2)

	for _, code := range []string{"P-1", "P-2", "P-3", "P-4", "P-5"} {
		env.newProduct(t, code, "Item "+code, 3, 1, nil)
	}

	summary, err := env.catalog.SyncAllProducts(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Created)
	assert.Len(t, env.platform.productBatches, 3)

	entries := env.ledgerEntries(t, integration.SyncKindProducts)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Items, 5)

	var unmatched int64
	require.NoError(t, env.db.Table("products").Where("woocommerce_product_id IS NULL").Count(&unmatched).Error)
	assert.Zero(t, unmatched)

	t.Run("second run only updates", func(t *testing.T) {
		summary, err := env.catalog.SyncAllProducts(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, summary.Created)
		assert.Equal(t, 5, summary.Updated)
	})
}

func TestSyncProducts_PageIndexSelectsRows(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()

	for _, code := range []string{"P-A", "P-B", "P-C", "P-D", "P-E"} {
		env.newProduct(t, code, code, 3, 1, nil)
	}

	summary, err := env.catalog.SyncProducts(ctx, nil, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)

	require.Len(t, env.platform.productBatches, 1)
	var names []string
	for _, p := range env.platform.productBatches[0].Create {
		require.NotNil(t, p.Name)
		names = append(names, *p.Name)
	}
	assert.Equal(t, []string{"P-C", "P-D"}, names)

	t.Run("page past the end pushes nothing", func(t *testing.T) {
		summary, err := env.catalog.SyncProducts(ctx, nil, 2, 5)
		require.NoError(t, err)
		assert.Zero(t, summary.Created)
		assert.Len(t, env.platform.productBatches, 1)
	})
}

func TestSyncProducts_CancelledContextIsRecordedAsInterrupted(t *testing.T) {
	env := newSyncEnv(t)
	env.newProduct(t, "P-1", "Pliers", 4, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	env.platform.productFn = func(integration.ProductBatch) (*integration.BatchResult, error) {
		cancel()
		return nil, context.Canceled
	}

	summary, err := env.catalog.SyncProducts(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.False(t, summary.Success)
	assert.True(t, summary.Partial)
	assert.Equal(t, []string{integration.ErrorTypeSyncTimeout}, errorTypes(summary.Errors))

	entries := env.ledgerEntries(t, integration.SyncKindProducts)
	require.Len(t, entries, 1)
	assert.Equal(t, integration.SyncOperationFailed, entries[0].Operation)
}

func TestResetProducts_UnlinksEverything(t *testing.T) {
	env := newSyncEnv(t)
	ctx := context.Background()
	p := env.newProduct(t, "P-1", "Level", 8, 1, int64Ptr(12))
	p.RemoteMediaID = int64Ptr(13)
	require.NoError(t, env.products.Save(ctx, p))

	summary, err := env.catalog.ResetProducts(ctx, nil)
	require.NoError(t, err)
	assert.True(t, summary.Success)

	stored := env.product(t, p.ID)
	assert.Nil(t, stored.RemoteID)
	assert.Nil(t, stored.RemoteMediaID)

	entries := env.ledgerEntries(t, integration.SyncKindProducts)
	require.Len(t, entries, 1)
	assert.Equal(t, integration.SyncOperationReset, entries[0].Operation)
}
