package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/storesync/internal/domain/catalog"
	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SyncScope selects which categories a pass looks at
type SyncScope string

const (
	// SyncScopeIncremental takes entities changed since the last sync, plus unmatched ones
	SyncScopeIncremental SyncScope = "incremental"
	// SyncScopeFull takes every active entity
	SyncScopeFull SyncScope = "full"
)

// IsValid returns true if the scope is known
func (s SyncScope) IsValid() bool {
	return s == SyncScopeIncremental || s == SyncScopeFull
}

// DefaultProductPageSize is the page size SyncAllProducts walks the catalog with
const DefaultProductPageSize = 100

// CatalogSyncService pushes local categories and products to the storefront
type CatalogSyncService struct {
	platform   integration.CommercePlatform
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	settings   *SyncSettingsService
	ledger     *SyncLedgerService
	media      MediaURLResolver
	retry      RetryPolicy
	pageSize   int
	logger     *zap.Logger
}

// NewCatalogSyncService creates a new CatalogSyncService
func NewCatalogSyncService(
	platform integration.CommercePlatform,
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	settings *SyncSettingsService,
	ledger *SyncLedgerService,
	logger *zap.Logger,
) *CatalogSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogSyncService{
		platform:   platform,
		products:   products,
		categories: categories,
		settings:   settings,
		ledger:     ledger,
		retry:      DefaultRetryPolicy(),
		pageSize:   DefaultProductPageSize,
		logger:     logger,
	}
}

// SetMediaResolver sets the resolver used for images without a remote media id
func (s *CatalogSyncService) SetMediaResolver(media MediaURLResolver) {
	s.media = media
}

// SetRetryPolicy overrides the retry policy for batch calls
func (s *CatalogSyncService) SetRetryPolicy(policy RetryPolicy) {
	s.retry = policy
}

// SetPageSize sets the page size SyncAllProducts uses
func (s *CatalogSyncService) SetPageSize(size int) {
	if size > 0 {
		s.pageSize = size
	}
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// SyncCategories pushes categories, then the subcategories whose parent is
// linked. Subcategories of unlinked parents wait for a later pass.
func (s *CatalogSyncService) SyncCategories(ctx context.Context, actor *uuid.UUID, scope SyncScope) (*SyncSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog_sync", "categories")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSyncKind, integration.SyncKindCategories.String(),
		telemetry.SpanAttrSyncScope, string(scope),
	)

	if !scope.IsValid() {
		scope = SyncScopeIncremental
	}
	var since *time.Time
	if scope == SyncScopeIncremental {
		last, err := s.ledger.LastSuccessfulSync(ctx, integration.SyncKindCategories)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		since = last
	}

	cats, err := s.categories.FindActive(ctx, since)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load categories: %w", err)
	}
	subs, err := s.categories.FindActiveSubCategories(ctx, since)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load subcategories: %w", err)
	}

	tally := &batchTally{}
	passErr := s.pushCategories(ctx, cats, tally)
	if passErr == nil {
		passErr = s.pushSubCategories(ctx, subs, tally)
	}
	return s.finish(ctx, span, integration.SyncKindCategories, actor, tally, passErr)
}

func (s *CatalogSyncService) pushCategories(ctx context.Context, cats []catalog.Category, tally *batchTally) error {
	var creates, updates []batchItem[integration.CategoryPayload]
	for i := range cats {
		cat := &cats[i]
		item := batchItem[integration.CategoryPayload]{
			label:   cat.Name,
			payload: integration.CategoryPayload{Name: cat.Name},
			apply:   noWriteBack,
		}
		if cat.RemoteID == nil {
			item.apply = func(ctx context.Context, res integration.BatchItemResult) error {
				if err := cat.AssignRemoteID(res.ID); err != nil {
					return err
				}
				return s.categories.UpdateRemoteID(ctx, cat)
			}
			creates = append(creates, item)
			continue
		}
		item.remoteID = *cat.RemoteID
		item.payload.RemoteID = *cat.RemoteID
		updates = append(updates, item)
	}
	return pushBatches(ctx, s.platform.MaxBatchSize(), s.retry, creates, updates, s.postCategories, tally)
}

func (s *CatalogSyncService) pushSubCategories(ctx context.Context, subs []catalog.SubCategory, tally *batchTally) error {
	if len(subs) == 0 {
		return nil
	}

	// Parents are read after the category push so ids assigned in this pass count
	parentIDs := make([]uuid.UUID, 0, len(subs))
	seen := make(map[uuid.UUID]struct{}, len(subs))
	for _, sub := range subs {
		if _, ok := seen[sub.CategoryID]; !ok {
			seen[sub.CategoryID] = struct{}{}
			parentIDs = append(parentIDs, sub.CategoryID)
		}
	}
	parents, err := s.categories.FindByIDs(ctx, parentIDs)
	if err != nil {
		return fmt.Errorf("load parent categories: %w", err)
	}
	parentRemote := make(map[uuid.UUID]int64, len(parents))
	for _, p := range parents {
		if p.Active && p.RemoteID != nil {
			parentRemote[p.ID] = *p.RemoteID
		}
	}

	var creates, updates []batchItem[integration.CategoryPayload]
	deferred := 0
	for i := range subs {
		sub := &subs[i]
		parentID, ok := parentRemote[sub.CategoryID]
		if !ok {
			deferred++
			continue
		}
		item := batchItem[integration.CategoryPayload]{
			label:   sub.Name,
			payload: integration.CategoryPayload{Name: sub.Name, ParentID: &parentID},
			apply:   noWriteBack,
		}
		if sub.RemoteID == nil {
			item.apply = func(ctx context.Context, res integration.BatchItemResult) error {
				if err := sub.AssignRemoteID(res.ID); err != nil {
					return err
				}
				return s.categories.UpdateSubCategoryRemoteID(ctx, sub)
			}
			creates = append(creates, item)
			continue
		}
		item.remoteID = *sub.RemoteID
		item.payload.RemoteID = *sub.RemoteID
		updates = append(updates, item)
	}
	if deferred > 0 {
		s.logger.Info("Subcategories deferred until their parent is linked", zap.Int("count", deferred))
	}
	return pushBatches(ctx, s.platform.MaxBatchSize(), s.retry, creates, updates, s.postCategories, tally)
}

func (s *CatalogSyncService) postCategories(ctx context.Context, create, update []integration.CategoryPayload) (*integration.BatchResult, error) {
	return s.platform.BatchCategories(ctx, integration.CategoryBatch{Create: create, Update: update})
}

// ResetCategories unlinks every category and subcategory
func (s *CatalogSyncService) ResetCategories(ctx context.Context, actor *uuid.UUID) (*SyncSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog_sync", "reset_categories")
	defer span.End()

	n, err := s.categories.ClearRemoteIDs(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("clear category remote ids: %w", err)
	}
	return s.recordReset(ctx, integration.SyncKindCategories, actor, n)
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// SyncProducts pushes one page of active products. page is zero based and
// counts in units of pageSize.
func (s *CatalogSyncService) SyncProducts(ctx context.Context, actor *uuid.UUID, pageSize, page int) (*SyncSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog_sync", "products")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrSyncKind, integration.SyncKindProducts.String(), "page", page)

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	if page < 0 {
		page = 0
	}
	products, err := s.products.FindActivePage(ctx, pageSize, page*pageSize)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load products: %w", err)
	}

	tally := &batchTally{}
	passErr := s.pushProducts(ctx, products, settings, tally)
	return s.finish(ctx, span, integration.SyncKindProducts, actor, tally, passErr)
}

// SyncAllProducts walks the whole catalog page by page and records one
// ledger entry for the run
func (s *CatalogSyncService) SyncAllProducts(ctx context.Context, actor *uuid.UUID) (*SyncSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog_sync", "all_products")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrSyncKind, integration.SyncKindProducts.String())

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	tally := &batchTally{}
	var passErr error
	for offset := 0; ; offset += s.pageSize {
		products, err := s.products.FindActivePage(ctx, s.pageSize, offset)
		if err != nil {
			passErr = fmt.Errorf("load products: %w", err)
			break
		}
		if passErr = s.pushProducts(ctx, products, settings, tally); passErr != nil {
			break
		}
		if len(products) < s.pageSize {
			break
		}
	}
	return s.finish(ctx, span, integration.SyncKindProducts, actor, tally, passErr)
}

func (s *CatalogSyncService) pushProducts(ctx context.Context, products []catalog.Product, settings integration.SyncSettings, tally *batchTally) error {
	if len(products) == 0 {
		return nil
	}
	subRemote, err := s.subCategoryRemoteIDs(ctx, products)
	if err != nil {
		return err
	}

	createFields := settings.CreateFields()
	var creates, updates []batchItem[integration.ProductPayload]
	for i := range products {
		p := &products[i]
		item := batchItem[integration.ProductPayload]{
			label: p.Name,
			ref:   p.Code + " " + p.Name,
		}
		if p.RemoteID == nil {
			item.payload = s.productPayload(ctx, p, createFields, subRemote)
			item.apply = func(ctx context.Context, res integration.BatchItemResult) error {
				if err := p.AssignRemoteID(res.ID); err != nil {
					return err
				}
				if res.MediaID != nil {
					p.AssignRemoteMediaID(*res.MediaID)
				}
				return s.products.UpdateRemoteIdentity(ctx, p)
			}
			creates = append(creates, item)
			continue
		}
		item.remoteID = *p.RemoteID
		item.payload = s.productPayload(ctx, p, settings.Update, subRemote)
		item.payload.RemoteID = *p.RemoteID
		item.apply = func(ctx context.Context, res integration.BatchItemResult) error {
			if res.MediaID == nil || (p.RemoteMediaID != nil && *p.RemoteMediaID == *res.MediaID) {
				return nil
			}
			p.AssignRemoteMediaID(*res.MediaID)
			return s.products.UpdateRemoteIdentity(ctx, p)
		}
		updates = append(updates, item)
	}
	return pushBatches(ctx, s.platform.MaxBatchSize(), s.retry, creates, updates, s.postProducts, tally)
}

// subCategoryRemoteIDs maps the subcategories referenced by products to their remote ids
func (s *CatalogSyncService) subCategoryRemoteIDs(ctx context.Context, products []catalog.Product) (map[uuid.UUID]int64, error) {
	ids := make([]uuid.UUID, 0, len(products))
	seen := make(map[uuid.UUID]struct{})
	for _, p := range products {
		if p.SubCategoryID == nil {
			continue
		}
		if _, ok := seen[*p.SubCategoryID]; !ok {
			seen[*p.SubCategoryID] = struct{}{}
			ids = append(ids, *p.SubCategoryID)
		}
	}
	out := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	subs, err := s.categories.FindSubCategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load product subcategories: %w", err)
	}
	for _, sub := range subs {
		if sub.RemoteID != nil {
			out[sub.ID] = *sub.RemoteID
		}
	}
	return out, nil
}

// productPayload includes only the fields switched on in fields
func (s *CatalogSyncService) productPayload(ctx context.Context, p *catalog.Product, fields integration.FieldToggles, subRemote map[uuid.UUID]int64) integration.ProductPayload {
	var payload integration.ProductPayload
	if fields.Name {
		name := p.Name
		payload.Name = &name
	}
	if fields.Price {
		price := p.SellingPrice()
		payload.Price = &price
	}
	if fields.Category && p.SubCategoryID != nil {
		if id, ok := subRemote[*p.SubCategoryID]; ok {
			payload.CategoryIDs = []int64{id}
		}
	}
	if fields.Description && p.Note != "" {
		note := p.Note
		payload.Description = &note
	}
	if fields.Image && p.ImagePath != "" {
		payload.Image = s.imageRef(ctx, p)
	}
	if fields.Quantity {
		qty := p.StockQuantity()
		payload.StockQuantity = &qty
	}
	return payload
}

func (s *CatalogSyncService) imageRef(ctx context.Context, p *catalog.Product) *integration.ImageRef {
	if p.RemoteMediaID != nil {
		id := *p.RemoteMediaID
		return &integration.ImageRef{MediaID: &id}
	}
	if s.media == nil || p.ImagePath == "" {
		return nil
	}
	url, err := s.media.URL(ctx, p.ImagePath)
	if err != nil {
		s.logger.Warn("Product image URL unavailable, sending without image",
			zap.String("product_code", p.Code),
			zap.Error(err),
		)
		return nil
	}
	return &integration.ImageRef{Src: url}
}

func (s *CatalogSyncService) postProducts(ctx context.Context, create, update []integration.ProductPayload) (*integration.BatchResult, error) {
	return s.platform.BatchProducts(ctx, integration.ProductBatch{Create: create, Update: update})
}

// ResetProducts unlinks every product from the storefront
func (s *CatalogSyncService) ResetProducts(ctx context.Context, actor *uuid.UUID) (*SyncSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog_sync", "reset_products")
	defer span.End()

	n, err := s.products.ClearRemoteIdentities(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("clear product remote ids: %w", err)
	}
	return s.recordReset(ctx, integration.SyncKindProducts, actor, n)
}

// ---------------------------------------------------------------------------
// Shared
// ---------------------------------------------------------------------------

func noWriteBack(context.Context, integration.BatchItemResult) error { return nil }

// finish writes the ledger entry for a pass and builds the summary. A pass
// that stopped early is recorded as failed so the incremental cursor does
// not move past entities it never reached.
func (s *CatalogSyncService) finish(
	ctx context.Context,
	span trace.Span,
	kind integration.SyncKind,
	actor *uuid.UUID,
	tally *batchTally,
	passErr error,
) (*SyncSummary, error) {
	summary := newSummary(kind)
	summary.Created = len(tally.created)
	summary.Updated = len(tally.updated)
	op := tally.operation()
	errs := tally.errors

	switch {
	case passErr == nil:
		summary.Message = fmt.Sprintf("%s sync completed: %d created, %d updated, %d errors",
			kind, summary.Created, summary.Updated, len(errs))
	case ctx.Err() != nil:
		errs = append(errs, integration.SyncError{ErrorType: integration.ErrorTypeSyncTimeout, Message: ctx.Err().Error()})
		op = integration.SyncOperationFailed
		summary.Partial = true
		summary.fail(fmt.Sprintf("%s sync interrupted after %d created, %d updated", kind, summary.Created, summary.Updated))
	default:
		errs = append(errs, integration.SyncError{ErrorType: integration.ErrorTypeBatchFailed, Message: passErr.Error()})
		op = integration.SyncOperationFailed
		summary.fail(fmt.Sprintf("%s sync failed: %v", kind, passErr))
	}
	if len(errs) > 0 {
		summary.Errors = errs
	}

	if _, err := s.ledger.Record(context.WithoutCancel(ctx), kind, op, actor, tally.items(), errs); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrItemsCount, summary.Created+summary.Updated,
		telemetry.SpanAttrFailedCount, len(errs),
	)
	if passErr != nil {
		telemetry.RecordError(span, passErr)
		s.logger.Error("Catalog sync failed",
			zap.String("sync_type", kind.String()),
			zap.Int("created", summary.Created),
			zap.Int("updated", summary.Updated),
			zap.Error(passErr),
		)
	} else {
		telemetry.SetOK(span)
		s.logger.Info("Catalog sync completed",
			zap.String("sync_type", kind.String()),
			zap.Int("created", summary.Created),
			zap.Int("updated", summary.Updated),
			zap.Int("errors", len(errs)),
		)
	}
	return summary, nil
}

func (s *CatalogSyncService) recordReset(ctx context.Context, kind integration.SyncKind, actor *uuid.UUID, n int64) (*SyncSummary, error) {
	if _, err := s.ledger.Record(ctx, kind, integration.SyncOperationReset, actor, nil, nil); err != nil {
		return nil, err
	}
	s.logger.Warn("Remote identities cleared",
		zap.String("sync_type", kind.String()),
		zap.Int64("rows", n),
	)
	summary := newSummary(kind)
	summary.Message = fmt.Sprintf("%s reset: %d rows unlinked", kind, n)
	return summary, nil
}
