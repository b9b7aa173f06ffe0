package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appintegration "github.com/erp/storesync/internal/application/integration"
	"github.com/erp/storesync/internal/interfaces/http/dto"
	"github.com/erp/storesync/internal/interfaces/http/middleware"
)

// SyncTrigger starts sync passes
type SyncTrigger interface {
	SyncAllProducts(ctx context.Context, actor *uuid.UUID) (*appintegration.SyncSummary, error)
	SyncProducts(ctx context.Context, actor *uuid.UUID, pageSize, page int) (*appintegration.SyncSummary, error)
	SyncCategories(ctx context.Context, actor *uuid.UUID, scope appintegration.SyncScope) (*appintegration.SyncSummary, error)
	SyncOrders(ctx context.Context, actor *uuid.UUID) (*appintegration.SyncSummary, error)
	ResetProducts(ctx context.Context, actor *uuid.UUID) (*appintegration.SyncSummary, error)
	ResetCategories(ctx context.Context, actor *uuid.UUID) (*appintegration.SyncSummary, error)
}

// LedgerReader lists sync ledger entries
type LedgerReader interface {
	List(ctx context.Context, filter appintegration.SyncLogListFilter) (*appintegration.SyncLogListResponse, error)
}

// SettingsStore reads and changes sync settings
type SettingsStore interface {
	GetAll(ctx context.Context) (*appintegration.SyncSettingsResponse, error)
	Update(ctx context.Context, req appintegration.UpdateSyncSettingsRequest) (*appintegration.SyncSettingsResponse, error)
}

// TaxRateStore reads storefront tax rates and maps local VAT rates onto them
type TaxRateStore interface {
	ListRemoteTaxRates(ctx context.Context) ([]appintegration.TaxRateResponse, error)
	ListVatRates(ctx context.Context) ([]appintegration.VatRateResponse, error)
	MapVatRates(ctx context.Context, req appintegration.MapVatRatesRequest) ([]appintegration.VatRateResponse, error)
}

var (
	_ SyncTrigger   = (*appintegration.SyncCoordinator)(nil)
	_ LedgerReader  = (*appintegration.SyncLedgerService)(nil)
	_ SettingsStore = (*appintegration.SyncSettingsService)(nil)
	_ TaxRateStore  = (*appintegration.TaxRateService)(nil)
)

// defaultProductPageSize applies when page is given without page_size
const defaultProductPageSize = 100

// SyncHandler handles the storefront sync endpoints
type SyncHandler struct {
	BaseHandler
	trigger  SyncTrigger
	ledger   LedgerReader
	settings SettingsStore
	taxes    TaxRateStore
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(trigger SyncTrigger, ledger LedgerReader, settings SettingsStore, taxes TaxRateStore) *SyncHandler {
	return &SyncHandler{
		trigger:  trigger,
		ledger:   ledger,
		settings: settings,
		taxes:    taxes,
	}
}

// SyncProducts godoc
// @ID           syncProducts
// @Summary      Push active products to the storefront
// @Description  Without page every active product is pushed. With page only that zero based page of page_size products is pushed.
// @Tags         sync
// @Produce      json
// @Param        X-User-ID header string false "Acting user"
// @Param        page query int false "Zero based page index"
// @Param        page_size query int false "Products per page" default(100)
// @Success      200 {object} APIResponse[appintegration.SyncSummary]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /sync/products [post]
func (h *SyncHandler) SyncProducts(c *gin.Context) {
	rawPage, paged := c.GetQuery("page")
	if !paged {
		h.runPass(c, h.trigger.SyncAllProducts)
		return
	}

	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "page must be a non-negative integer")
		return
	}
	pageSize := defaultProductPageSize
	if raw, ok := c.GetQuery("page_size"); ok {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 || pageSize > 1000 {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "page_size must be between 1 and 1000")
			return
		}
	}
	h.runPass(c, func(ctx context.Context, actor *uuid.UUID) (*appintegration.SyncSummary, error) {
		return h.trigger.SyncProducts(ctx, actor, pageSize, page)
	})
}

// SyncCategories godoc
// @ID           syncCategories
// @Summary      Push categories and subcategories to the storefront
// @Description  scope=incremental (default) takes entities changed since the last successful pass plus unlinked ones; scope=full takes all.
// @Tags         sync
// @Produce      json
// @Param        scope query string false "incremental or full"
// @Success      200 {object} APIResponse[appintegration.SyncSummary]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /sync/categories [post]
func (h *SyncHandler) SyncCategories(c *gin.Context) {
	scope := appintegration.SyncScope(c.DefaultQuery("scope", string(appintegration.SyncScopeIncremental)))
	if !scope.IsValid() {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "scope must be incremental or full")
		return
	}
	h.runPass(c, func(ctx context.Context, actor *uuid.UUID) (*appintegration.SyncSummary, error) {
		return h.trigger.SyncCategories(ctx, actor, scope)
	})
}

// SyncOrders godoc
// @ID           syncOrders
// @Summary      Pull storefront orders into invoices
// @Tags         sync
// @Produce      json
// @Success      200 {object} APIResponse[appintegration.SyncSummary]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /sync/orders [post]
func (h *SyncHandler) SyncOrders(c *gin.Context) {
	h.runPass(c, h.trigger.SyncOrders)
}

// ResetProducts godoc
// @ID           resetProducts
// @Summary      Unlink every product from the storefront
// @Tags         sync
// @Produce      json
// @Success      200 {object} APIResponse[appintegration.SyncSummary]
// @Router       /sync/products/reset [post]
func (h *SyncHandler) ResetProducts(c *gin.Context) {
	h.runPass(c, h.trigger.ResetProducts)
}

// ResetCategories godoc
// @ID           resetCategories
// @Summary      Unlink every category and subcategory from the storefront
// @Tags         sync
// @Produce      json
// @Success      200 {object} APIResponse[appintegration.SyncSummary]
// @Router       /sync/categories/reset [post]
func (h *SyncHandler) ResetCategories(c *gin.Context) {
	h.runPass(c, h.trigger.ResetCategories)
}

// runPass answers 200 for every finished pass, failed or not, so the
// summary always reaches the caller
func (h *SyncHandler) runPass(c *gin.Context, pass func(context.Context, *uuid.UUID) (*appintegration.SyncSummary, error)) {
	summary, err := pass(c.Request.Context(), middleware.GetActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Response{Success: summary.Success, Data: summary})
}

// ListLogs godoc
// @ID           listSyncLogs
// @Summary      List sync ledger entries, newest first
// @Tags         sync
// @Produce      json
// @Param        sync_type query string false "products, categories or orders"
// @Param        operation query string false "created, updated, reset, failed or none"
// @Param        term query string false "Matches kind, operation, affected items or actor"
// @Param        from query string false "Earliest entry time, RFC 3339" format(date-time)
// @Param        to query string false "Latest entry time, RFC 3339" format(date-time)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]appintegration.SyncLogResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /sync/logs [get]
func (h *SyncHandler) ListLogs(c *gin.Context) {
	var filter appintegration.SyncLogListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.ledger.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetSettings godoc
// @ID           getSyncSettings
// @Summary      Get sync settings
// @Tags         sync
// @Produce      json
// @Success      200 {object} APIResponse[appintegration.SyncSettingsResponse]
// @Router       /sync/settings [get]
func (h *SyncHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.GetAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// UpdateSettings godoc
// @ID           updateSyncSettings
// @Summary      Update sync settings
// @Description  Omitted fields keep their value.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        request body appintegration.UpdateSyncSettingsRequest true "Settings"
// @Success      200 {object} APIResponse[appintegration.SyncSettingsResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /sync/settings [put]
func (h *SyncHandler) UpdateSettings(c *gin.Context) {
	var req appintegration.UpdateSyncSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	settings, err := h.settings.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// ListTaxRates godoc
// @ID           listStorefrontTaxRates
// @Summary      List the tax rates configured in the storefront
// @Tags         sync
// @Produce      json
// @Success      200 {object} APIResponse[[]appintegration.TaxRateResponse]
// @Failure      503 {object} ErrorResponse
// @Router       /sync/taxes [get]
func (h *SyncHandler) ListTaxRates(c *gin.Context) {
	rates, err := h.taxes.ListRemoteTaxRates(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rates)
}

// ListVatRates godoc
// @ID           listVatRates
// @Summary      List local VAT rates with their storefront tax rate links
// @Tags         sync
// @Produce      json
// @Success      200 {object} APIResponse[[]appintegration.VatRateResponse]
// @Router       /sync/vat-rates [get]
func (h *SyncHandler) ListVatRates(c *gin.Context) {
	rates, err := h.taxes.ListVatRates(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rates)
}

// MapVatRates godoc
// @ID           mapVatRates
// @Summary      Link local VAT rates to storefront tax rates
// @Description  A null woocommerce_tax_rate_id removes the link. Nothing is written when any referenced rate is unknown.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        request body appintegration.MapVatRatesRequest true "Mappings"
// @Success      200 {object} APIResponse[[]appintegration.VatRateResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /sync/vat-rates [put]
func (h *SyncHandler) MapVatRates(c *gin.Context) {
	var req appintegration.MapVatRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	rates, err := h.taxes.MapVatRates(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rates)
}
