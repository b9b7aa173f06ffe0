package router

import (
	"github.com/erp/storesync/internal/interfaces/http/handler"
)

// NewSyncGroup maps the sync endpoints under /sync
func NewSyncGroup(h *handler.SyncHandler) *DomainGroup {
	return NewDomainGroup("sync", "/sync").
		POST("/products", h.SyncProducts).
		POST("/products/reset", h.ResetProducts).
		POST("/categories", h.SyncCategories).
		POST("/categories/reset", h.ResetCategories).
		POST("/orders", h.SyncOrders).
		GET("/logs", h.ListLogs).
		GET("/settings", h.GetSettings).
		PUT("/settings", h.UpdateSettings).
		GET("/taxes", h.ListTaxRates).
		GET("/vat-rates", h.ListVatRates).
		PUT("/vat-rates", h.MapVatRates)
}

// NewSystemGroup maps the system endpoints under /system
func NewSystemGroup(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.GetSystemInfo).
		GET("/ping", h.Ping)
}
