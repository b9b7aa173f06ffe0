package integration

import (
	"time"

	"github.com/erp/storesync/internal/domain/finance"
	"github.com/erp/storesync/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SyncSummary is what a trigger returns. Per-item errors are also in the ledger.
type SyncSummary struct {
	Kind    integration.SyncKind    `json:"kind"`
	Success bool                    `json:"success"`
	Partial bool                    `json:"partial"`
	Message string                  `json:"message"`
	Created int                     `json:"created"`
	Updated int                     `json:"updated"`
	Errors  []integration.SyncError `json:"errors"`
}

func newSummary(kind integration.SyncKind) *SyncSummary {
	return &SyncSummary{Kind: kind, Success: true, Errors: []integration.SyncError{}}
}

// fail marks the summary as failed with message
func (s *SyncSummary) fail(message string) *SyncSummary {
	s.Success = false
	s.Message = message
	return s
}

// SyncLogResponse is one ledger entry as returned by the API
type SyncLogResponse struct {
	ID        uuid.UUID               `json:"id"`
	Kind      string                  `json:"sync_type"`
	Operation string                  `json:"operation"`
	CreatedBy *uuid.UUID              `json:"created_by,omitempty"`
	Items     []string                `json:"items"`
	Errors    []integration.SyncError `json:"errors"`
	CreatedAt time.Time               `json:"created_at"`
}

// ToSyncLogResponse converts a ledger entry
func ToSyncLogResponse(e *integration.SyncLogEntry) SyncLogResponse {
	return SyncLogResponse{
		ID:        e.ID,
		Kind:      e.Kind.String(),
		Operation: string(e.Operation),
		CreatedBy: e.CreatedBy,
		Items:     e.Items,
		Errors:    e.Errors,
		CreatedAt: e.CreatedAt,
	}
}

// SyncLogListFilter narrows a ledger listing
type SyncLogListFilter struct {
	Kind      string `form:"sync_type" binding:"omitempty,oneof=products categories orders"`
	Operation string `form:"operation" binding:"omitempty,oneof=created updated reset failed none"`
	Term      string `form:"term" binding:"omitempty,max=100"`
	// From and To are RFC 3339 timestamps; zero means unbounded
	From     time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page     int       `form:"page" binding:"omitempty,min=1"`
	PageSize int       `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SyncLogListResponse is one page of ledger entries
type SyncLogListResponse struct {
	Items    []SyncLogResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// FieldTogglesDTO mirrors integration.FieldToggles
type FieldTogglesDTO struct {
	Name        bool `json:"name"`
	Price       bool `json:"price"`
	Category    bool `json:"category"`
	Description bool `json:"description"`
	Image       bool `json:"image"`
	Quantity    bool `json:"quantity"`
}

// SyncSettingsResponse is the settings view. Webhook secrets are reported as
// configured or not, never echoed back.
type SyncSettingsResponse struct {
	Create              FieldTogglesDTO `json:"create"`
	Update              FieldTogglesDTO `json:"update"`
	SettlementAccountID *uuid.UUID      `json:"settlement_account_id"`
	Webhooks            map[string]bool `json:"webhooks"`
}

// ToSyncSettingsResponse converts a settings snapshot
func ToSyncSettingsResponse(s integration.SyncSettings) SyncSettingsResponse {
	return SyncSettingsResponse{
		Create: FieldTogglesDTO{
			Name:        true,
			Price:       true,
			Category:    true,
			Description: s.Create.Description,
			Image:       s.Create.Image,
			Quantity:    s.Create.Quantity,
		},
		Update:              FieldTogglesDTO(s.Update),
		SettlementAccountID: s.SettlementAccountID,
		Webhooks: map[string]bool{
			"order_created":  s.Webhooks.OrderCreated != "",
			"order_updated":  s.Webhooks.OrderUpdated != "",
			"order_deleted":  s.Webhooks.OrderDeleted != "",
			"order_restored": s.Webhooks.OrderRestored != "",
		},
	}
}

// UpdateSyncSettingsRequest changes settings; nil fields are left untouched
type UpdateSyncSettingsRequest struct {
	CreateDescription *bool `json:"create_description"`
	CreateImage       *bool `json:"create_image"`
	CreateQuantity    *bool `json:"create_quantity"`

	UpdateName        *bool `json:"update_name"`
	UpdatePrice       *bool `json:"update_price"`
	UpdateCategory    *bool `json:"update_category"`
	UpdateDescription *bool `json:"update_description"`
	UpdateImage       *bool `json:"update_image"`
	UpdateQuantity    *bool `json:"update_quantity"`

	SettlementAccountID *string `json:"settlement_account_id" validate:"omitempty,uuid"`

	WebhookOrderCreated  *string `json:"webhook_order_created" validate:"omitempty,max=255"`
	WebhookOrderUpdated  *string `json:"webhook_order_updated" validate:"omitempty,max=255"`
	WebhookOrderDeleted  *string `json:"webhook_order_deleted" validate:"omitempty,max=255"`
	WebhookOrderRestored *string `json:"webhook_order_restored" validate:"omitempty,max=255"`
}

// values lists the stored name/value pairs the request changes
func (r UpdateSyncSettingsRequest) values() map[string]string {
	out := make(map[string]string)
	setBool := func(name string, v *bool) {
		if v != nil {
			out[name] = boolSetting(*v)
		}
	}
	setString := func(name string, v *string) {
		if v != nil {
			out[name] = *v
		}
	}

	setBool(integration.SettingCreateDescription, r.CreateDescription)
	setBool(integration.SettingCreateImage, r.CreateImage)
	setBool(integration.SettingCreateQuantity, r.CreateQuantity)
	setBool(integration.SettingUpdateName, r.UpdateName)
	setBool(integration.SettingUpdatePrice, r.UpdatePrice)
	setBool(integration.SettingUpdateCategory, r.UpdateCategory)
	setBool(integration.SettingUpdateDescription, r.UpdateDescription)
	setBool(integration.SettingUpdateImage, r.UpdateImage)
	setBool(integration.SettingUpdateQuantity, r.UpdateQuantity)
	setString(integration.SettingSettlementAccount, r.SettlementAccountID)
	setString(integration.SettingWebhookOrderCreated, r.WebhookOrderCreated)
	setString(integration.SettingWebhookOrderUpdated, r.WebhookOrderUpdated)
	setString(integration.SettingWebhookOrderDeleted, r.WebhookOrderDeleted)
	setString(integration.SettingWebhookOrderRestored, r.WebhookOrderRestored)
	return out
}

func boolSetting(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// TaxRateResponse is a storefront tax rate
type TaxRateResponse struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Rate     decimal.Decimal `json:"rate"`
	Country  string          `json:"country"`
	State    string          `json:"state"`
	Class    string          `json:"class"`
	Shipping bool            `json:"shipping"`
}

// ToTaxRateResponse converts a storefront tax rate
func ToTaxRateResponse(r integration.TaxRate) TaxRateResponse {
	return TaxRateResponse{
		ID:       r.ID,
		Name:     r.Name,
		Rate:     r.Rate,
		Country:  r.Country,
		State:    r.State,
		Class:    r.Class,
		Shipping: r.Shipping,
	}
}

// VatRateResponse is a local VAT rate with its storefront link
type VatRateResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	TaxRateID *int64          `json:"woocommerce_tax_rate_id"`
}

// ToVatRateResponse converts a VAT rate
func ToVatRateResponse(v *finance.VatRate) VatRateResponse {
	return VatRateResponse{ID: v.ID, Name: v.Name, Rate: v.Rate, TaxRateID: v.RemoteTaxRateID}
}

// VatRateMapping links one VAT rate to a storefront tax rate. A nil
// TaxRateID removes the link.
type VatRateMapping struct {
	VatRateID string `json:"vat_rate_id" validate:"required,uuid"`
	TaxRateID *int64 `json:"woocommerce_tax_rate_id" validate:"omitempty,min=1"`
}

// MapVatRatesRequest changes the links of the listed VAT rates
type MapVatRatesRequest struct {
	Mappings []VatRateMapping `json:"mappings" validate:"required,min=1,dive"`
}
