package integration

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Setting names as stored in the settings table
const (
	SettingCreateDescription = "woocommerce_product_sync_create_description"
	SettingCreateImage       = "woocommerce_product_sync_create_image"
	SettingCreateQuantity    = "woocommerce_product_sync_create_quantity"

	SettingUpdateName        = "woocommerce_product_sync_update_name"
	SettingUpdatePrice       = "woocommerce_product_sync_update_price"
	SettingUpdateCategory    = "woocommerce_product_sync_update_category"
	SettingUpdateDescription = "woocommerce_product_sync_update_description"
	SettingUpdateImage       = "woocommerce_product_sync_update_image"
	SettingUpdateQuantity    = "woocommerce_product_sync_update_quantity"

	SettingSettlementAccount = "account"

	SettingWebhookOrderCreated  = "woocommerce_wh_oc_secret"
	SettingWebhookOrderUpdated  = "woocommerce_wh_ou_secret"
	SettingWebhookOrderDeleted  = "woocommerce_wh_od_secret"
	SettingWebhookOrderRestored = "woocommerce_wh_or_secret"
)

// SyncSetting is one stored name/value pair
type SyncSetting struct {
	Name  string
	Value string
}

// FieldToggles selects which product fields are pushed
type FieldToggles struct {
	Name        bool
	Price       bool
	Category    bool
	Description bool
	Image       bool
	Quantity    bool
}

// WebhookSecrets are stored for the storefront webhooks; they are not verified here
type WebhookSecrets struct {
	OrderCreated  string
	OrderUpdated  string
	OrderDeleted  string
	OrderRestored string
}

// SyncSettings is the typed snapshot a sync pass reads once at start
type SyncSettings struct {
	Create              FieldToggles
	Update              FieldToggles
	SettlementAccountID *uuid.UUID
	Webhooks            WebhookSecrets
}

// CreateFields returns the create toggles with the fields a new remote
// product always needs forced on
func (s SyncSettings) CreateFields() FieldToggles {
	f := s.Create
	f.Name = true
	f.Price = true
	f.Category = true
	return f
}

// IsTruthy treats "1", "true", "yes" and "on" as enabled; anything else,
// including an unset value, is off
func IsTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func boolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ParseSyncSettings builds a snapshot from stored values
func ParseSyncSettings(values map[string]string) (SyncSettings, error) {
	s := SyncSettings{
		Create: FieldToggles{
			Description: IsTruthy(values[SettingCreateDescription]),
			Image:       IsTruthy(values[SettingCreateImage]),
			Quantity:    IsTruthy(values[SettingCreateQuantity]),
		},
		Update: FieldToggles{
			Name:        IsTruthy(values[SettingUpdateName]),
			Price:       IsTruthy(values[SettingUpdatePrice]),
			Category:    IsTruthy(values[SettingUpdateCategory]),
			Description: IsTruthy(values[SettingUpdateDescription]),
			Image:       IsTruthy(values[SettingUpdateImage]),
			Quantity:    IsTruthy(values[SettingUpdateQuantity]),
		},
		Webhooks: WebhookSecrets{
			OrderCreated:  values[SettingWebhookOrderCreated],
			OrderUpdated:  values[SettingWebhookOrderUpdated],
			OrderDeleted:  values[SettingWebhookOrderDeleted],
			OrderRestored: values[SettingWebhookOrderRestored],
		},
	}

	if raw := strings.TrimSpace(values[SettingSettlementAccount]); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return s, fmt.Errorf("%w: %s is not a valid account id", ErrInvalidSetting, SettingSettlementAccount)
		}
		s.SettlementAccountID = &id
	}
	return s, nil
}

// Values renders the snapshot back to stored name/value pairs
func (s SyncSettings) Values() map[string]string {
	values := map[string]string{
		SettingCreateDescription:    boolValue(s.Create.Description),
		SettingCreateImage:          boolValue(s.Create.Image),
		SettingCreateQuantity:       boolValue(s.Create.Quantity),
		SettingUpdateName:           boolValue(s.Update.Name),
		SettingUpdatePrice:          boolValue(s.Update.Price),
		SettingUpdateCategory:       boolValue(s.Update.Category),
		SettingUpdateDescription:    boolValue(s.Update.Description),
		SettingUpdateImage:          boolValue(s.Update.Image),
		SettingUpdateQuantity:       boolValue(s.Update.Quantity),
		SettingWebhookOrderCreated:  s.Webhooks.OrderCreated,
		SettingWebhookOrderUpdated:  s.Webhooks.OrderUpdated,
		SettingWebhookOrderDeleted:  s.Webhooks.OrderDeleted,
		SettingWebhookOrderRestored: s.Webhooks.OrderRestored,
		SettingSettlementAccount:    "",
	}
	if s.SettlementAccountID != nil {
		values[SettingSettlementAccount] = s.SettlementAccountID.String()
	}
	return values
}

// SyncSettingRepository is the name/value settings store
type SyncSettingRepository interface {
	// Get returns the value and whether it is set
	Get(ctx context.Context, name string) (string, bool, error)
	Set(ctx context.Context, name, value string) error
	// SetMany upserts several settings in one transaction
	SetMany(ctx context.Context, values map[string]string) error
	All(ctx context.Context) (map[string]string, error)
}
