package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/storesync/internal/domain/finance"
	"github.com/erp/storesync/internal/domain/integration"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// knownSettings are the names Set accepts
var knownSettings = map[string]struct{}{
	integration.SettingCreateDescription:    {},
	integration.SettingCreateImage:          {},
	integration.SettingCreateQuantity:       {},
	integration.SettingUpdateName:           {},
	integration.SettingUpdatePrice:          {},
	integration.SettingUpdateCategory:       {},
	integration.SettingUpdateDescription:    {},
	integration.SettingUpdateImage:          {},
	integration.SettingUpdateQuantity:       {},
	integration.SettingSettlementAccount:    {},
	integration.SettingWebhookOrderCreated:  {},
	integration.SettingWebhookOrderUpdated:  {},
	integration.SettingWebhookOrderDeleted:  {},
	integration.SettingWebhookOrderRestored: {},
}

// SyncSettingsService reads and writes the sync settings store
type SyncSettingsService struct {
	repo      integration.SyncSettingRepository
	accounts  finance.AccountRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSyncSettingsService creates a new SyncSettingsService
func NewSyncSettingsService(repo integration.SyncSettingRepository, accounts finance.AccountRepository, logger *zap.Logger) *SyncSettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncSettingsService{
		repo:      repo,
		accounts:  accounts,
		validator: validator.New(),
		logger:    logger,
	}
}

// Get returns a stored value; unset settings report ok=false
func (s *SyncSettingsService) Get(ctx context.Context, name string) (string, bool, error) {
	return s.repo.Get(ctx, name)
}

// Set stores one setting after checking its name and value
func (s *SyncSettingsService) Set(ctx context.Context, name, value string) error {
	if err := s.check(ctx, name, value); err != nil {
		return err
	}
	return s.repo.Set(ctx, name, value)
}

// Snapshot loads every setting into the typed form a sync pass reads
func (s *SyncSettingsService) Snapshot(ctx context.Context) (integration.SyncSettings, error) {
	values, err := s.repo.All(ctx)
	if err != nil {
		return integration.SyncSettings{}, fmt.Errorf("load sync settings: %w", err)
	}
	return integration.ParseSyncSettings(values)
}

// GetAll returns the settings view
func (s *SyncSettingsService) GetAll(ctx context.Context) (*SyncSettingsResponse, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	resp := ToSyncSettingsResponse(snapshot)
	return &resp, nil
}

// Update applies every non-nil field of req in one write
func (s *SyncSettingsService) Update(ctx context.Context, req UpdateSyncSettingsRequest) (*SyncSettingsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrInvalidSetting, err)
	}

	values := req.values()
	for name, value := range values {
		if err := s.check(ctx, name, value); err != nil {
			return nil, err
		}
	}
	if len(values) > 0 {
		if err := s.repo.SetMany(ctx, values); err != nil {
			return nil, err
		}
		s.logger.Info("Sync settings updated", zap.Int("count", len(values)))
	}
	return s.GetAll(ctx)
}

func (s *SyncSettingsService) check(ctx context.Context, name, value string) error {
	if _, ok := knownSettings[name]; !ok {
		return fmt.Errorf("%w: unknown setting %q", integration.ErrInvalidSetting, name)
	}
	if name != integration.SettingSettlementAccount || value == "" {
		return nil
	}

	id, err := uuid.Parse(value)
	if err != nil {
		return fmt.Errorf("%w: %s is not a valid account id", integration.ErrInvalidSetting, name)
	}
	if _, err := s.accounts.FindByID(ctx, id); err != nil {
		if errors.Is(err, finance.ErrAccountNotFound) {
			return fmt.Errorf("%w: account %s does not exist", integration.ErrInvalidSetting, id)
		}
		return err
	}
	return nil
}
