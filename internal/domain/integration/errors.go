package integration

import "errors"

var (
	// Platform errors
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")
	ErrBatchTooLarge           = errors.New("integration: batch exceeds platform item limit")

	// Sync errors
	ErrSettlementAccountNotConfigured = errors.New("integration: settlement account not configured")
	ErrSyncInProgress                 = errors.New("integration: sync already in progress")
	ErrInvalidSyncKind                = errors.New("integration: invalid sync kind")
	ErrInvalidSyncOperation           = errors.New("integration: invalid sync operation")
	ErrInvalidSetting                 = errors.New("integration: invalid setting")
	ErrUnknownTaxRate                 = errors.New("integration: unknown storefront tax rate")
)

// IsRetryable reports whether a failed remote call may be repeated safely
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPlatformUnavailable) || errors.Is(err, ErrPlatformRateLimited)
}
