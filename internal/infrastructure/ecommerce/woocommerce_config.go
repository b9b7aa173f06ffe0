package ecommerce

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAPIVersion is the REST namespace of the WooCommerce API
	DefaultAPIVersion = "wc/v3"
	// DefaultPageSize is the per_page value used when paging through lists
	DefaultPageSize = 100
	// MaxBatchItems is the item limit WooCommerce enforces on batch endpoints
	MaxBatchItems = 100
	// DefaultBatchSize keeps one slot of headroom under MaxBatchItems
	DefaultBatchSize = 99
)

// Errors for WooCommerce configuration
var (
	ErrWooConfigMissingURL    = errors.New("woocommerce: store url is required")
	ErrWooConfigInvalidURL    = errors.New("woocommerce: store url is invalid")
	ErrWooConfigMissingKey    = errors.New("woocommerce: consumer key is required")
	ErrWooConfigMissingSecret = errors.New("woocommerce: consumer secret is required")
)

// WooCommerceConfig holds the connection settings for one store
type WooCommerceConfig struct {
	// StoreURL is the site root, e.g. https://shop.example.com
	StoreURL string
	// ConsumerKey and ConsumerSecret are REST API credentials, sent as basic auth
	ConsumerKey    string
	ConsumerSecret string
	// APIVersion is the REST namespace, wc/v3 by default
	APIVersion string
	// Timeout bounds a single HTTP request
	Timeout time.Duration
	// PageSize is the per_page used for list endpoints
	PageSize int
	// BatchSize is the number of items sent per batch call
	BatchSize int
	// RateLimit is the sustained requests per second; zero disables limiting
	RateLimit float64
	// RateBurst is the limiter bucket size
	RateBurst int
}

// NewWooCommerceConfig creates a configuration with defaults
func NewWooCommerceConfig(storeURL, key, secret string) *WooCommerceConfig {
	return &WooCommerceConfig{
		StoreURL:       storeURL,
		ConsumerKey:    key,
		ConsumerSecret: secret,
		APIVersion:     DefaultAPIVersion,
		Timeout:        30 * time.Second,
		PageSize:       DefaultPageSize,
		BatchSize:      DefaultBatchSize,
	}
}

// Validate checks required fields and fills in defaults
func (c *WooCommerceConfig) Validate() error {
	if c.StoreURL == "" {
		return ErrWooConfigMissingURL
	}
	u, err := url.Parse(c.StoreURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrWooConfigInvalidURL
	}
	if c.ConsumerKey == "" {
		return ErrWooConfigMissingKey
	}
	if c.ConsumerSecret == "" {
		return ErrWooConfigMissingSecret
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.PageSize <= 0 || c.PageSize > 100 {
		c.PageSize = DefaultPageSize
	}
	if c.BatchSize <= 0 || c.BatchSize > MaxBatchItems {
		c.BatchSize = DefaultBatchSize
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	return nil
}

// endpoint builds the absolute URL of a REST path
func (c *WooCommerceConfig) endpoint(path string) string {
	return strings.TrimRight(c.StoreURL, "/") + "/wp-json/" + strings.Trim(c.APIVersion, "/") + "/" + strings.TrimLeft(path, "/")
}
