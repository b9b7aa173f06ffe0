package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/erp/storesync/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from the store API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxPages stops GetAll on stores that ignore the page parameter
const maxPages = 1000

// BatchRequest is the body of a /batch call
type BatchRequest struct {
	Create []any `json:"create,omitempty"`
	Update []any `json:"update,omitempty"`
}

// Size returns the number of items in the request
func (r BatchRequest) Size() int { return len(r.Create) + len(r.Update) }

// BatchResponse mirrors BatchRequest entry by entry
type BatchResponse struct {
	Create []wooBatchEntry `json:"create"`
	Update []wooBatchEntry `json:"update"`
}

// apiError is the error body WooCommerce returns on failed requests
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WooCommerceClient issues single-attempt REST calls against one store
type WooCommerceClient struct {
	config     *WooCommerceConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// ClientOption configures a WooCommerceClient
type ClientOption func(*WooCommerceClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *WooCommerceClient) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *WooCommerceClient) {
		c.logger = l
	}
}

// NewWooCommerceClient creates a client for the configured store
func NewWooCommerceClient(config *WooCommerceConfig, opts ...ClientOption) (*WooCommerceClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &WooCommerceClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     zap.NewNop(),
	}
	if config.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get fetches path and decodes the JSON body into out
func (c *WooCommerceClient) Get(ctx context.Context, path string, query url.Values, out any) error {
	body, _, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", integration.ErrPlatformInvalidResponse, path, err)
	}
	return nil
}

// GetAll pages through a list endpoint starting at page 1 until an empty page
// comes back. On failure the items collected so far are returned with the error.
func (c *WooCommerceClient) GetAll(ctx context.Context, path string, query url.Values) ([]json.RawMessage, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("per_page", strconv.Itoa(c.config.PageSize))

	var all []json.RawMessage
	for page := 1; page <= maxPages; page++ {
		q.Set("page", strconv.Itoa(page))

		var items []json.RawMessage
		if err := c.Get(ctx, path, q, &items); err != nil {
			return all, fmt.Errorf("page %d: %w", page, err)
		}
		if len(items) == 0 {
			return all, nil
		}
		all = append(all, items...)

		c.logger.Debug("fetched page",
			zap.String("path", path),
			zap.Int("page", page),
			zap.Int("items", len(items)),
		)
	}
	return all, nil
}

// PostBatch sends one batch call. The request must not exceed MaxBatchItems.
func (c *WooCommerceClient) PostBatch(ctx context.Context, path string, req BatchRequest) (*BatchResponse, error) {
	if req.Size() > MaxBatchItems {
		return nil, fmt.Errorf("%w: %d items", integration.ErrBatchTooLarge, req.Size())
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to encode batch: %w", err)
	}

	body, _, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}

	var resp BatchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", integration.ErrPlatformInvalidResponse, path, err)
	}
	if len(resp.Create) != len(req.Create) || len(resp.Update) != len(req.Update) {
		return nil, fmt.Errorf("%w: %s: got %d/%d results for %d/%d items", integration.ErrPlatformInvalidResponse,
			path, len(resp.Create), len(resp.Update), len(req.Create), len(req.Update))
	}
	return &resp, nil
}

// BatchSize returns the configured items per batch call
func (c *WooCommerceClient) BatchSize() int {
	return c.config.BatchSize
}

func (c *WooCommerceClient) do(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
		}
	}

	endpoint := c.config.endpoint(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("woocommerce: failed to create request: %w", err)
	}
	req.SetBasicAuth(c.config.ConsumerKey, c.config.ConsumerSecret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: failed to read response: %v", integration.ErrPlatformUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, statusError(method, path, resp.StatusCode, body)
	}
	return body, resp.StatusCode, nil
}

func statusError(method, path string, status int, body []byte) error {
	detail := fmt.Sprintf("%s %s: HTTP %d", method, path, status)
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		detail = fmt.Sprintf("%s (%s: %s)", detail, apiErr.Code, apiErr.Message)
	}

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", integration.ErrPlatformRateLimited, detail)
	case status >= 500:
		return fmt.Errorf("%w: %s", integration.ErrPlatformUnavailable, detail)
	default:
		return fmt.Errorf("%w: %s", integration.ErrPlatformRequestFailed, detail)
	}
}
