package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/storesync/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestWooCommerceConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *WooCommerceConfig
		wantErr error
	}{
		{name: "valid config", config: NewWooCommerceConfig("https://shop.test", "ck", "cs")},
		{name: "missing url", config: &WooCommerceConfig{ConsumerKey: "ck", ConsumerSecret: "cs"}, wantErr: ErrWooConfigMissingURL},
		{name: "relative url", config: &WooCommerceConfig{StoreURL: "shop.test", ConsumerKey: "ck", ConsumerSecret: "cs"}, wantErr: ErrWooConfigInvalidURL},
		{name: "missing key", config: &WooCommerceConfig{StoreURL: "https://shop.test", ConsumerSecret: "cs"}, wantErr: ErrWooConfigMissingKey},
		{name: "missing secret", config: &WooCommerceConfig{StoreURL: "https://shop.test", ConsumerKey: "ck"}, wantErr: ErrWooConfigMissingSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultAPIVersion, tt.config.APIVersion)
			assert.Equal(t, DefaultBatchSize, tt.config.BatchSize)
			assert.Equal(t, DefaultPageSize, tt.config.PageSize)
		})
	}
}

func TestWooCommerceConfig_Defaults(t *testing.T) {
	c := &WooCommerceConfig{StoreURL: "https://shop.test/", ConsumerKey: "ck", ConsumerSecret: "cs", BatchSize: 500, RateLimit: 5}
	require.NoError(t, c.Validate())

	assert.Equal(t, DefaultBatchSize, c.BatchSize)
	assert.Equal(t, 1, c.RateBurst)
	assert.Equal(t, "https://shop.test/wp-json/wc/v3/products/batch", c.endpoint("/products/batch"))
}

// ---------------------------------------------------------------------------
// Client Tests
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, handler http.HandlerFunc) *WooCommerceClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewWooCommerceClient(NewWooCommerceConfig(server.URL, "ck_test", "cs_test"), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return client
}

func TestWooCommerceClient_Get_SendsBasicAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ck_test", user)
		assert.Equal(t, "cs_test", pass)
		assert.Equal(t, "/wp-json/wc/v3/customers/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":7,"email":"a@b.test"}`))
	})

	var out wooCustomer
	require.NoError(t, client.Get(context.Background(), "customers/7", nil, &out))
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "a@b.test", out.Email)
}

func TestWooCommerceClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: integration.ErrPlatformRateLimited},
		{name: "server error", status: http.StatusBadGateway, wantErr: integration.ErrPlatformUnavailable},
		{name: "client error", status: http.StatusNotFound, wantErr: integration.ErrPlatformRequestFailed},
		{name: "auth error", status: http.StatusUnauthorized, wantErr: integration.ErrPlatformRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"code":"woocommerce_rest_error","message":"nope"}`))
			})

			var out map[string]any
			err := client.Get(context.Background(), "orders", nil, &out)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestWooCommerceClient_Get_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	var out map[string]any
	err := client.Get(context.Background(), "orders", nil, &out)
	assert.ErrorIs(t, err, integration.ErrPlatformInvalidResponse)
}

func TestWooCommerceClient_Get_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewWooCommerceClient(NewWooCommerceConfig(url, "ck", "cs"))
	require.NoError(t, err)

	var out map[string]any
	err = client.Get(context.Background(), "orders", nil, &out)
	assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
}

func TestWooCommerceClient_GetAll_PagesUntilEmpty(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
		case 2:
			_, _ = w.Write([]byte(`[{"id":3}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})

	items, err := client.GetAll(context.Background(), "orders", nil)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestWooCommerceClient_GetAll_ReturnsPartialOnFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(`[{"id":1}]`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	items, err := client.GetAll(context.Background(), "orders", nil)
	assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
	assert.Len(t, items, 1)
}

func TestWooCommerceClient_PostBatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Create []map[string]any `json:"create"`
			Update []map[string]any `json:"update"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Create, 2)
		assert.Empty(t, req.Update)

		_, _ = w.Write([]byte(`{"create":[{"id":10},{"id":0,"error":{"code":"term_exists","message":"exists","data":{"status":400,"resource_id":44}}}]}`))
	})

	resp, err := client.PostBatch(context.Background(), "products/categories/batch", BatchRequest{
		Create: []any{wooCategoryPayload{Name: "A"}, wooCategoryPayload{Name: "B"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Create, 2)
	assert.Equal(t, int64(10), resp.Create[0].ID)
	require.NotNil(t, resp.Create[1].Error)
	assert.Equal(t, int64(44), resp.Create[1].Error.Data.ResourceID)
}

func TestWooCommerceClient_PostBatch_TooLarge(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	})

	req := BatchRequest{}
	for i := 0; i <= MaxBatchItems; i++ {
		req.Create = append(req.Create, wooCategoryPayload{Name: fmt.Sprintf("c%d", i)})
	}
	_, err := client.PostBatch(context.Background(), "products/categories/batch", req)
	assert.ErrorIs(t, err, integration.ErrBatchTooLarge)
}

func TestWooCommerceClient_PostBatch_CountMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"create":[]}`))
	})

	_, err := client.PostBatch(context.Background(), "products/batch", BatchRequest{Create: []any{wooProductPayload{}}})
	assert.ErrorIs(t, err, integration.ErrPlatformInvalidResponse)
}
