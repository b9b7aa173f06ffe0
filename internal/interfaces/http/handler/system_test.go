package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func serveSystem(h *SystemHandler, handle func(*SystemHandler, *gin.Context), path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, path, nil)
	handle(h, c)
	return w
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("storesync", "1.2.0", nil)
	w := serveSystem(h, (*SystemHandler).GetSystemInfo, "/system/info")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp APIResponse[SystemInfoResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "storesync", resp.Data.Name)
	assert.Equal(t, "1.2.0", resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
	assert.NotEmpty(t, resp.Data.Uptime)
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("storesync", "dev", nil)
	w := serveSystem(h, (*SystemHandler).Ping, "/system/ping")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp APIResponse[PingResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pong", resp.Data.Message)
	_, err := time.Parse(time.RFC3339, resp.Data.Timestamp)
	assert.NoError(t, err)
}

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		wantCode int
		wantDB   string
	}{
		{"no database", nil, http.StatusOK, "skipped"},
		{"database up", stubPinger{}, http.StatusOK, "ok"},
		{"database down", stubPinger{err: errors.New("dial tcp: refused")}, http.StatusServiceUnavailable, "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveSystem(NewSystemHandler("storesync", "dev", tt.db), (*SystemHandler).Health, "/health")

			assert.Equal(t, tt.wantCode, w.Code)
			var resp APIResponse[HealthResponse]
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantDB, resp.Data.Database)
			assert.Equal(t, tt.wantCode == http.StatusOK, resp.Success)
		})
	}
}
