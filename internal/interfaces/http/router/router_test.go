package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/storesync/internal/interfaces/http/handler"
	"github.com/erp/storesync/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test").
		GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") }).
		POST("/echo", func(c *gin.Context) { c.String(http.StatusCreated, "posted") }).
		PUT("/echo", func(c *gin.Context) { c.String(http.StatusOK, "put") })
	r.Register(group).Setup()

	for _, tt := range []struct {
		method string
		path   string
		code   int
		body   string
	}{
		{http.MethodGet, "/api/v1/test/ping", http.StatusOK, "pong"},
		{http.MethodPost, "/api/v1/test/echo", http.StatusCreated, "posted"},
		{http.MethodPut, "/api/v1/test/echo", http.StatusOK, "put"},
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.code, w.Code, tt.method+" "+tt.path)
		assert.Equal(t, tt.body, w.Body.String())
	}

	assert.Equal(t, "test", group.Name())
	assert.Equal(t, "/test", group.Prefix())
}

func TestDomainGroupMiddleware(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("guarded", "/guarded").
		Use(func(c *gin.Context) {
			c.Header("X-Group", "guarded")
			c.Next()
		}).
		GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	NewRouter(engine).Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/guarded/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "guarded", w.Header().Get("X-Group"))
}

func TestSyncGroupRoutes(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).
		Register(NewSyncGroup(handler.NewSyncHandler(nil, nil, nil, nil))).
		Register(NewSystemGroup(handler.NewSystemHandler("storesync", "dev", nil))).
		Setup()

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/sync/products",
		"POST /api/v1/sync/products/reset",
		"POST /api/v1/sync/categories",
		"POST /api/v1/sync/categories/reset",
		"POST /api/v1/sync/orders",
		"GET /api/v1/sync/logs",
		"GET /api/v1/sync/settings",
		"PUT /api/v1/sync/settings",
		"GET /api/v1/sync/taxes",
		"GET /api/v1/sync/vat-rates",
		"PUT /api/v1/sync/vat-rates",
		"GET /api/v1/system/info",
		"GET /api/v1/system/ping",
	} {
		assert.True(t, registered[want], want)
	}
}

func TestNewEngine(t *testing.T) {
	engine := NewEngine(EngineConfig{
		ServiceName:  "storesync",
		CORS:         middleware.DefaultCORSConfig(),
		MaxBodyBytes: 8,
		RateLimiter:  middleware.NewRateLimiter(2, time.Minute),
	})
	engine.POST("/echo", func(c *gin.Context) {
		actor := middleware.GetActorID(c)
		require.Nil(t, actor)
		c.String(http.StatusOK, middleware.GetRequestID(c))
	})

	t.Run("request id is shared by middleware and handlers", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("{}")))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), w.Body.String())
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	})

	t.Run("body limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"too":"long"}`)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("rate limit", func(t *testing.T) {
		// both earlier requests spent the burst of two
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("{}")))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}

func TestNewEngine_Swagger(t *testing.T) {
	t.Run("serves the generated document", func(t *testing.T) {
		engine := NewEngine(EngineConfig{Swagger: true})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var doc struct {
			BasePath string                    `json:"basePath"`
			Paths    map[string]map[string]any `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "/api/v1", doc.BasePath)
		assert.Contains(t, doc.Paths, "/sync/taxes")
		assert.Contains(t, doc.Paths["/sync/vat-rates"], "put")
		assert.Contains(t, doc.Paths["/sync/logs"], "get")
	})

	t.Run("not mounted when disabled", func(t *testing.T) {
		engine := NewEngine(EngineConfig{})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
