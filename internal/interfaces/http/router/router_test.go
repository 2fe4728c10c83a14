package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-novel-api/internal/application/generation"
	"ai-novel-api/internal/config"
	"ai-novel-api/internal/domain/entity"
	"ai-novel-api/internal/interfaces/http/dto"
	"ai-novel-api/internal/interfaces/http/handler"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Service = "ai-generation"
	cfg.App.Version = "1.0.0"
	cfg.Observability.Metrics.Enabled = true

	// 无凭据时走兜底生成
	svc := generation.NewService(generation.ServiceConfig{}, generation.NewInvoker(nil, nil), nil, nil, nil)

	return New(cfg, Handlers{
		Health:     handler.NewHealthHandler(cfg.App.Service, cfg.App.Version, nil),
		Generation: handler.NewGenerationHandler(svc),
		Task:       handler.NewTaskHandler(nil),
	}, nil).Engine()
}

func TestGenerateFallbackEndToEnd(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/generate", "/api/ai/generate"} {
		t.Run(path, func(t *testing.T) {
			body := `{"type":"chapter","settings":{"target_words":120,"style":"悬疑"},"context":{"projectId":"p1"}}`
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

			var resp dto.GenerateResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.NotEmpty(t, resp.Content)
			require.NotNil(t, resp.Metadata)
			assert.Equal(t, entity.SourceFallback, resp.Metadata.Source)
			assert.LessOrEqual(t, resp.Metadata.WordCount, 120)
		})
	}
}

func TestGenerateRoutes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/generate", http.StatusOK},
		{http.MethodOptions, "/generate", http.StatusNoContent},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/live", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/v1/projects/p1/tasks", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestGeneratePreflightFromBrowser(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/generate", "/api/ai/generate"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, path, nil)
			req.Header.Set("Origin", "https://novel.example")
			req.Header.Set("Access-Control-Request-Method", "POST")
			req.Header.Set("Access-Control-Request-Headers", "Content-Type")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestGenerateHealthBody(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/generate", nil))

	var body dto.HealthBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "ai-generation", body.Service)
	assert.Equal(t, "1.0.0", body.Version)
}
