package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-novel-api/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/generate", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecovery(t *testing.T) {
	w := do(newEngine(Recovery()), http.MethodGet, "/panic", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), InternalErrorMessage)
	assert.NotContains(t, w.Body.String(), "boom")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := do(r, http.MethodGet, "/health", map[string]string{RequestIDHeader: "req-1"})
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	w = do(r, http.MethodGet, "/health", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestAuth(t *testing.T) {
	cfg := AuthConfig{Enabled: true, Secret: "secret", Issuer: "ai-novel", SkipPaths: DefaultSkipPaths}
	r := newEngine(Auth(cfg))

	t.Run("skip path", func(t *testing.T) {
		w := do(r, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		w := do(r, http.MethodPost, "/generate", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad format", func(t *testing.T) {
		w := do(r, http.MethodPost, "/generate", map[string]string{"Authorization": "Token abc"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := utils.NewJWTManager("secret", "ai-novel").GenerateToken("u1", "p1", time.Minute)
		require.NoError(t, err)

		w := do(r, http.MethodPost, "/generate", map[string]string{"Authorization": "Bearer " + token})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"u1"}`, w.Body.String())
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := utils.NewJWTManager("secret", "ai-novel").GenerateToken("u1", "", -time.Minute)
		require.NoError(t, err)

		w := do(r, http.MethodPost, "/generate", map[string]string{"Authorization": "Bearer " + token})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "token expired")
	})

	t.Run("disabled", func(t *testing.T) {
		w := do(newEngine(Auth(AuthConfig{})), http.MethodPost, "/generate", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func TestRateLimit(t *testing.T) {
	cfg := RateLimitConfig{Enabled: true, Requests: 10, Window: time.Minute}

	t.Run("allowed", func(t *testing.T) {
		l := &stubLimiter{allow: true}
		w := do(newEngine(RateLimit(cfg, l)), http.MethodPost, "/generate", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
		require.Len(t, l.keys, 1)
		assert.Equal(t, "ratelimit:ip:192.0.2.1:/generate", l.keys[0])
	})

	t.Run("rejected", func(t *testing.T) {
		w := do(newEngine(RateLimit(cfg, &stubLimiter{})), http.MethodPost, "/generate", nil)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
	})

	t.Run("limiter error fails open", func(t *testing.T) {
		w := do(newEngine(RateLimit(cfg, &stubLimiter{err: errors.New("down")})), http.MethodPost, "/generate", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCORSSkipPathsLeavePreflightToRoute(t *testing.T) {
	r := newEngine(CORS(CORSConfig{
		AllowedOrigins: []string{"https://novel.example"},
		SkipPaths:      []string{"/generate"},
	}))
	r.OPTIONS("/generate", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Status(http.StatusNoContent)
	})
	r.OPTIONS("/health", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	preflight := map[string]string{
		"Origin":                        "https://novel.example",
		"Access-Control-Request-Method": "POST",
	}
	w := do(r, http.MethodOptions, "/generate", preflight)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodOptions, "/health", preflight)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://novel.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowAll(t *testing.T) {
	r := newEngine(CORS(CORSConfig{}))

	w := do(r, http.MethodPost, "/generate", map[string]string{"Origin": "https://novel.example"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
