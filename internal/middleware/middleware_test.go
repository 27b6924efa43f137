package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	l := NewIPLimiter(LimiterConfig{FillInterval: time.Hour, Capacity: 2, Quantum: 1})
	r := newEngine(RateLimiter(l))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusNoContent, do(r, req).Code)
	assert.Equal(t, http.StatusNoContent, do(r, req).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, req).Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	r := newEngine(RateLimiter(NewIPLimiter(LimiterConfig{})))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, do(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestTraceMiddleware(t *testing.T) {
	r := newEngine(TraceMiddleware(true, ""))
	var fromCtx, fromGin string
	r.GET("/", func(c *gin.Context) {
		fromCtx = GetTraceID(c.Request.Context())
		fromGin = GetTraceIDFromGin(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DefaultTraceIDHeader, "abc")
	w := do(r, req)
	assert.Equal(t, "abc", w.Header().Get(DefaultTraceIDHeader))
	assert.Equal(t, "abc", fromCtx)
	assert.Equal(t, "abc", fromGin)

	w = do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(DefaultTraceIDHeader))
	assert.Equal(t, fromGin, w.Header().Get(DefaultTraceIDHeader))
}

func TestTraceMiddleware_Disabled(t *testing.T) {
	r := newEngine(TraceMiddleware(false, "X-Req"))
	r.GET("/", func(c *gin.Context) {})
	assert.Empty(t, do(r, httptest.NewRequest(http.MethodGet, "/", nil)).Header().Get("X-Req"))
}

func TestRecovery(t *testing.T) {
	r := newEngine(RecoveryWithLogger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { panic("boom") })
	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "boom")
}

func TestNoFound(t *testing.T) {
	r := newEngine()
	r.NoRoute(NoFound())
	w := do(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "/missing")
}

func TestContextTimeout(t *testing.T) {
	r := newEngine(ContextTimeout(time.Minute))
	var hasDeadline bool
	r.GET("/", func(c *gin.Context) { _, hasDeadline = c.Request.Context().Deadline() })

	do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Upgrade", "websocket")
	do(r, req)
	assert.False(t, hasDeadline)
}

func TestAppInfo(t *testing.T) {
	r := newEngine(AppInfo("Watermelon Notes", "1.0.0"))
	r.GET("/", func(c *gin.Context) { assert.Equal(t, "Watermelon Notes", c.GetString("app_name")) })
	assert.Equal(t, "1.0.0", do(r, httptest.NewRequest(http.MethodGet, "/", nil)).Header().Get("X-App-Version"))
}
