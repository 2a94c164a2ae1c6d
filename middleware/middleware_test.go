package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"weather-api/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLimitedRouter(l *RateLimiter, max int) *gin.Engine {
	r := gin.New()
	r.POST("/things", l.Middleware(max, time.Minute, 5*time.Minute), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func post(r http.Handler, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/things", nil)
	req.Header.Set("X-Forwarded-For", ip)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitLocksAfterMax(t *testing.T) {
	l := NewRateLimiter()
	r := newLimitedRouter(l, 2)

	assert.Equal(t, http.StatusCreated, post(r, "10.0.0.1"))
	assert.Equal(t, http.StatusCreated, post(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, post(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, post(r, "10.0.0.1"))

	// Other clients are unaffected
	assert.Equal(t, http.StatusCreated, post(r, "10.0.0.2"))
}

func TestRateLimitLockExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter()
	l.now = func() time.Time { return now }
	r := newLimitedRouter(l, 1)

	assert.Equal(t, http.StatusCreated, post(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, post(r, "10.0.0.1"))

	now = now.Add(6 * time.Minute)
	assert.Equal(t, http.StatusCreated, post(r, "10.0.0.1"))
}

func TestRateLimitCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter()
	l.now = func() time.Time { return now }
	r := newLimitedRouter(l, 5)

	post(r, "10.0.0.1")
	require.Len(t, l.entries, 1)

	now = now.Add(3 * time.Hour)
	l.cleanup(time.Hour)
	assert.Empty(t, l.entries)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := gin.New()
	r.Use(RequestLogger(logger, metrics.New()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}
