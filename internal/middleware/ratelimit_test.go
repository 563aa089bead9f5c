package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/cache"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newLimitedRouter(t *testing.T, clk *clock) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := cache.NewMemoryStore(cache.WithClock(clk.Now), cache.WithSweepInterval(time.Hour))
	t.Cleanup(func() { _ = store.Close() })
	limiter := NewStoreRateStore(store)

	r := gin.New()
	r.GET("/api/ping", RateLimit(limiter, "api", 2, time.Minute), func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/feed.xml", RateLimit(limiter, "feed", 1, time.Minute), func(c *gin.Context) { c.String(http.StatusOK, "<rss/>") })
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := newLimitedRouter(t, clk)

	for i := 0; i < 2; i++ {
		w := get(r, "/api/ping")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := get(r, "/api/ping")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, "60", w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, false, body["ok"])
	require.Equal(t, "rate_limited", body["error"])
	require.EqualValues(t, 60, body["retry_after"])

	clk.now = clk.now.Add(time.Minute)
	require.Equal(t, http.StatusOK, get(r, "/api/ping").Code)
}

func TestRateLimitPlainTextOffAPI(t *testing.T) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := newLimitedRouter(t, clk)

	require.Equal(t, http.StatusOK, get(r, "/feed.xml").Code)
	w := get(r, "/feed.xml")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "Too Many Requests", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	require.Equal(t, http.StatusOK, get(r, "/api/ping").Code, "scopes keep separate budgets")
}

func TestRateLimitDisabledWithoutStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/ping", RateLimit(nil, "api", 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, get(r, "/api/ping").Code)
	}
}
