package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaultsentry/vaultsentry/internal/handler"
)

func newLimitedRouter(cfg handler.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handler.RateLimiter(cfg))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestRateLimiter_exhaustedBurstReturns429(t *testing.T) {
	router := newLimitedRouter(handler.RateLimitConfig{
		RPS:           1,
		Burst:         2,
		SweepInterval: time.Hour,
		IdleEviction:  time.Hour,
	})

	status := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if got := status(); got != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200 within the burst", i+1, got)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status after burst = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response must carry a Retry-After header")
	}
}

func TestRateLimiter_clientsHaveSeparateBuckets(t *testing.T) {
	router := newLimitedRouter(handler.RateLimitConfig{
		RPS:           1,
		Burst:         1,
		SweepInterval: time.Hour,
		IdleEviction:  time.Hour,
	})

	send := func(addr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		router.ServeHTTP(w, req)
		return w.Code
	}

	if got := send("203.0.113.7:1234"); got != http.StatusOK {
		t.Fatalf("first client status = %d, want 200", got)
	}
	if got := send("203.0.113.7:1234"); got != http.StatusTooManyRequests {
		t.Fatalf("first client second request = %d, want 429", got)
	}
	if got := send("198.51.100.9:4321"); got != http.StatusOK {
		t.Errorf("second client status = %d, want 200 from its own bucket", got)
	}
}
