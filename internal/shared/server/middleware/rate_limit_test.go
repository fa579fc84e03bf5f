package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"career-backend/internal/ratelimit"
)

func TestRateLimitGenerationStricterThanDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := ratelimit.NewMemoryStore(clock)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "guest:test-guest")
		c.Next()
	})
	limit := RateLimit(RateLimitConfig{
		Now: clock,
		GroupFor: func(c *gin.Context) string {
			if c.FullPath() == "/api/v1/workspace/generate" {
				return "GENERATION"
			}
			return ""
		},
		Limiters: map[string]*ratelimit.Limiter{
			"DEFAULT":    ratelimit.New("default", 10, time.Minute, store, clock),
			"GENERATION": ratelimit.New("generation", 2, time.Minute, store, clock),
		},
	})

	r.GET("/api/v1/workspace", limit, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/api/v1/workspace/generate", limit, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/workspace", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("default request %d expected 200, got %d", i+1, resp.Code)
		}
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/workspace/generate", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("generation request %d expected 200, got %d", i+1, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workspace/generate", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("generation request 3 expected 429, got %d", resp.Code)
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "guest:test-guest")
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		Now: clock,
		Limiters: map[string]*ratelimit.Limiter{
			"DEFAULT": ratelimit.New("default", 1, 30*time.Second, nil, clock),
		},
	}))
	r.GET("/api/v1/limited", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/v1/limited", nil)
	resp1 := httptest.NewRecorder()
	r.ServeHTTP(resp1, req1)
	if resp1.Code != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", resp1.Code)
	}
	if resp1.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected remaining 0, got %q", resp1.Header().Get("X-RateLimit-Remaining"))
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/limited", nil)
	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp2.Code)
	}
	if resp2.Header().Get("Retry-After") != "30" {
		t.Fatalf("expected Retry-After 30, got %q", resp2.Header().Get("Retry-After"))
	}

	var payload map[string]any
	if err := json.NewDecoder(resp2.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["error"] != "rate_limited" {
		t.Fatalf("expected error=rate_limited")
	}
	if payload["retryAfterMs"] != float64(30000) {
		t.Fatalf("expected retryAfterMs 30000, got %v", payload["retryAfterMs"])
	}
}

func TestRateLimitUnknownGroupPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: func(*gin.Context) string { return "ADMIN" },
		Limiters: map[string]*ratelimit.Limiter{
			"DEFAULT": ratelimit.New("default", 1, time.Minute, nil, nil),
		},
	}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("request %d expected 200, got %d", i+1, resp.Code)
		}
	}
}
