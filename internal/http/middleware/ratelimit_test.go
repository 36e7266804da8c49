package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 2)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if got := hit("10.0.0.1"); got != http.StatusNoContent {
			t.Fatalf("request %d: want=%d got=%d", i, http.StatusNoContent, got)
		}
	}
	if got := hit("10.0.0.1"); got != http.StatusTooManyRequests {
		t.Fatalf("over burst: want=%d got=%d", http.StatusTooManyRequests, got)
	}
	if got := hit("10.0.0.2"); got != http.StatusNoContent {
		t.Fatalf("other ip: want=%d got=%d", http.StatusNoContent, got)
	}

	fixed = fixed.Add(time.Second)
	if got := hit("10.0.0.1"); got != http.StatusNoContent {
		t.Fatalf("after refill: want=%d got=%d", http.StatusNoContent, got)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var rl *RateLimiter
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("disabled limiter: got=%d", rec.Code)
		}
	}
}
