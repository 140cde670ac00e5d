package ratelimit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestAllow_WithinBurst(t *testing.T) {
	l := New(Config{RequestsPerMinute: 60, BurstSize: 5, CleanupInterval: time.Minute})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("Request %d within burst should be allowed", i)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("Request beyond burst should be rejected")
	}
}

func TestAllow_RefillsOverTime(t *testing.T) {
	// 6000 rpm = 100 tokens/sec, so a 50ms wait refills several tokens.
	l := New(Config{RequestsPerMinute: 6000, BurstSize: 2, CleanupInterval: time.Minute})
	defer l.Stop()

	l.Allow("key")
	l.Allow("key")
	if l.Allow("key") {
		t.Fatal("Bucket should be empty")
	}

	time.Sleep(50 * time.Millisecond)
	if !l.Allow("key") {
		t.Error("Bucket should have refilled")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l := New(Config{RequestsPerMinute: 60, BurstSize: 1, CleanupInterval: time.Minute})
	defer l.Stop()

	l.Allow("a")
	if l.Allow("a") {
		t.Fatal("a should be limited")
	}
	if !l.Allow("b") {
		t.Error("b should be unaffected")
	}
}

func TestMiddleware_Returns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := New(Config{RequestsPerMinute: 60, BurstSize: 2, CleanupInterval: time.Minute})
	defer l.Stop()

	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	var last int
	for i := 0; i < 4; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		r.ServeHTTP(w, req)
		last = w.Code
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after burst exhausted, got %d", last)
	}
}

func TestMiddleware_SeparateIPs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := New(Config{RequestsPerMinute: 60, BurstSize: 1, CleanupInterval: time.Minute})
	defer l.Stop()

	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = fmt.Sprintf("10.0.0.%d:1234", i)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Distinct IP %d should be allowed, got %d", i, w.Code)
		}
	}
}
