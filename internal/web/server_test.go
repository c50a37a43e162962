package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/csvnorm/csvnorm/internal/config"
	"github.com/csvnorm/csvnorm/internal/normalize"
)

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	headers := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'none'",
	}
	for name, want := range headers {
		if got := rec.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	if !rl.allow("10.0.0.1") {
		t.Error("first request should be allowed")
	}
	if !rl.allow("10.0.0.1") {
		t.Error("second request should be allowed")
	}
	if rl.allow("10.0.0.1") {
		t.Error("third request should be rejected")
	}

	// Other IPs have their own buckets
	if !rl.allow("10.0.0.2") {
		t.Error("different IP should be allowed")
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := newRateLimiter(1, 10*time.Millisecond)

	if !rl.allow("10.0.0.1") {
		t.Error("first request should be allowed")
	}
	if rl.allow("10.0.0.1") {
		t.Error("second request should be rejected")
	}

	time.Sleep(15 * time.Millisecond)

	if !rl.allow("10.0.0.1") {
		t.Error("request after window reset should be allowed")
	}
}

func TestRateLimitedResponse(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 5 * time.Second
	cfg.Upload.MaxFileSize = 1 << 20
	cfg.Rate.Enabled = true
	cfg.Rate.RequestsPerMinute = 1
	s := NewServer(cfg, normalize.New(), nil)

	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		return rec
	}

	if rec := get(); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec := get()
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if retry := rec.Header().Get("Retry-After"); retry != "60" {
		t.Errorf("Retry-After = %q, want %q", retry, "60")
	}
}
