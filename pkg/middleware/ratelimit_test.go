package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func limitedHandler(rps float64, burst int) http.Handler {
	var buf bytes.Buffer
	return RateLimit(rps, burst, ClientKey, newTestLogger(&buf))(okHandler)
}

func hit(h http.Handler, clientID, remote string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/basket/items", nil)
	if clientID != "" {
		req.Header.Set(HeaderClientID, clientID)
	}
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimit_WithinBurst(t *testing.T) {
	h := limitedHandler(1, 5)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "c1", "10.0.0.1:1"))
	}
}

func TestRateLimit_ExceedingBurstReturns429(t *testing.T) {
	var buf bytes.Buffer
	h := RateLimit(0.001, 2, ClientKey, newTestLogger(&buf))(okHandler)

	assert.Equal(t, http.StatusOK, hit(h, "c1", "10.0.0.1:1"))
	assert.Equal(t, http.StatusOK, hit(h, "c1", "10.0.0.1:1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/basket/items", nil)
	req.Header.Set(HeaderClientID, "c1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimit_ClientsAreIndependent(t *testing.T) {
	h := limitedHandler(0.001, 1)
	assert.Equal(t, http.StatusOK, hit(h, "c1", "10.0.0.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "c1", "10.0.0.1:1"))
	assert.Equal(t, http.StatusOK, hit(h, "c2", "10.0.0.1:1"))
}

func TestRateLimit_FallsBackToIP(t *testing.T) {
	h := limitedHandler(0.001, 1)
	assert.Equal(t, http.StatusOK, hit(h, "", "10.0.0.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "", "10.0.0.1:2"))
	assert.Equal(t, http.StatusOK, hit(h, "", "10.0.0.2:1"))
}

func TestLimiterStore_SweepEvictsIdle(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newLimiterStore(1, 1, time.Minute)
	s.now = func() time.Time { return now }

	s.get("a")
	now = now.Add(30 * time.Second)
	s.get("b")
	now = now.Add(45 * time.Second)
	s.sweep()

	assert.Equal(t, 1, s.size())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded chain", "203.0.113.5, 10.0.0.1", "", "10.0.0.9:80", "203.0.113.5"},
		{"real ip", "", "198.51.100.7", "10.0.0.9:80", "198.51.100.7"},
		{"remote addr", "", "", "192.0.2.1:4242", "192.0.2.1"},
		{"garbage forwarded", "nope", "", "192.0.2.1:4242", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
