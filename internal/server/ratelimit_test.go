package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoppedLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter(limit, window)
	t.Cleanup(rl.Stop)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiterWindow(t *testing.T) {
	rl, now := newStoppedLimiter(t, 2, time.Minute)

	assert.True(t, rl.Allow("a"))
	*now = now.Add(20 * time.Second)
	assert.True(t, rl.Allow("a"))

	ok, wait := rl.Reserve("a")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, wait, "until the first hit leaves the window")
	assert.True(t, rl.Allow("b"), "keys are independent")

	*now = now.Add(41 * time.Second)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
}

func TestRateLimiterRejectedHitsDoNotCount(t *testing.T) {
	rl, now := newStoppedLimiter(t, 1, time.Minute)

	assert.True(t, rl.Allow("a"))
	for i := 0; i < 5; i++ {
		assert.False(t, rl.Allow("a"))
	}
	*now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiterSweep(t *testing.T) {
	rl, now := newStoppedLimiter(t, 5, time.Minute)

	rl.Allow("a")
	*now = now.Add(30 * time.Second)
	rl.Allow("b")
	*now = now.Add(45 * time.Second)
	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.clients, "a")
	assert.Contains(t, rl.clients, "b")
}

func TestRateLimiterStopIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	rl.Stop()
	rl.Stop()
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, "1", retryAfter(0))
	assert.Equal(t, "1", retryAfter(300*time.Millisecond))
	assert.Equal(t, "40", retryAfter(39*time.Second+time.Millisecond))
	assert.Equal(t, "60", retryAfter(time.Minute))
}

func TestClientKeys(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", clientIP(r))
	assert.Equal(t, "10.1.2.3", forwardedClientIP(r), "no header falls back to the peer")

	r.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	assert.Equal(t, "10.1.2.3", clientIP(r))
	assert.Equal(t, "203.0.113.7", forwardedClientIP(r))

	r.RemoteAddr = "unix"
	r.Header.Del("X-Forwarded-For")
	assert.Equal(t, "unix", clientIP(r))
}

func TestTrustProxyKeysOnForwardedFor(t *testing.T) {
	h := newTestServer(t, Options{RateLimit: 1, TrustProxy: true}).Handler()

	get := func(xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/labels", nil)
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, get("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("198.51.100.1"))
	assert.Equal(t, http.StatusOK, get("198.51.100.2"), "same peer, different client")
}
