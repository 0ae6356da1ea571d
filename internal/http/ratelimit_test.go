package http

import (
	"net/http"
	"sync/atomic"
	"testing"
)

func TestWriteLimiter(t *testing.T) {
	wl := newWriteLimiter()
	defer wl.stop()

	metrics := &securityMetrics{}
	for i := 0; i < writesPerWindow; i++ {
		if !wl.allow(http.MethodPost, "10.0.0.1", metrics) {
			t.Fatalf("write %d denied, want allowed", i+1)
		}
	}
	if wl.allow(http.MethodPost, "10.0.0.1", metrics) {
		t.Error("write over budget allowed, want denied")
	}
	if atomic.LoadInt64(&metrics.rateLimitHits) == 0 {
		t.Error("rateLimitHits = 0 after denial")
	}

	// Reads never consume the budget, even for a throttled client.
	if !wl.allow(http.MethodGet, "10.0.0.1", metrics) {
		t.Error("read denied for throttled client")
	}

	// Each client has its own window.
	if !wl.allow(http.MethodPost, "10.0.0.2", metrics) {
		t.Error("fresh client denied")
	}
}

func TestWriteLimiterEviction(t *testing.T) {
	wl := newWriteLimiter()
	defer wl.stop()

	wl.allow(http.MethodPost, "10.0.0.1", nil)
	wl.mu.Lock()
	wl.windows["10.0.0.1"].start = wl.windows["10.0.0.1"].start.Add(-2 * idleEviction)
	wl.mu.Unlock()

	wl.evictIdle()

	wl.mu.Lock()
	_, ok := wl.windows["10.0.0.1"]
	wl.mu.Unlock()
	if ok {
		t.Error("idle window survived eviction")
	}
}
