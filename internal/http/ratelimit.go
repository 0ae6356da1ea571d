package http

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Reads recompute cheap snapshots and are never throttled. Writes hit
// SQLite and the queue, so each client IP gets a fixed budget per window.
const (
	writesPerWindow = 30
	writeWindow     = time.Minute

	sweepInterval = time.Minute
	idleEviction  = 5 * time.Minute
)

// writeLimiter throttles mutating requests per client IP with a fixed
// window counter.
type writeLimiter struct {
	mu      sync.Mutex
	windows map[string]*clientWindow
	done    chan struct{}
	once    sync.Once
}

type clientWindow struct {
	start time.Time
	count int
}

func newWriteLimiter() *writeLimiter {
	wl := &writeLimiter{
		windows: make(map[string]*clientWindow),
		done:    make(chan struct{}),
	}
	go wl.sweep()
	return wl
}

// sweep periodically evicts windows of clients that stopped writing.
func (wl *writeLimiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			wl.evictIdle()
		case <-wl.done:
			return
		}
	}
}

func (wl *writeLimiter) evictIdle() {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	cutoff := time.Now().Add(-idleEviction)
	for ip, w := range wl.windows {
		if w.start.Before(cutoff) {
			delete(wl.windows, ip)
		}
	}
}

// stop shuts down the eviction goroutine.
func (wl *writeLimiter) stop() {
	wl.once.Do(func() {
		close(wl.done)
	})
}

// allow reports whether the request may proceed. Non-mutating methods
// always pass; a POST consumes one slot of the client's current window.
func (wl *writeLimiter) allow(method, clientIP string, metrics *securityMetrics) bool {
	if method != http.MethodPost {
		return true
	}

	wl.mu.Lock()
	defer wl.mu.Unlock()

	now := time.Now()
	w, ok := wl.windows[clientIP]
	if !ok || now.Sub(w.start) >= writeWindow {
		wl.windows[clientIP] = &clientWindow{start: now, count: 1}
		return true
	}

	w.count++
	if w.count > writesPerWindow {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}
