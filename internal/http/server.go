package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "julius/internal/log"
	"julius/internal/services"
	"julius/internal/storage"
)

// Server wires the reconciliation and aggregation services behind a JSON
// API. Every read recomputes from the store; responses are never cached, so
// a paid bill or a new transaction is visible on the next request.
type Server struct {
	http.Server

	storage   *storage.SQLiteRepository
	summaries *services.SummaryService
	bills     *services.BillService
	goals     *services.GoalService
	exports   services.ExportPublisher

	writes       *writeLimiter
	metrics      *securityMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run http.Server. The
// whole mux runs inside the logging middleware, so every handler finds a
// request-scoped logger in its context.
func NewServer(addr string, repo *storage.SQLiteRepository, summaries *services.SummaryService, bills *services.BillService, goals *services.GoalService, exports services.ExportPublisher) *Server {
	mux := http.NewServeMux()
	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	handler := applog.Middleware(logger)(
		applog.RequestIDMiddleware(func(*http.Request) string {
			return generateRequestID()
		})(mux))

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		storage:   repo,
		summaries: summaries,
		bills:     bills,
		goals:     goals,
		exports:   exports,
		writes:    newWriteLimiter(),
		metrics:   &securityMetrics{},
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/summary", s.withSecurityHeaders(s.handleSummary))
	mux.HandleFunc("/api/summary/export", s.withSecurityHeaders(s.handleExportSummary))
	mux.HandleFunc("/api/bills", s.withSecurityHeaders(s.handleBills))
	mux.HandleFunc("/api/bills/pay", s.withSecurityHeaders(s.handlePayBill))
	mux.HandleFunc("/api/transactions", s.withSecurityHeaders(s.handleTransactions))
	mux.HandleFunc("/api/cards", s.withSecurityHeaders(s.handleCards))
	mux.HandleFunc("/api/goals", s.withSecurityHeaders(s.handleGoals))
	mux.HandleFunc("/api/goals/", s.withSecurityHeaders(s.handleGoalAction))

	return s
}

// withSecurityHeaders adds security headers, write throttling, and request
// start/end logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		clientIP := extractClientIP(r)

		logger := requestLogger(ctx)
		structured := applog.NewStructuredLogger(logger)
		structured.LogHTTPStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(ctx, "Suspicious request blocked",
				applog.NewFields().
					WithComponent(applog.ComponentSecurity).
					WithClientIP(clientIP).
					WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), "").
					ToSlice()...)
			errorJSON(w, http.StatusBadRequest, "invalid request")
			return
		}

		if !s.writes.allow(r.Method, clientIP, s.metrics) {
			logger.WarnContext(ctx, "Write rate limit exceeded",
				applog.NewFields().
					WithComponent(applog.ComponentRateLimit).
					WithClientIP(clientIP).
					WithHTTPRequest(r.Method, r.URL.Path, "", "", "").
					ToSlice()...)
			w.Header().Set("Retry-After", "60")
			errorJSON(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.writes != nil {
			s.writes.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
