// Package http exposes the finance tracker over a small JSON API: auth,
// live transaction access, aggregation and report export.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"catatuang/internal/log"
	"catatuang/internal/report"
	"catatuang/internal/session"
	"catatuang/internal/store"
)

type Server struct {
	http.Server

	provider  *session.Provider
	store     *store.LiveStore
	reporter  report.Writer
	exportDir string
	clock     func() time.Time

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

type Option func(*Server)

// WithReportWriter sets the export renderer. Without one, /api/export
// responds 503.
func WithReportWriter(w report.Writer) Option {
	return func(s *Server) { s.reporter = w }
}

// WithExportDir archives a copy of every generated report under dir.
func WithExportDir(dir string) Option {
	return func(s *Server) { s.exportDir = dir }
}

// WithClock overrides the time source used for export windows and
// filenames.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) { s.clock = clock }
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, provider *session.Provider, st *store.LiveStore, opts ...Option) *Server {
	s := &Server{
		provider:    provider,
		store:       st,
		clock:       time.Now,
		rateLimiter: newRateLimiter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// auth endpoints carry the rate limit; login attempts are the abuse
	// vector here
	mux.HandleFunc("POST /api/login", s.withRateLimit(s.handleLogin))
	mux.HandleFunc("POST /api/register", s.withRateLimit(s.handleRegister))
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/session", s.handleSession)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/export", s.handleExport)

	logger := log.New(log.Config{}).WithComponent(log.ComponentHTTP)
	s.Server = http.Server{
		Addr:    addr,
		Handler: withSecurityHeaders(log.Middleware(logger)(log.RequestLogger(mux))),
	}
	return s
}

// Shutdown stops the cleanup goroutine and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Terlalu banyak percobaan login. Coba lagi nanti")
			return
		}
		next(w, r)
	}
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
