// Package http exposes the bookkeeper over a small JSON API: one endpoint
// for incoming chat messages and one for on-demand summaries. A WhatsApp
// webhook (or any other chat transport) is expected to sit in front.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"livrocaixa/internal/cache"
	"livrocaixa/internal/log"
	"livrocaixa/internal/services"
)

const summaryCacheSize = 100

type Server struct {
	http.Server
	bookkeeper  *services.Bookkeeper
	rateLimiter *rateLimiter

	// Weekly summaries are cached per reference date and purged on every
	// ledger mutation.
	summaryCache *cache.LRUCache[string]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, bookkeeper *services.Bookkeeper, summaryTTL time.Duration) *Server {
	mux := http.NewServeMux()

	logger := log.New(log.Config{
		Component: log.ComponentHTTP,
		Handler:   slog.Default().Handler(),
	})

	// Every request carries a request-scoped logger tagged with a request
	// ID; handlers retrieve it with log.FromContext.
	handler := log.Middleware(logger)(log.RequestIDMiddleware(requestIDFor)(mux))

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: handler,
		},
		bookkeeper:   bookkeeper,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[string](summaryCacheSize, summaryTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/messages", s.withSecurityHeaders(s.handleMessages))
	mux.HandleFunc("/summary", s.withSecurityHeaders(s.handleSummary))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	return s
}

// requestIDFor honors an inbound X-Request-ID so a fronting proxy can
// correlate its own logs, generating a fresh ID otherwise.
func requestIDFor(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return generateRequestID()
}

// InvalidateSummaries drops every cached summary. Wired as the
// bookkeeper's mutation hook.
func (s *Server) InvalidateSummaries() {
	s.summaryCache.Purge()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		structured := log.NewStructuredLogger(log.FromContext(ctx))
		structured.LogHTTPStart(ctx, r, clientIP)

		// Message ingestion is the only mutating surface, so that is
		// where the rate limit applies.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			log.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

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

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
