package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"rentledger/internal/cache"
	applog "rentledger/internal/log"
	"rentledger/internal/middleware/ratelimit"
	"rentledger/internal/middleware/trace"
	"rentledger/internal/services"
)

// Options tunes the server. Zero values get defaults in NewServer.
type Options struct {
	Logger    *applog.Logger
	CacheSize int
	CacheTTL  time.Duration
	RateLimit ratelimit.Config
	Now       func() time.Time
}

type cachedReport struct {
	contentType string
	body        []byte
}

// Server exposes a LedgerService as a JSON API.
type Server struct {
	http.Server
	svc     *services.LedgerService
	logger  *applog.StructuredLogger
	reports *cache.LRUCache[cachedReport]
	caches  *cache.Manager
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	started time.Time
	now     func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.LedgerService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Component: applog.ComponentHTTP})
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 100
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	mux := http.NewServeMux()
	s := &Server{
		svc:     svc,
		logger:  applog.NewStructuredLogger(opts.Logger),
		reports: cache.NewLRUCache[cachedReport](opts.CacheSize, opts.CacheTTL),
		caches:  cache.NewManager(),
		limiter: ratelimit.NewLimiter(opts.RateLimit),
		tracer:  trace.NewMiddleware(opts.Logger),
		started: opts.Now(),
		now:     opts.Now,
	}
	s.caches.Register(s.reports)
	s.caches.StartCleanup(opts.CacheTTL)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/ledgers/{ledger}/days/{date}", s.handleGetDay)
	mux.HandleFunc("PUT /api/ledgers/{ledger}/days/{date}", s.handleCommitDay)
	mux.HandleFunc("DELETE /api/ledgers/{ledger}/days/{date}/entries/{index}", s.handleRemoveEntry)
	mux.HandleFunc("POST /api/ledgers/{ledger}/shift-month", s.handleShiftMonth)
	mux.HandleFunc("POST /api/fixed-rents", s.handleAddFixedRent)

	mux.HandleFunc("GET /api/bindings/{table}", s.handleGetBindings)
	mux.HandleFunc("PUT /api/bindings/{table}/{code}", s.handleSetBinding)
	mux.HandleFunc("DELETE /api/bindings/{table}/{code}", s.handleDeleteBinding)
	mux.HandleFunc("GET /api/participants", s.handleParticipants)

	mux.HandleFunc("GET /api/settlement", s.handleSettlement)
	mux.HandleFunc("GET /api/summary", s.handleSummary)

	var h http.Handler = mux
	h = withAPIHeaders(h)
	h = s.limiter.Middleware(trace.ClientIP)(h)
	h = applog.Middleware(opts.Logger, trace.RequestID)(h)
	h = s.tracer.Handler(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func withAPIHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops background cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).String(),
	})
}

// handleReady reports ready once a session has been loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	requests, failures := s.tracer.Stats()
	stats := s.reports.Stats()
	body := map[string]any{
		"revision":      s.svc.Revision(),
		"requests":      requests,
		"failures":      failures,
		"cache_entries": stats.Size,
		"cache_hits":    stats.Hits,
	}
	if s.svc.Revision() == 0 {
		body["status"] = "not_ready"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ready"
	writeJSON(w, http.StatusOK, body)
}
