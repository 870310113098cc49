// Package http serves the finance store as a JSON API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"moneypaz/internal/cache"
	"moneypaz/internal/core"
	"moneypaz/internal/log"
	"moneypaz/internal/middleware/ratelimit"
	"moneypaz/internal/middleware/security"
	"moneypaz/internal/middleware/trace"
	"moneypaz/internal/services"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	http.Server
	store  *services.FinanceStore
	logger *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	metrics  *httpMetrics

	// Summaries keyed by revision and local day
	summaryCache *cache.LRUCache[core.Summary]
	cacheManager *cache.Manager

	checks    map[string]ReadinessCheck
	startedAt time.Time

	shutdownOnce sync.Once
}

type serverOptions struct {
	logger         *log.Logger
	rateLimit      int
	summaryTTL     time.Duration
	checks         map[string]ReadinessCheck
	trustedProxies []string
}

// Option configures a Server.
type Option func(*serverOptions)

func WithLogger(l *log.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRateLimit caps mutating requests per client and minute.
func WithRateLimit(perMinute int) Option {
	return func(o *serverOptions) { o.rateLimit = perMinute }
}

// WithSummaryCacheTTL sets how long a computed summary is reused. Zero
// disables the cache.
func WithSummaryCacheTTL(d time.Duration) Option {
	return func(o *serverOptions) { o.summaryTTL = d }
}

// WithReadinessCheck adds a dependency to /readyz.
func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(o *serverOptions) {
		if check != nil {
			o.checks[name] = check
		}
	}
}

// WithTrustedProxy trusts forwarding headers from an extra network.
func WithTrustedProxy(cidr string) Option {
	return func(o *serverOptions) { o.trustedProxies = append(o.trustedProxies, cidr) }
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, store *services.FinanceStore, opts ...Option) *Server {
	o := serverOptions{
		rateLimit:  ratelimit.DefaultConfig().RequestsPerMinute,
		summaryTTL: 5 * time.Minute,
		checks:     map[string]ReadinessCheck{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		store:     store,
		logger:    o.logger.WithComponent(log.ComponentHTTP),
		detector:  security.NewDetector(o.logger),
		checks:    o.checks,
		startedAt: time.Now(),
	}
	for _, cidr := range o.trustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: o.rateLimit, Logger: o.logger})
	s.tracer = trace.NewMiddleware(o.logger, s.detector.ExtractClientIP)

	s.cacheManager = cache.NewManager(o.logger)
	if o.summaryTTL > 0 {
		s.summaryCache = cache.NewLRUCache[core.Summary](16, o.summaryTTL)
		s.cacheManager.Register(s.summaryCache)
		s.cacheManager.StartCleanup(10 * time.Minute)
	}

	s.metrics = newHTTPMetrics(store)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.metrics.Middleware(handler)
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.MutationsOnly, s.handleRateLimited)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("PUT /api/balance", s.handleSetBalance)
	mux.HandleFunc("PUT /api/user", s.handleSetUser)
	mux.HandleFunc("POST /api/reset", s.handleReset)

	mux.HandleFunc("POST /api/movements", s.handleCreateMovement)
	mux.HandleFunc("GET /api/movements", s.handleListMovements)
	mux.HandleFunc("DELETE /api/movements/{id}", s.handleDeleteMovement)

	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("GET /api/categories/quick", s.handleQuickCategories)
	mux.HandleFunc("GET /api/concepts", s.handleConcepts)
	mux.HandleFunc("GET /api/recurring/compare", s.handleCompareRecurring)
	mux.HandleFunc("GET /api/relative-date", s.handleRelativeDate)

	mux.HandleFunc("GET /export.json", s.handleExportJSON)
	mux.HandleFunc("GET /export.csv", s.handleExportCSV)
}

// summary returns the cached summary for the current revision and local day.
func (s *Server) summary(ctx context.Context) core.Summary {
	if s.summaryCache == nil {
		return s.store.Summary()
	}
	key := summaryKey(s.store.Revision(), s.store.LocalDate())
	if sum, ok := s.summaryCache.Get(key); ok {
		return sum
	}
	sum := s.store.Summary()
	// Key by the revision the summary was built from; a mutation may have
	// landed since the lookup.
	s.summaryCache.Set(summaryKey(sum.Revision, s.store.LocalDate()), sum)
	log.FromContext(ctx).DebugContext(ctx, "Summary computed", log.FieldRevision, sum.Revision)
	return sum
}

func summaryKey(revision uint64, day string) string {
	return fmt.Sprintf("%d|%s", revision, day)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
