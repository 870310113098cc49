package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"moneypaz/internal/cache"
	"moneypaz/internal/log"
	"moneypaz/internal/middleware/ratelimit"
	"moneypaz/internal/middleware/security"
	"moneypaz/internal/middleware/trace"
)

const readinessTimeout = 2 * time.Second

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
	Revision  uint64 `json:"revision"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.startedAt).Truncate(time.Second).String(),
		Revision:  s.store.Revision(),
	})
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleReady runs every readiness check and answers 503 if any fails.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := readyResponse{Status: "ready", Checks: map[string]string{}}
	status := http.StatusOK
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		err := s.checks[name](ctx)
		cancel()
		if err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				"check", name, log.FieldError, err)
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	writeJSON(w, r, status, resp)
}

type metricsResponse struct {
	Requests  trace.Metrics             `json:"requests"`
	RateLimit ratelimit.Metrics         `json:"rateLimit"`
	Security  security.DetectionMetrics `json:"security"`
	Cache     cacheMetrics              `json:"summaryCache"`
}

type cacheMetrics struct {
	Enabled bool  `json:"enabled"`
	Size    int   `json:"size"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, metricsResponse{
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
		Cache:     summaryCacheMetrics(s.summaryCache),
	})
}

func summaryCacheMetrics[T any](c *cache.LRUCache[T]) cacheMetrics {
	if c == nil {
		return cacheMetrics{}
	}
	hits, misses := c.Stats()
	return cacheMetrics{Enabled: true, Size: c.Size(), Hits: hits, Misses: misses}
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}
