package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// Checks is a map of named readiness checks.
type Checks map[string]CheckFunc

type healthResponse struct {
	Checks map[string]healthCheck `json:"checks,omitempty"`
	Status string                 `json:"status"`
}

type healthCheck struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: statusHealthy})
}

// ready answers 503 with per-check results when any readiness check fails.
func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	resp := runChecks(r.Context(), s.checks, s.healthTimeout, s.logger)
	status := http.StatusOK
	if resp.Status == statusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// runChecks runs every check in parallel. All checks run to completion even when one fails.
func runChecks(ctx context.Context, checks Checks, timeout time.Duration, log *slog.Logger) *healthResponse {
	if len(checks) == 0 {
		return &healthResponse{Status: statusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		g       errgroup.Group
		mu      sync.Mutex
		results = make(map[string]healthCheck, len(checks))
	)
	for name, check := range checks {
		g.Go(func() error {
			result := healthCheck{Status: statusHealthy}
			err := check(ctx)
			if err != nil {
				result.Status = statusUnhealthy
				result.Error = err.Error()
				log.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}
			mu.Lock()
			results[name] = result
			mu.Unlock()
			return err
		})
	}

	status := statusHealthy
	if err := g.Wait(); err != nil {
		status = statusUnhealthy
	}
	return &healthResponse{Status: status, Checks: results}
}
