// Package health aggregates readiness probes for the console's upstream
// dependencies. The server registers one checker per dependency (the
// AuditAI backend, chiefly) and the /health endpoints report the combined
// result.
package health

import (
	"context"
	"sync"
	"time"
)

// probeTimeout bounds a single checker. Probes are network calls to the
// backend; a hung probe must not stall the readiness endpoint.
const probeTimeout = 5 * time.Second

// Status is one dependency's probe result.
type Status struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// Checker probes one dependency.
type Checker func(ctx context.Context) Status

// Registry holds named checkers and runs them on demand.
type Registry struct {
	mu       sync.RWMutex
	checkers []namedChecker
}

type namedChecker struct {
	name  string
	check Checker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a named checker. Checkers run in registration order so the
// /health payload stays stable across calls.
func (r *Registry) Register(name string, check Checker) {
	r.mu.Lock()
	r.checkers = append(r.checkers, namedChecker{name: name, check: check})
	r.mu.Unlock()
}

// CheckAll runs every checker and reports whether all dependencies are
// healthy, plus the per-dependency results. Each probe gets its own
// bounded context.
func (r *Registry) CheckAll(ctx context.Context) (healthy bool, statuses []Status) {
	r.mu.RLock()
	checkers := make([]namedChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	healthy = true
	statuses = make([]Status, len(checkers))

	for i, nc := range checkers {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		statuses[i] = nc.check(probeCtx)
		cancel()
		if !statuses[i].Healthy {
			healthy = false
		}
	}

	return healthy, statuses
}
