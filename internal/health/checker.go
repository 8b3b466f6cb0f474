// Package health runs periodic liveness checks against the service's
// external dependencies (score store, message bus) and exposes the
// aggregated status for the health endpoint.
package health

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config holds health check configuration.
type Config struct {
	CheckInterval time.Duration
	ProbeTimeout  time.Duration
	FailThreshold int
}

// Check is one named dependency probe. Ping returns nil when the
// dependency is reachable.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Status is the last observed state of one dependency.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	LastError string    `json:"last_error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// MetricsRecordFunc is an optional callback for recording probe results.
type MetricsRecordFunc func(name string, success bool)

type depState struct {
	failCount int
	status    Status
}

// Checker runs periodic dependency probes. A dependency is reported
// unhealthy only after FailThreshold consecutive failures, so a single
// dropped probe does not flap the health endpoint.
type Checker struct {
	checks    []Check
	cfg       Config
	onMetrics MetricsRecordFunc
	logger    *zap.Logger

	mu     sync.Mutex
	states map[string]*depState
}

// New creates a Checker over the given dependency probes.
func New(cfg Config, logger *zap.Logger, checks ...Check) *Checker {
	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = 30 * time.Second
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	if cfg.FailThreshold == 0 {
		cfg.FailThreshold = 3
	}

	states := make(map[string]*depState, len(checks))
	for _, c := range checks {
		// Dependencies start healthy; the first sweep corrects this.
		states[c.Name] = &depState{status: Status{Name: c.Name, Healthy: true}}
	}
	return &Checker{
		checks: checks,
		cfg:    cfg,
		logger: logger,
		states: states,
	}
}

// SetMetricsRecord configures the metrics recording callback.
func (h *Checker) SetMetricsRecord(fn MetricsRecordFunc) {
	h.onMetrics = fn
}

// Start runs the check loop until quit is signalled.
func (h *Checker) Start(quit <-chan os.Signal) {
	ticker := time.NewTicker(h.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), h.cfg.CheckInterval-time.Second)
			h.CheckAll(ctx)
			cancel()
		case <-quit:
			return
		}
	}
}

// CheckAll probes every dependency once, in parallel.
func (h *Checker) CheckAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, c := range h.checks {
		wg.Add(1)
		go func(check Check) {
			defer wg.Done()

			probeCtx, cancel := context.WithTimeout(ctx, h.cfg.ProbeTimeout)
			err := check.Ping(probeCtx)
			cancel()

			if h.onMetrics != nil {
				h.onMetrics(check.Name, err == nil)
			}
			h.record(check.Name, err)
		}(c)
	}
	wg.Wait()
}

func (h *Checker) record(name string, err error) {
	now := time.Now().UTC()

	h.mu.Lock()
	defer h.mu.Unlock()
	state := h.states[name]

	if err == nil {
		recovered := !state.status.Healthy
		state.failCount = 0
		state.status = Status{Name: name, Healthy: true, CheckedAt: now}
		if recovered {
			h.logger.Info("health: dependency recovered", zap.String("dependency", name))
		}
		return
	}

	state.failCount++
	state.status.CheckedAt = now
	state.status.LastError = err.Error()
	if state.failCount == h.cfg.FailThreshold {
		// Transition: healthy → unhealthy (exactly at threshold)
		state.status.Healthy = false
		h.logger.Warn("health: dependency down",
			zap.String("dependency", name),
			zap.Int("fail_count", state.failCount),
			zap.Error(err),
		)
	}
}

// Snapshot returns the current status of every dependency.
func (h *Checker) Snapshot() []Status {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Status, 0, len(h.checks))
	for _, c := range h.checks {
		out = append(out, h.states[c.Name].status)
	}
	return out
}

// Healthy reports whether every dependency is currently healthy.
func (h *Checker) Healthy() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.states {
		if !s.status.Healthy {
			return false
		}
	}
	return true
}
