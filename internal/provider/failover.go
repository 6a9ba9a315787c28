package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Entry configures a single provider in a Failover chain.
type Entry struct {
	Name     string
	Provider Provider
	Health   HealthConfig
}

type failoverEntry struct {
	Entry
	health *healthTracker
}

// Status is a point-in-time health report for one chain entry.
type Status struct {
	Name      string        `json:"name"`
	Model     string        `json:"model"`
	State     string        `json:"state"`
	Available bool          `json:"available"`
	Failures  int           `json:"failures"`
	Backoff   time.Duration `json:"backoff_ns"`
}

// FailoverOption configures optional Failover behavior.
type FailoverOption func(*Failover)

// WithLogger injects a structured logger into the chain.
// When nil or omitted, log output is discarded.
func WithLogger(l *slog.Logger) FailoverOption {
	return func(f *Failover) { f.logger = l }
}

// Failover is a Provider that tries its entries in order. Retryable errors
// (rate limit, provider down) put the failing entry into cooldown and move on
// to the next one; any other error is returned immediately.
type Failover struct {
	entries []failoverEntry
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Interface guard.
var _ Provider = (*Failover)(nil)

// NewFailover creates a chain from the given entries.
func NewFailover(entries []Entry, opts ...FailoverOption) (*Failover, error) {
	if len(entries) == 0 {
		return nil, ErrNoProvider
	}

	f := &Failover{entries: make([]failoverEntry, len(entries))}
	for i, e := range entries {
		if e.Provider == nil {
			return nil, fmt.Errorf("%w: entry %q has nil provider", ErrNoProvider, e.Name)
		}
		f.entries[i] = failoverEntry{Entry: e, health: newHealthTracker(e.Health)}
	}

	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	for i := range f.entries {
		e := &f.entries[i]
		e.health.onChange = func(from, to HealthState) {
			switch to {
			case HealthCooldown:
				f.logger.Warn("provider entered cooldown", "provider", e.Name, "from", from.String())
			case HealthDead:
				f.logger.Error("provider marked dead", "provider", e.Name)
			case HealthHealthy:
				f.logger.Info("provider revived", "provider", e.Name, "from", from.String())
			}
		}
	}

	return f, nil
}

// ModelName returns the model of the first entry.
func (f *Failover) ModelName() string {
	return f.entries[0].Provider.ModelName()
}

// Complete sends the request to the first available entry, failing over on
// retryable errors.
func (f *Failover) Complete(ctx context.Context, req Request) (Response, error) {
	var lastErr error
	for i := range f.entries {
		e := &f.entries[i]
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		if !e.health.available() {
			continue
		}

		resp, err := e.Provider.Complete(ctx, req)
		if err == nil {
			e.health.success()
			return resp, nil
		}
		if !IsRetryable(err) {
			return Response{}, err
		}

		lastErr = err
		e.health.failure()
		f.logger.Warn("provider failed, failing over",
			"provider", e.Name,
			"rate_limited", IsRateLimit(err),
			"error", err,
		)
	}

	if lastErr != nil {
		return Response{}, fmt.Errorf("%w: last error: %w", ErrAllProviders, lastErr)
	}
	return Response{}, fmt.Errorf("%w: all candidates unavailable", ErrAllProviders)
}

// HealthReport returns the health of every entry, in chain order.
func (f *Failover) HealthReport() []Status {
	report := make([]Status, len(f.entries))
	for i := range f.entries {
		e := &f.entries[i]
		state, failures, backoff := e.health.snapshot()
		report[i] = Status{
			Name:      e.Name,
			Model:     e.Provider.ModelName(),
			State:     state.String(),
			Available: e.health.available(),
			Failures:  failures,
			Backoff:   backoff,
		}
	}
	return report
}

// Start launches background health probes for entries implementing HealthChecker.
func (f *Failover) Start(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		return
	}

	ctx, f.cancel = context.WithCancel(ctx)

	interval := f.entries[0].health.cfg.CheckInterval
	for i := 1; i < len(f.entries); i++ {
		interval = min(interval, f.entries[i].health.cfg.CheckInterval)
	}
	go f.probe(ctx, interval)
}

// Stop cancels background health probes.
func (f *Failover) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func (f *Failover) probe(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.probeOnce(ctx)
		}
	}
}

func (f *Failover) probeOnce(ctx context.Context) {
	for i := range f.entries {
		e := &f.entries[i]
		if !e.health.needsProbe() {
			continue
		}
		checker, ok := e.Provider.(HealthChecker)
		if !ok {
			continue
		}
		if err := checker.HealthCheck(ctx); err == nil {
			e.health.success()
		}
	}
}
