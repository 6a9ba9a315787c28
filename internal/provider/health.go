package provider

import (
	"sync"
	"time"
)

// HealthState is the availability state of one provider in a Failover chain.
type HealthState int

// HealthState values.
const (
	HealthHealthy  HealthState = iota
	HealthCooldown             // transient failure, backing off
	HealthDead                 // too many consecutive failures
)

// String returns a human-readable label for the state.
func (s HealthState) String() string {
	switch s {
	case HealthHealthy:
		return "healthy"
	case HealthCooldown:
		return "cooldown"
	case HealthDead:
		return "dead"
	default:
		return "unknown"
	}
}

// HealthConfig controls health tracking behavior.
type HealthConfig struct {
	// InitialBackoff is the cooldown after the first failure. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff. Default: 60s.
	MaxBackoff time.Duration

	// MaxFailures is the number of consecutive failures before the
	// provider is marked dead. Default: 5.
	MaxFailures int

	// CheckInterval is how often dead or cooled-down providers are probed. Default: 10s.
	CheckInterval time.Duration
}

func (c HealthConfig) withDefaults() HealthConfig {
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = time.Minute
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = 5
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 10 * time.Second
	}
	return c
}

// healthTracker records consecutive failures for one provider and derives
// its availability: exponential cooldown, then dead after MaxFailures.
type healthTracker struct {
	cfg HealthConfig

	// onChange is called outside the lock on every state transition.
	onChange func(from, to HealthState)

	mu        sync.Mutex
	state     HealthState
	failures  int
	backoff   time.Duration
	coolUntil time.Time

	now func() time.Time
}

func newHealthTracker(cfg HealthConfig) *healthTracker {
	return &healthTracker{
		cfg:   cfg.withDefaults(),
		state: HealthHealthy,
		now:   time.Now,
	}
}

// available reports whether the provider may receive a request now.
func (h *healthTracker) available() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case HealthHealthy:
		return true
	case HealthCooldown:
		return !h.now().Before(h.coolUntil)
	default:
		return false
	}
}

// needsProbe reports whether an active health check should run.
func (h *healthTracker) needsProbe() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case HealthDead:
		return true
	case HealthCooldown:
		return !h.now().Before(h.coolUntil)
	default:
		return false
	}
}

func (h *healthTracker) success() {
	h.mu.Lock()
	prev := h.state
	h.state = HealthHealthy
	h.failures = 0
	h.backoff = 0
	h.mu.Unlock()

	h.notify(prev, HealthHealthy)
}

func (h *healthTracker) failure() {
	h.mu.Lock()
	prev := h.state
	h.failures++

	next := HealthCooldown
	if h.failures >= h.cfg.MaxFailures {
		next = HealthDead
	} else {
		h.backoff = min(max(h.backoff*2, h.cfg.InitialBackoff), h.cfg.MaxBackoff)
		h.coolUntil = h.now().Add(h.backoff)
	}
	h.state = next
	h.mu.Unlock()

	h.notify(prev, next)
}

func (h *healthTracker) notify(from, to HealthState) {
	if from != to && h.onChange != nil {
		h.onChange(from, to)
	}
}

func (h *healthTracker) snapshot() (HealthState, int, time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state, h.failures, h.backoff
}
