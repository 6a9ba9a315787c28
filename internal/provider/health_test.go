package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock is a controllable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(cfg HealthConfig) (*healthTracker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	h := newHealthTracker(cfg)
	h.now = clock.now
	return h, clock
}

func TestHealthConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := HealthConfig{}.withDefaults()
	if cfg.InitialBackoff != time.Second {
		t.Errorf("InitialBackoff = %v, want 1s", cfg.InitialBackoff)
	}
	if cfg.MaxBackoff != time.Minute {
		t.Errorf("MaxBackoff = %v, want 1m", cfg.MaxBackoff)
	}
	if cfg.MaxFailures != 5 {
		t.Errorf("MaxFailures = %d, want 5", cfg.MaxFailures)
	}
	if cfg.CheckInterval != 10*time.Second {
		t.Errorf("CheckInterval = %v, want 10s", cfg.CheckInterval)
	}
}

func TestHealthTracker_BackoffDoublesAndCaps(t *testing.T) {
	t.Parallel()

	h, _ := newTestTracker(HealthConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     3 * time.Second,
		MaxFailures:    10,
	})

	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	for i, w := range want {
		h.failure()
		_, _, backoff := h.snapshot()
		if backoff != w {
			t.Errorf("failure %d: backoff = %v, want %v", i+1, backoff, w)
		}
	}
}

func TestHealthTracker_CooldownExpires(t *testing.T) {
	t.Parallel()

	h, clock := newTestTracker(HealthConfig{InitialBackoff: time.Second})
	h.failure()

	if h.available() {
		t.Fatal("provider should be unavailable during cooldown")
	}
	if h.needsProbe() {
		t.Fatal("probe should wait for cooldown to expire")
	}

	clock.advance(time.Second)
	if !h.available() {
		t.Fatal("provider should be available after cooldown")
	}
	if !h.needsProbe() {
		t.Fatal("expired cooldown should be probed")
	}
}

func TestHealthTracker_DeadAfterMaxFailures(t *testing.T) {
	t.Parallel()

	var transitions []HealthState
	h, clock := newTestTracker(HealthConfig{MaxFailures: 2})
	h.onChange = func(_, to HealthState) { transitions = append(transitions, to) }

	h.failure()
	h.failure()

	state, failures, _ := h.snapshot()
	if state != HealthDead || failures != 2 {
		t.Fatalf("state = %v (%d failures), want dead (2)", state, failures)
	}
	clock.advance(time.Hour)
	if h.available() {
		t.Fatal("dead provider must stay unavailable")
	}

	h.success()
	if !h.available() {
		t.Fatal("success should revive the provider")
	}

	want := []HealthState{HealthCooldown, HealthDead, HealthHealthy}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, transitions[i], want[i])
		}
	}
}

func TestHealthState_String(t *testing.T) {
	t.Parallel()

	tests := map[HealthState]string{
		HealthHealthy:   "healthy",
		HealthCooldown:  "cooldown",
		HealthDead:      "dead",
		HealthState(42): "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}

type probeProvider struct {
	err    error
	probes int
}

func (p *probeProvider) Complete(context.Context, Request) (Response, error) {
	return Response{}, ErrProviderDown
}
func (p *probeProvider) ModelName() string { return "probe" }
func (p *probeProvider) HealthCheck(context.Context) error {
	p.probes++
	return p.err
}

func TestFailover_ProbeRevivesDeadEntry(t *testing.T) {
	t.Parallel()

	p := &probeProvider{}
	f, err := NewFailover([]Entry{{Name: "p", Provider: p, Health: HealthConfig{MaxFailures: 1}}})
	if err != nil {
		t.Fatalf("NewFailover: %v", err)
	}

	if _, err := f.Complete(context.Background(), Request{}); !errors.Is(err, ErrAllProviders) {
		t.Fatalf("err = %v, want ErrAllProviders", err)
	}
	if f.HealthReport()[0].State != "dead" {
		t.Fatalf("entry should be dead after one failure")
	}

	f.probeOnce(context.Background())

	if p.probes != 1 {
		t.Errorf("probes = %d, want 1", p.probes)
	}
	if got := f.HealthReport()[0]; got.State != "healthy" || !got.Available {
		t.Errorf("status after probe = %+v, want healthy", got)
	}
}
