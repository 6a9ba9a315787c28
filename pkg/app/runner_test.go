package app

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flemzord/sloop/internal/agent"
	"github.com/flemzord/sloop/internal/config"
	"github.com/flemzord/sloop/internal/provider/providertest"
	"github.com/flemzord/sloop/internal/runlog"
	"github.com/flemzord/sloop/internal/telemetry"
	"github.com/flemzord/sloop/internal/tool/builtin"
	"github.com/flemzord/sloop/internal/tool/tooltest"
)

func newTestRunner(t *testing.T, p *providertest.Scripted, store runlog.Store) *Runner {
	t.Helper()
	metrics, err := telemetry.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return NewRunner(RunnerConfig{
		Loop:     config.LoopConfig{Kind: "react", MaxIterations: 5, SystemPrompt: "You solve arithmetic."},
		Model:    config.ModelConfig{Name: "test-model", MaxTokens: 512, Stop: []string{"</answer>"}},
		Provider: p,
		Tools:    tooltest.Registry(builtin.NewCalculator()),
		Store:    store,
		Metrics:  metrics,
	})
}

func TestRunner_RunReAct(t *testing.T) {
	t.Parallel()

	p := providertest.NewScripted(
		providertest.ToolUse("call_1", "calculator", `{"operation":"add","a":5,"b":3}`),
		providertest.Text("Result: 8"),
	)
	store := runlog.NewMemoryStore()

	rec, err := newTestRunner(t, p, store).Run(context.Background(), RunRequest{Task: "What is 5 + 3?"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.Loop != "react" || rec.Status != agent.StatusCompleted || rec.Answer != "Result: 8" {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.ToolCalls) != 1 || rec.Iterations != 2 {
		t.Errorf("tool calls = %d, iterations = %d", len(rec.ToolCalls), rec.Iterations)
	}

	saved, err := store.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if saved.Answer != "Result: 8" {
		t.Errorf("saved answer = %q", saved.Answer)
	}

	req := p.Requests()[0]
	if req.System != "You solve arithmetic." || req.Model != "test-model" || req.MaxTokens != 512 {
		t.Errorf("request = %+v", req)
	}
	if len(req.Stop) != 1 || req.Stop[0] != "</answer>" {
		t.Errorf("stop = %v", req.Stop)
	}
}

func TestRunner_LoopFailureIsRecorded(t *testing.T) {
	t.Parallel()

	p := providertest.NewScripted(providertest.Text("")) // empty first draft
	rec, err := newTestRunner(t, p, runlog.NewMemoryStore()).
		Run(context.Background(), RunRequest{Kind: "reflection", Task: "Write a haiku"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.Status != agent.StatusFailed || rec.Error != "Failed to generate initial output" {
		t.Errorf("record = %q/%q", rec.Status, rec.Error)
	}
}

func TestRunner_InvalidRequests(t *testing.T) {
	t.Parallel()

	r := newTestRunner(t, providertest.NewScripted(), nil)

	if _, err := r.Run(context.Background(), RunRequest{Task: "  "}); !errors.Is(err, ErrEmptyTask) {
		t.Errorf("empty task err = %v", err)
	}
	if _, err := r.Run(context.Background(), RunRequest{Kind: "tree_of_thought", Task: "x"}); !errors.Is(err, ErrUnknownLoop) {
		t.Errorf("unknown loop err = %v", err)
	}
}

type failingStore struct{ runlog.MemoryStore }

func (*failingStore) Save(context.Context, runlog.Record) error { return errors.New("disk full") }

func TestRunner_StoreFailure(t *testing.T) {
	t.Parallel()

	r := newTestRunner(t, providertest.NewScripted(providertest.Text("ok")), &failingStore{})
	rec, err := r.Run(context.Background(), RunRequest{Task: "hi"})
	if err == nil {
		t.Fatal("expected store error")
	}
	if rec.Status != agent.StatusCompleted {
		t.Errorf("record should still be returned, got %+v", rec)
	}
}

func TestRunner_LoopKinds(t *testing.T) {
	t.Parallel()

	r := NewRunner(RunnerConfig{})
	for _, kind := range []string{agent.NameReAct, agent.NameReflection, agent.NamePlanExecute} {
		loop, err := r.Loop(kind)
		if err != nil {
			t.Fatalf("Loop(%q): %v", kind, err)
		}
		if loop.Name() != kind {
			t.Errorf("Loop(%q).Name() = %q", kind, loop.Name())
		}
	}
}
