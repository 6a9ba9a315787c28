package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/flemzord/sloop/internal/agent"
	"github.com/flemzord/sloop/internal/provider/providertest"
	"github.com/flemzord/sloop/internal/tool/builtin"
	"github.com/flemzord/sloop/internal/tool/tooltest"
)

func newRun(t *testing.T, p *providertest.Scripted) *agent.State {
	t.Helper()
	return agent.NewState(agent.StateConfig{
		Task:          "What is 5 + 3?",
		MaxIterations: 5,
		Provider:      p,
		Tools:         tooltest.Registry(builtin.NewCalculator()),
	})
}

func TestMetrics_ReActRun(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	p := providertest.NewScripted(
		providertest.ToolUse("call_1", "calculator", `{"operation":"add","a":5,"b":3}`),
		providertest.Text("Result: 8"),
	)
	st := agent.NewReAct(agent.ReActConfig{}, agent.WithObserver(m.Observer("react"))).
		Execute(context.Background(), newRun(t, p))
	m.RecordRun("react", st)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("react", "completed")); got != 1 {
		t.Errorf("runs_total{completed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.modelCalls.WithLabelValues("react", "tool_use")); got != 1 {
		t.Errorf("model_calls_total{tool_use} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.modelCalls.WithLabelValues("react", "end_turn")); got != 1 {
		t.Errorf("model_calls_total{end_turn} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.tokens.WithLabelValues("react", "input")); got != 20 {
		t.Errorf("tokens_total{input} = %v, want 20", got)
	}
	if got := testutil.ToFloat64(m.toolCalls.WithLabelValues("calculator", "ok")); got != 1 {
		t.Errorf("tool_calls_total{calculator,ok} = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.runDuration); n != 1 {
		t.Errorf("run_duration_seconds series = %d, want 1", n)
	}
}

func TestMetrics_ReflectionAndPlanEvents(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	obs := m.Observer("reflection")
	obs.OnReflection(context.Background(), 1, 7, "ok")
	obs.OnStepComplete(context.Background(), agent.StepResult{Step: 1})
	obs.OnStepComplete(context.Background(), agent.StepResult{Step: 2})

	if n := testutil.CollectAndCount(m.scores); n != 1 {
		t.Errorf("reflection_score series = %d, want 1", n)
	}
	if got := testutil.ToFloat64(m.planSteps); got != 2 {
		t.Errorf("plan_steps_total = %v, want 2", got)
	}
}

func TestNewMetrics_ReusesRegistered(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	second, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("second NewMetrics: %v", err)
	}

	first.runs.WithLabelValues("react", "failed").Inc()
	if got := testutil.ToFloat64(second.runs.WithLabelValues("react", "failed")); got != 1 {
		t.Errorf("second Metrics should share collectors, got %v", got)
	}
}

func TestRecordRun_Unfinished(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	st := agent.NewState(agent.StateConfig{Task: "x"})
	m.RecordRun("react", st)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("react", "running")); got != 1 {
		t.Errorf("runs_total{running} = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.runDuration); n != 0 {
		t.Errorf("unfinished run should not observe duration, got %d series", n)
	}
}
