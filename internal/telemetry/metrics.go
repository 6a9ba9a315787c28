// Package telemetry exports loop activity as Prometheus metrics and
// OpenTelemetry traces.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flemzord/sloop/internal/agent"
	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/internal/tool"
)

const namespace = "sloop"

// Metrics holds the Prometheus collectors for loop runs.
type Metrics struct {
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	modelCalls  *prometheus.CounterVec
	tokens      *prometheus.CounterVec
	toolCalls   *prometheus.CounterVec
	scores      prometheus.Histogram
	planSteps   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// uses prometheus.DefaultRegisterer. Collectors already registered by a
// previous call are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Loop runs by loop kind and terminal status.",
		}, []string{"loop", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a loop run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"loop"}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Model calls by loop kind and stop reason.",
		}, []string{"loop", "stop_reason"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens consumed by loop kind and direction.",
		}, []string{"loop", "direction"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool executions by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reflection_score",
			Help:      "Critique scores assigned during reflection.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		planSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_steps_total",
			Help:      "Plan steps executed.",
		}),
	}

	var errs []error
	m.runs, errs = register(reg, m.runs, errs)
	m.runDuration, errs = register(reg, m.runDuration, errs)
	m.modelCalls, errs = register(reg, m.modelCalls, errs)
	m.tokens, errs = register(reg, m.tokens, errs)
	m.toolCalls, errs = register(reg, m.toolCalls, errs)
	m.scores, errs = register(reg, m.scores, errs)
	m.planSteps, errs = register(reg, m.planSteps, errs)
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("telemetry: register metrics: %w", err)
	}
	return m, nil
}

// register registers c, or returns the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C, errs []error) (C, []error) {
	err := reg.Register(c)
	if err == nil {
		return c, errs
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, errs
		}
	}
	return c, append(errs, err)
}

// RecordRun records a finished run: its terminal status and wall time.
// Token and model call counts are recorded live by the observer.
func (m *Metrics) RecordRun(loop string, st *agent.State) {
	m.runs.WithLabelValues(loop, string(st.Status())).Inc()
	if end := st.FinishedAt(); !end.IsZero() {
		m.runDuration.WithLabelValues(loop).Observe(end.Sub(st.StartedAt()).Seconds())
	}
}

// Observer returns an agent.Observer that feeds these metrics for runs of
// the given loop kind.
func (m *Metrics) Observer(loop string) agent.Observer {
	return &metricsObserver{m: m, loop: loop}
}

type metricsObserver struct {
	agent.NopObserver
	m    *Metrics
	loop string
}

func (o *metricsObserver) OnIteration(_ context.Context, _ int, resp provider.Response, _ *agent.State) {
	o.m.modelCalls.WithLabelValues(o.loop, string(resp.StopReason)).Inc()
	o.m.tokens.WithLabelValues(o.loop, "input").Add(float64(max(resp.Usage.InputTokens, 0)))
	o.m.tokens.WithLabelValues(o.loop, "output").Add(float64(max(resp.Usage.OutputTokens, 0)))
}

func (o *metricsObserver) OnToolExecution(_ context.Context, name string, _ json.RawMessage, result tool.Result) {
	outcome := "ok"
	if result.IsError {
		outcome = "error"
	}
	o.m.toolCalls.WithLabelValues(name, outcome).Inc()
}

func (o *metricsObserver) OnReflection(_ context.Context, _, score int, _ string) {
	o.m.scores.Observe(float64(score))
}

func (o *metricsObserver) OnStepComplete(context.Context, agent.StepResult) {
	o.m.planSteps.Inc()
}
