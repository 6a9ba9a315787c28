package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/flemzord/sloop/internal/agent"
	"github.com/flemzord/sloop/internal/config"
	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/internal/tool"
)

const tracerName = "github.com/flemzord/sloop"

// Span and attribute names.
const (
	SpanRun = "sloop.run"

	AttrRunID        = "sloop.run_id"
	AttrLoop         = "sloop.loop"
	AttrStatus       = "sloop.status"
	AttrIterations   = "sloop.iterations"
	AttrInputTokens  = "sloop.llm.input_tokens"
	AttrOutputTokens = "sloop.llm.output_tokens"
	AttrToolName     = "sloop.tool_name"
)

// Tracing owns the tracer provider. A disabled Tracing hands out a no-op tracer.
type Tracing struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewTracing builds an OTLP/HTTP exporting tracer provider from cfg.
func NewTracing(ctx context.Context, cfg config.TracingConfig, version string) (*Tracing, error) {
	if !cfg.Enabled {
		return &Tracing{tracer: noop.NewTracerProvider().Tracer(tracerName)}, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", version),
	)
	rate := cfg.SampleRate
	if rate <= 0 || rate > 1 {
		rate = 1
	}

	return NewTracingWithProvider(sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	)), nil
}

// NewTracingWithProvider wraps an existing SDK tracer provider.
func NewTracingWithProvider(tp *sdktrace.TracerProvider) *Tracing {
	return &Tracing{provider: tp, tracer: tp.Tracer(tracerName)}
}

// Tracer returns the tracer.
func (t *Tracing) Tracer() trace.Tracer { return t.tracer }

// Shutdown flushes pending spans and stops the exporter.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Wrap returns loop decorated so every Execute runs inside a span.
func (t *Tracing) Wrap(loop agent.Loop) agent.Loop {
	return &TracedLoop{inner: loop, tracer: t.tracer}
}

// TracedLoop runs the inner loop inside a span and annotates it with the
// terminal state.
type TracedLoop struct {
	inner  agent.Loop
	tracer trace.Tracer
}

// Name implements agent.Loop.
func (l *TracedLoop) Name() string { return l.inner.Name() }

// Execute implements agent.Loop. The span describes st as the inner loop
// left it; a panic from the inner loop fails st instead of escaping.
func (l *TracedLoop) Execute(ctx context.Context, st *agent.State) *agent.State {
	ctx, span := l.tracer.Start(ctx, SpanRun, trace.WithAttributes(
		attribute.String(AttrRunID, st.ID),
		attribute.String(AttrLoop, l.inner.Name()),
	))
	defer span.End()

	l.run(ctx, st)

	usage := st.Usage()
	span.SetAttributes(
		attribute.String(AttrStatus, string(st.Status())),
		attribute.Int(AttrIterations, st.Iteration()),
		attribute.Int(AttrInputTokens, usage.InputTokens),
		attribute.Int(AttrOutputTokens, usage.OutputTokens),
	)
	if st.Status() == agent.StatusFailed {
		span.SetStatus(codes.Error, st.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return st
}

func (l *TracedLoop) run(ctx context.Context, st *agent.State) {
	defer func() {
		if r := recover(); r != nil {
			trace.SpanFromContext(ctx).RecordError(fmt.Errorf("panic: %v", r))
			st.Fail(fmt.Sprint(r))
		}
	}()
	l.inner.Execute(ctx, st)
}

// SpanObserver records loop events on the span carried by the context.
type SpanObserver struct{}

// OnIteration implements agent.Observer.
func (SpanObserver) OnIteration(ctx context.Context, iteration int, resp provider.Response, _ *agent.State) {
	trace.SpanFromContext(ctx).AddEvent("model_call", trace.WithAttributes(
		attribute.Int(AttrIterations, iteration),
		attribute.String("sloop.stop_reason", string(resp.StopReason)),
		attribute.Int(AttrInputTokens, resp.Usage.InputTokens),
		attribute.Int(AttrOutputTokens, resp.Usage.OutputTokens),
	))
}

// OnToolExecution implements agent.Observer.
func (SpanObserver) OnToolExecution(ctx context.Context, name string, _ json.RawMessage, result tool.Result) {
	trace.SpanFromContext(ctx).AddEvent("tool_call", trace.WithAttributes(
		attribute.String(AttrToolName, name),
		attribute.Bool("sloop.tool_error", result.IsError),
	))
}

// OnReflection implements agent.Observer.
func (SpanObserver) OnReflection(ctx context.Context, index, score int, _ string) {
	trace.SpanFromContext(ctx).AddEvent("reflection", trace.WithAttributes(
		attribute.Int("sloop.reflection_index", index),
		attribute.Int("sloop.reflection_score", score),
	))
}

// OnStepComplete implements agent.Observer.
func (SpanObserver) OnStepComplete(ctx context.Context, result agent.StepResult) {
	trace.SpanFromContext(ctx).AddEvent("plan_step", trace.WithAttributes(
		attribute.Int("sloop.step", result.Step),
		attribute.String("sloop.step_description", result.Description),
	))
}

// OnPlanCreated implements agent.Observer.
func (SpanObserver) OnPlanCreated(ctx context.Context, steps []string) {
	trace.SpanFromContext(ctx).AddEvent("plan_created", trace.WithAttributes(
		attribute.StringSlice("sloop.plan", steps),
	))
}

// Interface guards.
var (
	_ agent.Loop     = (*TracedLoop)(nil)
	_ agent.Observer = SpanObserver{}
)
