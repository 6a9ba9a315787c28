// Package app wires configuration into runnable loops: providers, tools,
// the run store and telemetry. It is the shared entry point of the CLI and
// the HTTP gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flemzord/sloop/internal/agent"
	"github.com/flemzord/sloop/internal/config"
	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/internal/runlog"
	"github.com/flemzord/sloop/internal/telemetry"
	"github.com/flemzord/sloop/internal/tool"
)

// Sentinel errors returned by Runner.Run for invalid requests.
var (
	ErrUnknownLoop = errors.New("app: unknown loop kind")
	ErrEmptyTask   = errors.New("app: task must not be empty")
)

// RunRequest selects a loop kind and the task to solve. An empty Kind uses
// the configured default.
type RunRequest struct {
	Kind string `json:"kind,omitempty"`
	Task string `json:"task"`
}

// RunnerConfig holds the collaborators of a Runner. Store, Metrics and
// Tracing are optional.
type RunnerConfig struct {
	Loop     config.LoopConfig
	Model    config.ModelConfig
	Provider provider.Provider
	Tools    *tool.Registry
	Store    runlog.Store
	Metrics  *telemetry.Metrics
	Tracing  *telemetry.Tracing
	Logger   *slog.Logger
}

// Runner executes one loop run per request and records the outcome.
// It is safe for concurrent use: every run owns a fresh State.
type Runner struct {
	cfg    RunnerConfig
	logger *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Loop.Kind == "" {
		cfg.Loop.Kind = config.DefaultLoopKind
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Loop builds the loop of the given kind with logging, metrics and tracing
// attached.
func (r *Runner) Loop(kind string) (agent.Loop, error) {
	opts := []agent.Option{agent.WithLogger(r.logger)}
	if r.cfg.Metrics != nil {
		opts = append(opts, agent.WithObserver(r.cfg.Metrics.Observer(kind)))
	}
	if r.cfg.Tracing != nil {
		opts = append(opts, agent.WithObserver(telemetry.SpanObserver{}))
	}

	lc := r.cfg.Loop
	var loop agent.Loop
	switch kind {
	case agent.NameReAct:
		loop = agent.NewReAct(agent.ReActConfig{
			TokenBudget:   lc.ReAct.TokenBudget,
			LoopThreshold: lc.ReAct.LoopThreshold,
		}, opts...)
	case agent.NameReflection:
		loop = agent.NewReflection(agent.ReflectionConfig{
			MaxRefinements:   lc.Reflection.MaxRefinements,
			QualityThreshold: lc.Reflection.QualityThreshold,
			Criteria:         lc.Reflection.Criteria,
		}, opts...)
	case agent.NamePlanExecute:
		loop = agent.NewPlanExecute(agent.PlanExecuteConfig{
			DisableReplan: !lc.PlanExecute.ReplanEnabled(),
		}, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLoop, kind)
	}

	if r.cfg.Tracing != nil {
		loop = r.cfg.Tracing.Wrap(loop)
	}
	return loop, nil
}

// Run executes the requested loop to a terminal status and persists the
// record. Loop failures are reported in the record; the error is reserved
// for invalid requests and store failures.
func (r *Runner) Run(ctx context.Context, req RunRequest) (runlog.Record, error) {
	task := strings.TrimSpace(req.Task)
	if task == "" {
		return runlog.Record{}, ErrEmptyTask
	}
	kind := req.Kind
	if kind == "" {
		kind = r.cfg.Loop.Kind
	}
	loop, err := r.Loop(kind)
	if err != nil {
		return runlog.Record{}, err
	}

	st := agent.NewState(agent.StateConfig{
		Task:          task,
		SystemPrompt:  r.cfg.Loop.SystemPrompt,
		MaxIterations: r.cfg.Loop.MaxIterations,
		Provider:      r.cfg.Provider,
		Tools:         r.cfg.Tools,
		Model: agent.ModelConfig{
			Model:       r.cfg.Model.Name,
			MaxTokens:   r.cfg.Model.MaxTokens,
			Temperature: r.cfg.Model.Temperature,
			Stop:        r.cfg.Model.Stop,
		},
	})
	loop.Execute(ctx, st)

	if r.cfg.Metrics != nil {
		r.cfg.Metrics.RecordRun(kind, st)
	}

	rec := runlog.FromState(kind, st)
	if r.cfg.Store != nil {
		if err := r.cfg.Store.Save(ctx, rec); err != nil {
			return rec, fmt.Errorf("app: save run %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}
