package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/pkg/message"
)

// Loop names.
const (
	NameReAct       = "react"
	NameReflection  = "reflection"
	NamePlanExecute = "plan_execute"
)

// ErrIterationBound is returned by a phase that needs a model call after the
// iteration bound has been reached.
var ErrIterationBound = errors.New("agent: iteration bound reached")

// maxIterationsMessage is the failure message of a run that exhausted its
// iteration bound without completing.
const maxIterationsMessage = "Maximum iterations (%d) reached without completion"

// Loop drives a State to a terminal status.
type Loop interface {
	// Name returns the loop identifier.
	Name() string

	// Execute runs the loop on st and returns it in a terminal status.
	// It never panics and never returns an error: every failure is
	// recorded with State.Fail. A state that is already terminal is
	// returned unchanged.
	Execute(ctx context.Context, st *State) *State
}

// Option configures optional loop behavior.
type Option func(*base)

// WithLogger injects a structured logger. When nil or omitted, log output
// is discarded.
func WithLogger(l *slog.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithObserver subscribes an observer to loop events. It may be given
// several times; observers are notified in registration order.
func WithObserver(o Observer) Option {
	return func(b *base) {
		if o != nil {
			b.observers = append(b.observers, o)
		}
	}
}

// base holds what every loop shares: logging, observers and model calls.
type base struct {
	name      string
	logger    *slog.Logger
	observers Observers
	executor  *ToolExecutor
}

func newBase(name string, opts []Option) base {
	b := base{
		name:   name,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&b)
	}
	b.logger = b.logger.With("loop", name)
	b.executor = NewToolExecutor(b.logger, b.observers)
	return b
}

// Name implements Loop.
func (b *base) Name() string { return b.name }

// begin logs the start of a run.
func (b *base) begin(st *State) {
	b.logger.Info("run started",
		"run_id", st.ID,
		"max_iterations", st.MaxIterations(),
		"tools", len(st.ToolDefinitions()),
	)
}

// supervise runs fn as the body of one run. A returned error or a panic
// anywhere in fn fails the run; the caller always gets control back.
func (b *base) supervise(st *State, fn func() error) {
	defer b.finish(st)
	b.begin(st)
	if err := fn(); err != nil {
		b.fail(st, err)
	}
}

// finish recovers a panic into a failure and logs the terminal status.
// It must be deferred.
func (b *base) finish(st *State) {
	if r := recover(); r != nil {
		b.logger.Error("run panicked", "run_id", st.ID, "panic", r)
		st.Fail(fmt.Sprint(r))
	}

	attrs := []any{
		"run_id", st.ID,
		"status", string(st.Status()),
		"iterations", st.Iteration(),
		"tool_calls", len(st.toolCalls),
		"input_tokens", st.Usage().InputTokens,
		"output_tokens", st.Usage().OutputTokens,
	}
	if st.Status() == StatusFailed {
		b.logger.Warn("run failed", append(attrs, "error", st.Error())...)
		return
	}
	b.logger.Info("run finished", attrs...)
}

// fail logs err and records it as the run's failure.
func (b *base) fail(st *State, err error) {
	b.logger.Error("run aborted", "run_id", st.ID, "error", err)
	st.Fail(err.Error())
}

// call makes one model call against msgs. It counts against the iteration
// bound, accumulates usage and notifies OnIteration.
func (b *base) call(ctx context.Context, st *State, msgs []message.Message, withTools bool) (provider.Response, error) {
	if st.HasReachedMaxIterations() {
		return provider.Response{}, ErrIterationBound
	}
	p := st.Provider()
	if p == nil {
		return provider.Response{}, provider.ErrNoProvider
	}

	iteration := st.IncrementIteration()
	resp, err := p.Complete(ctx, st.request(msgs, withTools))
	if err != nil {
		return provider.Response{}, err
	}

	st.AddTokenUsage(resp.Usage.InputTokens, resp.Usage.OutputTokens)
	b.logger.Debug("model call",
		"run_id", st.ID,
		"iteration", iteration,
		"stop_reason", string(resp.StopReason),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	b.observers.OnIteration(ctx, iteration, resp, st)
	return resp, nil
}

// respond sends a single prompt and returns the text answer. When the
// response requests tools, they are dispatched and one follow-up call is
// made with the results; the follow-up's text is the answer. The exchange
// lives in a local message list and does not touch the state history.
func (b *base) respond(ctx context.Context, st *State, prompt string) (string, error) {
	msgs := []message.Message{message.NewUserText(prompt)}

	resp, err := b.call(ctx, st, msgs, true)
	if err != nil {
		return "", err
	}
	content := message.Normalize(resp.Content)
	if !message.HasToolUse(content) {
		return message.TextContent(content), nil
	}

	results := b.executor.Execute(ctx, st, content)
	msgs = append(msgs,
		message.NewAssistant(content...),
		message.NewToolResults(results...),
	)

	follow, err := b.call(ctx, st, msgs, true)
	if err != nil {
		return "", err
	}
	return message.TextContent(follow.Content), nil
}
