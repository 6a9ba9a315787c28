package agent

import (
	"context"
	"fmt"

	"github.com/flemzord/sloop/pkg/message"
)

// Failure messages of the ReAct guards.
const (
	tokenBudgetMessage   = "Token budget exceeded"
	repeatedCallsMessage = "Repeated tool call detected: %s"
)

// ReAct implements the Reason + Act loop: call the model, run any requested
// tools, feed the results back and repeat until the model completes or the
// iteration bound is hit.
type ReAct struct {
	base
	cfg ReActConfig
}

// Interface guard.
var _ Loop = (*ReAct)(nil)

// NewReAct creates a ReAct loop.
func NewReAct(cfg ReActConfig, opts ...Option) *ReAct {
	return &ReAct{base: newBase(NameReAct, opts), cfg: cfg}
}

// Execute implements Loop.
func (r *ReAct) Execute(ctx context.Context, st *State) *State {
	if st.IsTerminal() {
		return st
	}
	r.supervise(st, func() error { return r.run(ctx, st) })
	return st
}

func (r *ReAct) run(ctx context.Context, st *State) error {
	guard := newRepeatGuard(r.cfg.LoopThreshold)
	for !st.IsTerminal() && !st.HasReachedMaxIterations() {
		if err := r.step(ctx, st, guard); err != nil {
			return err
		}
	}

	if !st.IsTerminal() {
		st.Fail(fmt.Sprintf(maxIterationsMessage, st.MaxIterations()))
	}
	return nil
}

// step runs one reason-act cycle.
func (r *ReAct) step(ctx context.Context, st *State, guard *repeatGuard) error {
	resp, err := r.call(ctx, st, st.Messages(), true)
	if err != nil {
		return err
	}

	if budgetExceeded(r.cfg.TokenBudget, st.Usage()) {
		st.Fail(tokenBudgetMessage)
		return nil
	}

	content := message.Normalize(resp.Content)
	hasTools := message.HasToolUse(content)

	// Check for loops before appending the assistant message so that no
	// tool_use is left without a matching result.
	if hasTools {
		if name, repeated := guard.observe(message.ToolUses(content)); repeated {
			st.Fail(fmt.Sprintf(repeatedCallsMessage, name))
			return nil
		}
	}

	if len(content) > 0 {
		st.AddMessage(message.NewAssistant(content...))
	}

	switch {
	case hasTools:
		results := r.executor.Execute(ctx, st, content)
		st.AddMessage(message.NewToolResults(results...))
	case resp.StopReason.IsCompletion():
		st.Complete(message.TextContent(content))
	default:
		r.logger.Warn("unhandled stop reason, continuing",
			"run_id", st.ID,
			"iteration", st.Iteration(),
			"stop_reason", string(resp.StopReason),
		)
	}
	return nil
}
