package agent

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/flemzord/sloop/internal/tool"
	"github.com/flemzord/sloop/pkg/message"
)

// ToolExecutor turns the tool_use blocks of a response into tool_result
// blocks. Execution is sequential and in block order.
type ToolExecutor struct {
	logger   *slog.Logger
	observer Observer
}

// NewToolExecutor creates a ToolExecutor. A nil logger discards output and a
// nil observer receives nothing.
func NewToolExecutor(logger *slog.Logger, observer Observer) *ToolExecutor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &ToolExecutor{logger: logger, observer: observer}
}

// ExecuteTools dispatches the tool_use blocks of content against st without
// logging. See ToolExecutor.Execute.
func ExecuteTools(ctx context.Context, st *State, content []message.ContentBlock, observer Observer) []message.ContentBlock {
	return NewToolExecutor(nil, observer).Execute(ctx, st, content)
}

// Execute runs every tool_use block in content and returns one tool_result
// block per invocation, in the same order. Unknown tools, tool errors and
// tool panics all become error-flagged results; every call is recorded in st.
func (e *ToolExecutor) Execute(ctx context.Context, st *State, content []message.ContentBlock) []message.ContentBlock {
	uses := message.ToolUses(content)
	results := make([]message.ContentBlock, 0, len(uses))

	for _, use := range uses {
		input := message.NormalizeInput(use.Input)
		res, elapsed := e.executeSingle(ctx, st, use.Name, input)

		st.RecordToolCall(ToolCallRecord{
			ID:       use.ID,
			Name:     use.Name,
			Input:    input,
			Output:   res.Content,
			IsError:  res.IsError,
			Duration: elapsed,
		})
		e.observer.OnToolExecution(ctx, use.Name, input, res)

		results = append(results, message.NewToolResultBlock(use.ID, res.Content, res.IsError))
	}
	return results
}

func (e *ToolExecutor) executeSingle(ctx context.Context, st *State, name string, input json.RawMessage) (tool.Result, time.Duration) {
	t, ok := st.Tool(name)
	if !ok {
		e.logger.Warn("unknown tool requested", "run_id", st.ID, "tool", name)
		return tool.Err("Unknown tool: " + name), 0
	}

	start := time.Now()
	res := tool.Invoke(ctx, t, input)
	elapsed := time.Since(start)

	if res.IsError {
		e.logger.Warn("tool failed", "run_id", st.ID, "tool", name, "error", res.Content, "duration", elapsed)
	} else {
		e.logger.Debug("tool executed", "run_id", st.ID, "tool", name, "duration", elapsed)
	}
	return res, elapsed
}
