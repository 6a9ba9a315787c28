package provider

import (
	"encoding/json"

	"github.com/flemzord/sloop/pkg/message"
)

// StopReason is the model's self-reported reason for ending generation.
// It is advisory: a response may carry tool_use blocks under any stop reason,
// so callers inspect content with message.HasToolUse rather than trusting it.
type StopReason string

// StopReason constants reported by model adapters.
const (
	StopReasonEndTurn      StopReason = "end_turn"
	StopReasonToolUse      StopReason = "tool_use"
	StopReasonMaxTokens    StopReason = "max_tokens"
	StopReasonStopSequence StopReason = "stop_sequence"
	StopReasonRefusal      StopReason = "refusal"
)

// IsCompletion reports whether the stop reason signals an ordinary end of turn.
func (r StopReason) IsCompletion() bool {
	return r == StopReasonEndTurn || r == StopReasonStopSequence
}

// ToolDefinition describes a tool the model may invoke.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Request is the input to Provider.Complete.
type Request struct {
	System      string            `json:"system,omitempty"`
	Messages    []message.Message `json:"messages"`
	Tools       []ToolDefinition  `json:"tools,omitempty"`
	Model       string            `json:"model,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	Stop        []string          `json:"stop,omitempty"`
}

// Response is the output of Provider.Complete.
type Response struct {
	Content    []message.ContentBlock `json:"content"`
	StopReason StopReason             `json:"stop_reason"`
	Usage      TokenUsage             `json:"usage"`
	Model      string                 `json:"model,omitempty"`
}

// TokenUsage tracks token consumption for a completion.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns input plus output tokens.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}
