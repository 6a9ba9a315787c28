// Package agent implements the interaction loops that drive a model through
// multi-turn problem solving: ReAct (reason, act, observe), Reflection
// (generate, reflect, refine) and Plan-Execute, plus the tool dispatch they
// share.
package agent

import (
	"encoding/json"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/internal/tool"
	"github.com/flemzord/sloop/pkg/message"
)

// DefaultMaxIterations bounds model calls when StateConfig.MaxIterations is unset.
const DefaultMaxIterations = 10

// Status is the lifecycle state of a run.
type Status string

// Status values. Completed and failed are terminal.
const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether s is completed or failed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ModelConfig carries the model parameters sent with every request.
type ModelConfig struct {
	Model       string
	MaxTokens   int
	Temperature *float64
	Stop        []string
}

// ToolCallRecord tracks one tool invocation, successful or not.
type ToolCallRecord struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Input    json.RawMessage `json:"input"`
	Output   string          `json:"output"`
	IsError  bool            `json:"is_error"`
	Duration time.Duration   `json:"duration_ns"`
}

// StateConfig is the input to NewState.
type StateConfig struct {
	Task          string
	SystemPrompt  string
	MaxIterations int
	Provider      provider.Provider
	Tools         *tool.Registry
	Model         ModelConfig
}

// State is the execution state of one run. It is owned by a single
// Loop.Execute call and is not safe for concurrent use.
type State struct {
	ID string

	task          string
	system        string
	model         ModelConfig
	provider      provider.Provider
	tools         *tool.Registry
	maxIterations int

	messages  []message.Message
	iteration int
	status    Status
	answer    string
	errMsg    string
	usage     provider.TokenUsage
	toolCalls []ToolCallRecord
	metadata  map[string]any

	startedAt  time.Time
	finishedAt time.Time
}

// NewState creates a running state seeded with the task as the first user message.
func NewState(cfg StateConfig) *State {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	st := &State{
		ID:            uuid.NewString(),
		task:          cfg.Task,
		system:        cfg.SystemPrompt,
		model:         cfg.Model,
		provider:      cfg.Provider,
		tools:         cfg.Tools,
		maxIterations: cfg.MaxIterations,
		status:        StatusRunning,
		metadata:      make(map[string]any),
		startedAt:     time.Now(),
	}
	if cfg.Task != "" {
		st.messages = append(st.messages, message.NewUserText(cfg.Task))
	}
	return st
}

// Task returns the task the run was started with.
func (s *State) Task() string { return s.task }

// SystemPrompt returns the system prompt, possibly empty.
func (s *State) SystemPrompt() string { return s.system }

// Model returns the model parameters.
func (s *State) Model() ModelConfig { return s.model }

// Provider returns the model call boundary.
func (s *State) Provider() provider.Provider { return s.provider }

// Messages returns a copy of the conversation history.
func (s *State) Messages() []message.Message {
	return slices.Clone(s.messages)
}

// AddMessage appends a message to the conversation history.
func (s *State) AddMessage(m message.Message) {
	s.messages = append(s.messages, m)
}

// IncrementIteration advances the iteration counter and returns the new value.
func (s *State) IncrementIteration() int {
	s.iteration++
	return s.iteration
}

// Iteration returns the number of model calls made so far.
func (s *State) Iteration() int { return s.iteration }

// MaxIterations returns the iteration bound.
func (s *State) MaxIterations() int { return s.maxIterations }

// HasReachedMaxIterations reports whether no model call budget remains.
func (s *State) HasReachedMaxIterations() bool {
	return s.iteration >= s.maxIterations
}

// Status returns the current lifecycle status.
func (s *State) Status() Status { return s.status }

// IsCompleted reports whether the run completed successfully.
func (s *State) IsCompleted() bool { return s.status == StatusCompleted }

// IsTerminal reports whether the run is completed or failed.
func (s *State) IsTerminal() bool { return s.status.Terminal() }

// Complete transitions a running state to completed with answer.
// It returns false and changes nothing if the state is already terminal.
func (s *State) Complete(answer string) bool {
	if s.IsTerminal() {
		return false
	}
	s.status = StatusCompleted
	s.answer = answer
	s.finishedAt = time.Now()
	return true
}

// Fail transitions a running state to failed with msg.
// It returns false and changes nothing if the state is already terminal.
func (s *State) Fail(msg string) bool {
	if s.IsTerminal() {
		return false
	}
	s.status = StatusFailed
	s.errMsg = msg
	s.finishedAt = time.Now()
	return true
}

// Answer returns the final answer of a completed run.
func (s *State) Answer() string { return s.answer }

// Error returns the failure message of a failed run.
func (s *State) Error() string { return s.errMsg }

// AddTokenUsage accumulates token counts. Negative values are ignored.
func (s *State) AddTokenUsage(input, output int) {
	s.usage.InputTokens += max(input, 0)
	s.usage.OutputTokens += max(output, 0)
}

// Usage returns the accumulated token usage.
func (s *State) Usage() provider.TokenUsage { return s.usage }

// ToolDefinitions returns the definitions of the tools available to the run.
func (s *State) ToolDefinitions() []provider.ToolDefinition {
	return s.tools.Definitions()
}

// Tool looks up a tool by name.
func (s *State) Tool(name string) (tool.Tool, bool) {
	t, err := s.tools.Get(name)
	if err != nil {
		return nil, false
	}
	return t, true
}

// RecordToolCall appends rec to the tool call history.
func (s *State) RecordToolCall(rec ToolCallRecord) {
	s.toolCalls = append(s.toolCalls, rec)
}

// ToolCalls returns a copy of the tool call history.
func (s *State) ToolCalls() []ToolCallRecord {
	return slices.Clone(s.toolCalls)
}

// SetMetadata stores a loop-specific artifact under key.
func (s *State) SetMetadata(key string, value any) {
	s.metadata[key] = value
}

// Metadata returns a shallow copy of the metadata map.
func (s *State) Metadata() map[string]any {
	return maps.Clone(s.metadata)
}

// StartedAt returns when the state was created.
func (s *State) StartedAt() time.Time { return s.startedAt }

// FinishedAt returns when the state became terminal, or the zero time.
func (s *State) FinishedAt() time.Time { return s.finishedAt }

// request builds a model request from msgs using the run's model parameters.
func (s *State) request(msgs []message.Message, withTools bool) provider.Request {
	req := provider.Request{
		System:      s.system,
		Messages:    msgs,
		Model:       s.model.Model,
		MaxTokens:   s.model.MaxTokens,
		Temperature: s.model.Temperature,
		Stop:        s.model.Stop,
	}
	if withTools {
		req.Tools = s.ToolDefinitions()
	}
	return req
}
