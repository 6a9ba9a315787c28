// Package providertest provides test helpers for the provider package.
package providertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/pkg/message"
)

// MockProvider is a configurable test double for provider.Provider.
// Set the Func fields to control behavior. Unset funcs panic on call.
// All methods are safe for concurrent use.
type MockProvider struct {
	CompleteFunc    func(ctx context.Context, req provider.Request) (provider.Response, error)
	ModelNameFunc   func() string
	HealthCheckFunc func(ctx context.Context) error

	mu            sync.Mutex
	CompleteCalls int
	HealthCalls   int
}

// Complete delegates to CompleteFunc and tracks call count.
func (m *MockProvider) Complete(ctx context.Context, req provider.Request) (provider.Response, error) {
	m.mu.Lock()
	m.CompleteCalls++
	m.mu.Unlock()
	return m.CompleteFunc(ctx, req)
}

// ModelName delegates to ModelNameFunc, defaulting to "mock-model".
func (m *MockProvider) ModelName() string {
	if m.ModelNameFunc == nil {
		return "mock-model"
	}
	return m.ModelNameFunc()
}

// HealthCheck delegates to HealthCheckFunc and tracks call count.
func (m *MockProvider) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.HealthCalls++
	m.mu.Unlock()
	return m.HealthCheckFunc(ctx)
}

// Scripted returns pre-configured responses in sequence and records every
// request it receives. Once the script is exhausted it returns an error.
type Scripted struct {
	mu        sync.Mutex
	responses []provider.Response
	errs      map[int]error
	requests  []provider.Request
}

// NewScripted creates a Scripted provider answering with responses in order.
func NewScripted(responses ...provider.Response) *Scripted {
	return &Scripted{responses: responses, errs: make(map[int]error)}
}

// FailAt makes the call with the given zero-based index return err.
func (s *Scripted) FailAt(call int, err error) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[call] = err
	return s
}

// Complete returns the next scripted response.
func (s *Scripted) Complete(_ context.Context, req provider.Request) (provider.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := len(s.requests)
	s.requests = append(s.requests, req)

	if err, ok := s.errs[idx]; ok {
		return provider.Response{}, err
	}
	if idx >= len(s.responses) {
		return provider.Response{}, fmt.Errorf("providertest: no scripted response for call %d", idx)
	}
	return s.responses[idx], nil
}

// ModelName implements provider.Provider.
func (s *Scripted) ModelName() string { return "scripted-model" }

// Requests returns a copy of the requests received so far.
func (s *Scripted) Requests() []provider.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]provider.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Calls returns the number of Complete calls received.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Text builds an end_turn response carrying a single text block.
func Text(text string) provider.Response {
	return provider.Response{
		Content:    []message.ContentBlock{message.NewTextBlock(text)},
		StopReason: provider.StopReasonEndTurn,
		Usage:      provider.TokenUsage{InputTokens: 10, OutputTokens: 5},
	}
}

// ToolUse builds a tool_use response invoking name with the JSON input.
func ToolUse(id, name, input string) provider.Response {
	return provider.Response{
		Content:    []message.ContentBlock{message.NewToolUseBlock(id, name, json.RawMessage(input))},
		StopReason: provider.StopReasonToolUse,
		Usage:      provider.TokenUsage{InputTokens: 10, OutputTokens: 5},
	}
}

// Interface guards.
var (
	_ provider.Provider      = (*MockProvider)(nil)
	_ provider.HealthChecker = (*MockProvider)(nil)
	_ provider.Provider      = (*Scripted)(nil)
)
