// Package tooltest provides test helpers and mocks for the tool package.
package tooltest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/flemzord/sloop/internal/tool"
)

// MockTool is a configurable mock implementation of tool.Tool.
type MockTool struct {
	NameFunc        func() string
	DescriptionFunc func() string
	SchemaFunc      func() json.RawMessage
	ExecuteFunc     func(ctx context.Context, args json.RawMessage) (string, error)

	mu           sync.Mutex
	ExecuteCalls int
	Args         []json.RawMessage
}

// Name implements tool.Tool.
func (m *MockTool) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock-tool"
}

// Description implements tool.Tool.
func (m *MockTool) Description() string {
	if m.DescriptionFunc != nil {
		return m.DescriptionFunc()
	}
	return "a mock tool"
}

// Schema implements tool.Tool.
func (m *MockTool) Schema() json.RawMessage {
	if m.SchemaFunc != nil {
		return m.SchemaFunc()
	}
	return json.RawMessage(`{"type":"object"}`)
}

// Execute implements tool.Tool.
func (m *MockTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	m.mu.Lock()
	m.ExecuteCalls++
	m.Args = append(m.Args, args)
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, args)
	}
	return "ok", nil
}

// Calls returns the number of Execute calls received.
func (m *MockTool) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExecuteCalls
}

// SimpleTool creates a tool named name that answers "executed: <name>".
func SimpleTool(name string) *MockTool {
	return &MockTool{
		NameFunc:        func() string { return name },
		DescriptionFunc: func() string { return "simple test tool: " + name },
		ExecuteFunc: func(_ context.Context, _ json.RawMessage) (string, error) {
			return "executed: " + name, nil
		},
	}
}

// Registry builds a tool.Registry from tools, panicking on registration errors.
func Registry(tools ...tool.Tool) *tool.Registry {
	r, err := tool.NewRegistry(tools...)
	if err != nil {
		panic(err)
	}
	return r
}

// Interface guard.
var _ tool.Tool = (*MockTool)(nil)
