// Package tool defines the tool interface, the invocation result variant and
// the registry the interaction loops dispatch tool calls through.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is the interface that all sloop tools must implement.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what the tool does.
	Description() string

	// Schema returns a JSON Schema describing the tool's parameters.
	Schema() json.RawMessage

	// Execute runs the tool with the given JSON arguments.
	// A returned error is reported to the model as an error-flagged result.
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Result is the outcome of one tool invocation: either Ok(content) or
// Err(message). It never carries a Go error; failures are data.
type Result struct {
	// Content is the tool output, or the error message when IsError is set.
	Content string

	// IsError indicates whether the result represents a failure.
	IsError bool
}

// Ok returns a successful result.
func Ok(content string) Result {
	return Result{Content: content}
}

// Err returns an error-flagged result carrying msg.
func Err(msg string) Result {
	return Result{Content: msg, IsError: true}
}

// Invoke runs t and folds every failure mode into a Result: a returned error
// becomes Err(err.Error()) and a panic becomes Err with the panic value.
func Invoke(ctx context.Context, t Tool, args json.RawMessage) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Err(fmt.Sprint(r))
		}
	}()

	out, err := t.Execute(ctx, args)
	if err != nil {
		return Err(err.Error())
	}
	return Ok(out)
}

// ExecuteFunc is the signature of a function-backed tool.
type ExecuteFunc func(ctx context.Context, args json.RawMessage) (string, error)

// defaultSchema is used when a Func tool declares no schema.
var defaultSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// Func adapts a plain function into a Tool.
type Func struct {
	name        string
	description string
	schema      json.RawMessage
	fn          ExecuteFunc
}

// NewFunc creates a function-backed tool. A nil schema defaults to an
// object with no properties.
func NewFunc(name, description string, schema json.RawMessage, fn ExecuteFunc) *Func {
	if len(schema) == 0 {
		schema = defaultSchema
	}
	return &Func{name: name, description: description, schema: schema, fn: fn}
}

// Name implements Tool.
func (f *Func) Name() string { return f.name }

// Description implements Tool.
func (f *Func) Description() string { return f.description }

// Schema implements Tool.
func (f *Func) Schema() json.RawMessage { return f.schema }

// Execute implements Tool.
func (f *Func) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	if f.fn == nil {
		return "", fmt.Errorf("tool %s: no implementation", f.name)
	}
	return f.fn(ctx, args)
}

// Interface guard.
var _ Tool = (*Func)(nil)
