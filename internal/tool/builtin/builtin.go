// Package builtin provides the tools shipped with sloop.
package builtin

import (
	"fmt"
	"slices"
	"time"

	"github.com/flemzord/sloop/internal/tool"
)

// Names lists the available built-in tools.
var Names = []string{"calculator", "clock"}

// New returns the built-in tool with the given name.
func New(name string) (tool.Tool, error) {
	switch name {
	case "calculator":
		return NewCalculator(), nil
	case "clock":
		return NewClock(time.Now), nil
	default:
		return nil, fmt.Errorf("%w: %s (available: %v)", tool.ErrToolNotFound, name, Names)
	}
}

// Registry builds a registry with the named built-in tools.
// An empty list registers every built-in.
func Registry(enabled []string) (*tool.Registry, error) {
	if len(enabled) == 0 {
		enabled = Names
	}

	r, _ := tool.NewRegistry()
	for _, name := range slices.Compact(slices.Sorted(slices.Values(enabled))) {
		t, err := New(name)
		if err != nil {
			return nil, err
		}
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}
