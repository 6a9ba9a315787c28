package tool

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/flemzord/sloop/internal/provider"
)

// Registry holds registered tools. It is instance-based (not global) so each
// run can be given its own tool set.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry holding the given tools.
// It returns the first registration error encountered.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool to the registry. It returns ErrEmptyToolName for a
// blank name and ErrDuplicateTool if the name is already taken.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return ErrNilTool
	}
	name := strings.TrimSpace(t.Name())
	if name == "" {
		return ErrEmptyToolName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}

	r.tools[name] = t
	return nil
}

// Get returns the tool with the given name, or ErrToolNotFound.
func (r *Registry) Get(name string) (Tool, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return t, nil
}

// Definitions returns the model-facing definitions of all registered tools
// sorted by name.
func (r *Registry) Definitions() []provider.ToolDefinition {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]provider.ToolDefinition, 0, len(r.tools))
	for name, t := range r.tools {
		defs = append(defs, provider.ToolDefinition{
			Name:        name,
			Description: t.Description(),
			Parameters:  t.Schema(),
		})
	}
	slices.SortFunc(defs, func(a, b provider.ToolDefinition) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return defs
}

// Names returns all registered tool names sorted alphabetically.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
