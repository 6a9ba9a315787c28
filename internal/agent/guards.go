package agent

import (
	"encoding/json"

	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/pkg/message"
)

// repeatGuard counts identical tool calls across a ReAct run. Two calls are
// identical when the tool name and the canonical JSON of the input match.
// A zero limit disables it.
type repeatGuard struct {
	limit int
	seen  map[string]int
}

func newRepeatGuard(limit int) *repeatGuard {
	return &repeatGuard{limit: limit, seen: make(map[string]int)}
}

// observe counts the tool_use blocks of one model turn and returns the name
// of the first tool whose identical call reached the limit.
func (g *repeatGuard) observe(uses []message.ContentBlock) (string, bool) {
	if g.limit <= 0 {
		return "", false
	}
	for _, use := range uses {
		key := callKey(use.Name, use.Input)
		g.seen[key]++
		if g.seen[key] >= g.limit {
			return use.Name, true
		}
	}
	return "", false
}

// callKey identifies a call independently of key order and whitespace in
// its input. Invalid JSON is keyed by its raw bytes.
func callKey(name string, input json.RawMessage) string {
	input = message.NormalizeInput(input)
	var v any
	if err := json.Unmarshal(input, &v); err != nil {
		return name + "\x00" + string(input)
	}
	canonical, _ := json.Marshal(v)
	return name + "\x00" + string(canonical)
}

// budgetExceeded reports whether cumulative usage has reached budget.
// A zero budget means unlimited.
func budgetExceeded(budget int, usage provider.TokenUsage) bool {
	return budget > 0 && usage.Total() >= budget
}
