// Package runlog records finished loop runs.
package runlog

import (
	"context"
	"errors"
	"time"

	"github.com/flemzord/sloop/internal/agent"
	"github.com/flemzord/sloop/internal/provider"
)

// ErrNotFound indicates the requested run does not exist.
var ErrNotFound = errors.New("runlog: run not found")

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Record is the persisted summary of one loop run.
type Record struct {
	ID         string                 `json:"id"`
	Loop       string                 `json:"loop"`
	Task       string                 `json:"task"`
	Status     agent.Status           `json:"status"`
	Answer     string                 `json:"answer,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Iterations int                    `json:"iterations"`
	Usage      provider.TokenUsage    `json:"usage"`
	ToolCalls  []agent.ToolCallRecord `json:"tool_calls,omitempty"`
	Metadata   map[string]any         `json:"metadata,omitempty"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
}

// FromState captures a run's state after Execute.
func FromState(loop string, st *agent.State) Record {
	return Record{
		ID:         st.ID,
		Loop:       loop,
		Task:       st.Task(),
		Status:     st.Status(),
		Answer:     st.Answer(),
		Error:      st.Error(),
		Iterations: st.Iteration(),
		Usage:      st.Usage(),
		ToolCalls:  st.ToolCalls(),
		Metadata:   st.Metadata(),
		StartedAt:  st.StartedAt(),
		FinishedAt: st.FinishedAt(),
	}
}

// Duration returns the wall time of the run, or zero if it never finished.
func (r Record) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists run records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save inserts or replaces the record with the same ID.
	Save(ctx context.Context, rec Record) error

	// Get returns the record with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// List returns up to limit records, most recently started first.
	List(ctx context.Context, limit int) ([]Record, error)

	// Close releases the store's resources.
	Close() error
}
