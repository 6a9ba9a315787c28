package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/flemzord/sloop/internal/agent"
	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/internal/runlog"
	"github.com/flemzord/sloop/modules/runlog/sqlite"
)

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), sqlite.Config{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "runs.db"))

	started := time.Date(2026, 3, 1, 12, 0, 0, 123, time.UTC)
	rec := runlog.Record{
		ID:         "run-1",
		Loop:       agent.NameReAct,
		Task:       "What is 5 + 3?",
		Status:     agent.StatusCompleted,
		Answer:     "Result: 8",
		Iterations: 2,
		Usage:      provider.TokenUsage{InputTokens: 20, OutputTokens: 10},
		ToolCalls: []agent.ToolCallRecord{
			{ID: "call_1", Name: "calculator", Input: []byte(`{"a":5}`), Output: "8"},
		},
		Metadata:   map[string]any{"final_score": 9},
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Loop != "react" || got.Status != agent.StatusCompleted || got.Answer != "Result: 8" {
		t.Errorf("got %+v", got)
	}
	if got.Iterations != 2 || got.Usage != rec.Usage {
		t.Errorf("counters = %d, %+v", got.Iterations, got.Usage)
	}
	if len(got.ToolCalls) != 1 || got.ToolCalls[0].Name != "calculator" || got.ToolCalls[0].Output != "8" {
		t.Errorf("tool calls = %+v", got.ToolCalls)
	}
	// JSON numbers decode as float64.
	if got.Metadata["final_score"] != float64(9) {
		t.Errorf("metadata = %+v", got.Metadata)
	}
	if !got.StartedAt.Equal(rec.StartedAt) || got.Duration() != 1500*time.Millisecond {
		t.Errorf("timing = %v, %v", got.StartedAt, got.Duration())
	}
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()

	s := openStore(t, filepath.Join(t.TempDir(), "runs.db"))
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, runlog.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "runs.db"))

	rec := runlog.Record{ID: "r", Loop: "react", Status: agent.StatusRunning, StartedAt: time.Now()}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	rec.Status = agent.StatusFailed
	rec.Error = "Token budget exceeded"
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "r")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != agent.StatusFailed || got.Error != "Token budget exceeded" {
		t.Errorf("got %q/%q", got.Status, got.Error)
	}
	if !got.FinishedAt.IsZero() {
		t.Errorf("FinishedAt = %v, want zero", got.FinishedAt)
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "runs.db"))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 4 {
		rec := runlog.Record{
			ID:        fmt.Sprintf("r%d", i),
			Loop:      "plan_execute",
			Status:    agent.StatusCompleted,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r3" || got[1].ID != "r2" {
		t.Errorf("List = %+v", got)
	}
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "runs.db")

	first, err := sqlite.Open(ctx, sqlite.Config{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.Save(ctx, runlog.Record{ID: "keep", Loop: "react", Status: agent.StatusCompleted, StartedAt: time.Now()}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := openStore(t, path)
	if _, err := second.Get(ctx, "keep"); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := sqlite.Open(context.Background(), sqlite.Config{}); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := sqlite.Open(context.Background(), sqlite.Config{Path: "x.db", BusyTimeout: -1}); err == nil {
		t.Error("expected error for negative busy timeout")
	}
}
