// Package sqlite implements a persistent runlog.Store on SQLite using
// modernc.org/sqlite (pure Go, no CGO) in WAL mode.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flemzord/sloop/internal/agent"
	"github.com/flemzord/sloop/internal/runlog"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// Compile-time interface guard.
var _ runlog.Store = (*Store)(nil)

// Store is a runlog.Store backed by a single SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database described by cfg and
// migrates its schema. The caller must Close the returned store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}

	// One writer at a time; a single connection keeps PRAGMAs consistent.
	db.SetMaxOpenConns(1)

	if *cfg.WAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Save implements runlog.Store.
func (s *Store) Save(ctx context.Context, rec runlog.Record) error {
	toolCalls, err := json.Marshal(orEmpty(rec.ToolCalls))
	if err != nil {
		return fmt.Errorf("sqlite: marshal tool_calls: %w", err)
	}
	metadata, err := json.Marshal(orEmptyMap(rec.Metadata))
	if err != nil {
		return fmt.Errorf("sqlite: marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, loop, task, status, answer, error, iterations,
		                             input_tokens, output_tokens, tool_calls, metadata,
		                             started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Loop, rec.Task, string(rec.Status), rec.Answer, rec.Error, rec.Iterations,
		rec.Usage.InputTokens, rec.Usage.OutputTokens, string(toolCalls), string(metadata),
		formatTime(rec.StartedAt), formatTime(rec.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save run %s: %w", rec.ID, err)
	}
	return nil
}

const selectColumns = `SELECT id, loop, task, status, answer, error, iterations,
	input_tokens, output_tokens, tool_calls, metadata, started_at, finished_at FROM runs`

// Get implements runlog.Store.
func (s *Store) Get(ctx context.Context, id string) (runlog.Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return runlog.Record{}, runlog.ErrNotFound
	}
	if err != nil {
		return runlog.Record{}, fmt.Errorf("sqlite: get run %s: %w", id, err)
	}
	return rec, nil
}

// List implements runlog.Store.
func (s *Store) List(ctx context.Context, limit int) ([]runlog.Record, error) {
	if limit <= 0 {
		limit = runlog.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY started_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []runlog.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan run: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list runs: %w", err)
	}
	return out, nil
}

// Close implements runlog.Store.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (runlog.Record, error) {
	var (
		rec                         runlog.Record
		status, toolCalls, metadata string
		startedAt, finishedAt       string
	)
	err := row.Scan(
		&rec.ID, &rec.Loop, &rec.Task, &status, &rec.Answer, &rec.Error, &rec.Iterations,
		&rec.Usage.InputTokens, &rec.Usage.OutputTokens, &toolCalls, &metadata,
		&startedAt, &finishedAt,
	)
	if err != nil {
		return runlog.Record{}, err
	}
	rec.Status = agent.Status(status)

	if err := json.Unmarshal([]byte(toolCalls), &rec.ToolCalls); err != nil {
		return runlog.Record{}, fmt.Errorf("decode tool_calls: %w", err)
	}
	if err := json.Unmarshal([]byte(metadata), &rec.Metadata); err != nil {
		return runlog.Record{}, fmt.Errorf("decode metadata: %w", err)
	}
	if rec.StartedAt, err = parseTime(startedAt); err != nil {
		return runlog.Record{}, fmt.Errorf("decode started_at: %w", err)
	}
	if rec.FinishedAt, err = parseTime(finishedAt); err != nil {
		return runlog.Record{}, fmt.Errorf("decode finished_at: %w", err)
	}
	return rec, nil
}

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}

func orEmpty(calls []agent.ToolCallRecord) []agent.ToolCallRecord {
	if calls == nil {
		return []agent.ToolCallRecord{}
	}
	return calls
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
