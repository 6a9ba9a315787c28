package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/sloop/internal/agent"
	"github.com/flemzord/sloop/internal/config"
	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/internal/runlog"
	"github.com/flemzord/sloop/pkg/app"
)

// fakeRunner answers every run with a completed record and saves it.
type fakeRunner struct {
	store runlog.Store
	err   error
	got   []app.RunRequest
}

func (f *fakeRunner) Run(ctx context.Context, req app.RunRequest) (runlog.Record, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return runlog.Record{}, f.err
	}
	now := time.Now()
	rec := runlog.Record{
		ID:         "run-" + strings.ReplaceAll(req.Task, " ", "-"),
		Loop:       req.Kind,
		Task:       req.Task,
		Status:     agent.StatusCompleted,
		Answer:     "done: " + req.Task,
		Iterations: 1,
		StartedAt:  now,
		FinishedAt: now,
	}
	if f.store != nil {
		if err := f.store.Save(ctx, rec); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

type fakeHealth []provider.Status

func (f fakeHealth) HealthReport() []provider.Status { return f }

// newTestGateway builds a gateway over a memory store.
func newTestGateway(t *testing.T, cfg config.ServerConfig, deps Deps) *Gateway {
	t.Helper()
	if deps.Store == nil {
		deps.Store = runlog.NewMemoryStore()
	}
	if deps.Runner == nil {
		deps.Runner = &fakeRunner{store: deps.Store}
	}
	g, err := New(cfg, deps, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
