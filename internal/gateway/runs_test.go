package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flemzord/sloop/internal/agent"
	"github.com/flemzord/sloop/internal/config"
	"github.com/flemzord/sloop/internal/runlog"
	"github.com/flemzord/sloop/pkg/app"
)

func postRun(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/runs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return serve(h, req)
}

func TestCreateRun(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{store: runlog.NewMemoryStore()}
	g := newTestGateway(t, config.ServerConfig{}, Deps{Runner: runner, Store: runner.store})

	rr := postRun(t, g.Handler(), `{"kind":"reflection","task":"write a haiku"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rr.Code, rr.Body)
	}

	var rec runlog.Record
	if err := json.NewDecoder(rr.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Status != agent.StatusCompleted || rec.Answer != "done: write a haiku" {
		t.Errorf("record = %+v", rec)
	}
	if len(runner.got) != 1 || runner.got[0].Kind != "reflection" {
		t.Errorf("runner requests = %+v", runner.got)
	}
}

func TestCreateRun_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		err  error
	}{
		{name: "malformed json", body: `{"task":`},
		{name: "unknown field", body: `{"task":"x","prompt":"y"}`},
		{name: "empty task", body: `{"task":""}`, err: app.ErrEmptyTask},
		{name: "unknown loop", body: `{"kind":"tree_of_thought","task":"x"}`, err: fmt.Errorf("%w: %q", app.ErrUnknownLoop, "tree_of_thought")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := newTestGateway(t, config.ServerConfig{}, Deps{Runner: &fakeRunner{err: tt.err}})
			rr := postRun(t, g.Handler(), tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("code = %d, want 400", rr.Code)
			}

			var resp errorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message should not be empty")
			}
		})
	}
}

func TestCreateRun_StoreFailure(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, config.ServerConfig{}, Deps{Runner: &fakeRunner{err: errors.New("disk full")}})
	rr := postRun(t, g.Handler(), `{"task":"x"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "disk full") {
		t.Error("internal error detail should not leak")
	}
}

func TestListAndGetRuns(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, config.ServerConfig{}, Deps{})
	h := g.Handler()

	for _, task := range []string{"first", "second", "third"} {
		if rr := postRun(t, h, fmt.Sprintf(`{"task":%q}`, task)); rr.Code != http.StatusOK {
			t.Fatalf("post %s: code = %d", task, rr.Code)
		}
	}

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/v1/runs?limit=2", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("list code = %d", rr.Code)
	}
	var recs []runlog.Record
	if err := json.NewDecoder(rr.Body).Decode(&recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("list returned %d records, want 2", len(recs))
	}

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/v1/runs/run-second", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("get code = %d", rr.Code)
	}
	var rec runlog.Record
	if err := json.NewDecoder(rr.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Task != "second" {
		t.Errorf("task = %q, want second", rec.Task)
	}
}

func TestListRuns_EmptyIsArray(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, config.ServerConfig{}, Deps{})
	rr := serve(g.Handler(), httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestListRuns_InvalidLimit(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, config.ServerConfig{}, Deps{})
	for _, q := range []string{"abc", "0", "-3"} {
		rr := serve(g.Handler(), httptest.NewRequest(http.MethodGet, "/v1/runs?limit="+q, nil))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: code = %d, want 400", q, rr.Code)
		}
	}
}

func TestGetRun_NotFound(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, config.ServerConfig{}, Deps{})
	rr := serve(g.Handler(), httptest.NewRequest(http.MethodGet, "/v1/runs/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rr.Code)
	}
}
