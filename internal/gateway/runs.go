package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flemzord/sloop/internal/runlog"
	"github.com/flemzord/sloop/pkg/app"
)

// maxRequestBody bounds the POST /v1/runs payload.
const maxRequestBody = 1 << 20

// handleCreateRun executes a run synchronously and returns its record.
// Loop failures still answer 200: the record carries the failed status.
func (g *Gateway) handleCreateRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req app.RunRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		rec, err := g.deps.Runner.Run(r.Context(), req)
		switch {
		case errors.Is(err, app.ErrEmptyTask), errors.Is(err, app.ErrUnknownLoop):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			g.logger.Error("run failed to record",
				"request_id", middleware.GetReqID(r.Context()),
				"run_id", rec.ID,
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		g.logger.Info("run served",
			"request_id", middleware.GetReqID(r.Context()),
			"run_id", rec.ID,
			"loop", rec.Loop,
			"status", string(rec.Status),
		)
		writeJSON(w, http.StatusOK, rec)
	}
}

// handleListRuns returns the most recent runs, newest first.
func (g *Gateway) handleListRuns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := runlog.DefaultListLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}

		recs, err := g.deps.Store.List(r.Context(), limit)
		if err != nil {
			g.logger.Error("list runs", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if recs == nil {
			recs = []runlog.Record{}
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// handleGetRun returns one run by ID.
func (g *Gateway) handleGetRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		rec, err := g.deps.Store.Get(r.Context(), id)
		switch {
		case errors.Is(err, runlog.ErrNotFound):
			writeError(w, http.StatusNotFound, "run not found")
			return
		case err != nil:
			g.logger.Error("get run", "run_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}
