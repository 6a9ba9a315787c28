package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Public.
	r.Get("/health", g.handleHealth())
	if g.deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(g.deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		if g.cfg.Auth.IsEnabled() {
			r.Use(authMiddleware(g.cfg.Auth, g.logger))
		}
		r.Post("/runs", g.handleCreateRun())
		r.Get("/runs", g.handleListRuns())
		r.Get("/runs/{id}", g.handleGetRun())
	})

	return r
}

// errorResponse is the JSON body of every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
