package gateway

import (
	"net/http"

	"github.com/flemzord/sloop/internal/provider"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status    string            `json:"status"` // "ok" or "degraded"
	Providers []provider.Status `json:"providers"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 if all providers are available, 503 otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "ok", Providers: []provider.Status{}}

		if g.deps.Health != nil {
			resp.Providers = g.deps.Health.HealthReport()
			for _, p := range resp.Providers {
				if !p.Available {
					resp.Status = "degraded"
					break
				}
			}
		}

		status := http.StatusOK
		if resp.Status == "degraded" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
