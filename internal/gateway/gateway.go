// Package gateway exposes loop runs over HTTP: start a run, list and fetch
// recorded runs, plus health and Prometheus metrics. It binds to loopback by
// default.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flemzord/sloop/internal/config"
	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/internal/runlog"
	"github.com/flemzord/sloop/pkg/app"
)

// Server timeouts. Runs can take several model calls, so writes get more room
// than reads.
const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 10 * time.Minute
	shutdownTimeout = 5 * time.Second
)

// Runner executes one loop run. *app.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, req app.RunRequest) (runlog.Record, error)
}

// HealthReporter reports provider health. *provider.Failover satisfies it.
type HealthReporter interface {
	HealthReport() []provider.Status
}

// Deps are the collaborators served by the gateway. Health and Gatherer are
// optional; /metrics is only mounted when Gatherer is set.
type Deps struct {
	Runner   Runner
	Store    runlog.Store
	Health   HealthReporter
	Gatherer prometheus.Gatherer
}

// Gateway is the HTTP front of a sloop runtime.
type Gateway struct {
	cfg    config.ServerConfig
	deps   Deps
	logger *slog.Logger
	server *http.Server
	addr   net.Addr
}

// New creates a gateway. Runner and Store are required.
func New(cfg config.ServerConfig, deps Deps, logger *slog.Logger) (*Gateway, error) {
	if deps.Runner == nil || deps.Store == nil {
		return nil, errors.New("gateway: runner and store are required")
	}
	if cfg.Bind == "" {
		cfg.Bind = config.DefaultBind
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gateway{cfg: cfg, deps: deps, logger: logger.With("component", "gateway")}, nil
}

// Handler returns the routed handler without starting a listener.
func (g *Gateway) Handler() http.Handler {
	return g.buildRouter()
}

// Start listens on the configured address and serves in the background.
func (g *Gateway) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.cfg.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen %s: %w", g.cfg.Bind, err)
	}
	g.addr = ln.Addr()

	g.server = &http.Server{
		Handler:      g.buildRouter(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.addr.String(), "auth", g.cfg.Auth.IsEnabled())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (g *Gateway) Addr() net.Addr { return g.addr }

// Stop shuts the server down gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
