package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/flemzord/sloop/internal/config"
	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/internal/runlog"
	"github.com/flemzord/sloop/internal/telemetry"
	"github.com/flemzord/sloop/internal/tool/builtin"
	"github.com/flemzord/sloop/modules/provider/anthropic"
	"github.com/flemzord/sloop/modules/provider/openai"
	"github.com/flemzord/sloop/modules/runlog/sqlite"
)

// App is a fully wired runtime.
type App struct {
	Runner   *Runner
	Store    runlog.Store
	Failover *provider.Failover

	// Registry holds the Prometheus collectors. Nil when metrics are disabled.
	Registry *prometheus.Registry

	tracing *telemetry.Tracing
	logger  *slog.Logger
}

// Build wires an App from a validated configuration. Call Close when done.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	failover, err := buildProviders(cfg.Providers, cfg.Model, logger)
	if err != nil {
		return nil, err
	}

	tools, err := builtin.Registry(cfg.Tools.Enabled)
	if err != nil {
		return nil, fmt.Errorf("app: tools: %w", err)
	}

	store, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	a := &App{Store: store, Failover: failover, logger: logger}

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Metrics.Enabled {
		a.Registry = prometheus.NewRegistry()
		a.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		if metrics, err = telemetry.NewMetrics(a.Registry); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	if a.tracing, err = telemetry.NewTracing(ctx, cfg.Telemetry.Tracing, version); err != nil {
		_ = store.Close()
		return nil, err
	}

	a.Runner = NewRunner(RunnerConfig{
		Loop:     cfg.Loop,
		Model:    cfg.Model,
		Provider: failover,
		Tools:    tools,
		Store:    store,
		Metrics:  metrics,
		Tracing:  a.tracing,
		Logger:   logger,
	})

	logger.Info("app wired",
		"providers", len(cfg.Providers),
		"tools", tools.Names(),
		"store", cfg.Store.Driver,
		"metrics", cfg.Telemetry.Metrics.Enabled,
		"tracing", cfg.Telemetry.Tracing.Enabled,
	)
	return a, nil
}

// Close stops health probes, flushes traces and closes the store.
func (a *App) Close(ctx context.Context) error {
	a.Failover.Stop()
	return errors.Join(a.tracing.Shutdown(ctx), a.Store.Close())
}

// OpenStore opens the run store selected by cfg.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (runlog.Store, error) {
	switch cfg.Driver {
	case "memory":
		return runlog.NewMemoryStore(), nil
	case "sqlite":
		store, err := sqlite.Open(ctx, sqlite.Config{Path: config.ExpandHome(cfg.Path)})
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("app: unknown store driver %q", cfg.Driver)
	}
}

// buildProviders creates one adapter per configured provider, in order, and
// chains them for failover. A model name set at the top level overrides
// each provider's own model.
func buildProviders(cfgs []config.ProviderConfig, model config.ModelConfig, logger *slog.Logger) (*provider.Failover, error) {
	entries := make([]provider.Entry, 0, len(cfgs))
	for _, pc := range cfgs {
		name := pc.Model
		if model.Name != "" {
			name = model.Name
		}

		var (
			p   provider.Provider
			err error
		)
		switch pc.Type {
		case "anthropic":
			p, err = anthropic.New(anthropic.Config{
				APIKey:    pc.ResolveAPIKey(),
				Model:     name,
				BaseURL:   pc.BaseURL,
				MaxTokens: model.MaxTokens,
			}, logger)
		case "openai":
			p, err = openai.New(openai.Config{
				APIKey:    pc.ResolveAPIKey(),
				Model:     name,
				BaseURL:   pc.BaseURL,
				MaxTokens: model.MaxTokens,
			}, logger)
		default:
			err = fmt.Errorf("unknown provider type %q", pc.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("app: provider %s: %w", pc.Name, err)
		}
		entries = append(entries, provider.Entry{Name: pc.Name, Provider: p})
	}

	f, err := provider.NewFailover(entries, provider.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return f, nil
}
