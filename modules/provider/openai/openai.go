// Package openai adapts the OpenAI Chat Completions API to provider.Provider.
package openai

import (
	"context"
	"log/slog"

	sdkopenai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/flemzord/sloop/internal/provider"
)

// Interface guards.
var (
	_ provider.Provider      = (*Provider)(nil)
	_ provider.HealthChecker = (*Provider)(nil)
)

// Provider implements provider.Provider and provider.HealthChecker.
type Provider struct {
	config Config
	client *sdkopenai.Client
	logger *slog.Logger
}

// New creates an adapter from cfg. A nil logger discards output.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		// The failover chain handles retries.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := sdkopenai.NewClient(opts...)

	return &Provider{
		config: cfg,
		client: &client,
		logger: logger.With("provider", "openai", "model", cfg.Model),
	}, nil
}

// ModelName implements provider.Provider.
func (p *Provider) ModelName() string {
	return p.config.Model
}

// Complete implements provider.Provider.
func (p *Provider) Complete(ctx context.Context, req provider.Request) (provider.Response, error) {
	completion, err := p.client.Chat.Completions.New(ctx, buildParams(req, &p.config))
	if err != nil {
		p.logger.Debug("chat completion failed", "error", err)
		return provider.Response{}, mapError(err)
	}
	return convertResponse(completion), nil
}

// HealthCheck lists the configured model, which needs a valid key but
// consumes no tokens.
func (p *Provider) HealthCheck(ctx context.Context) error {
	_, err := p.client.Models.Get(ctx, p.config.Model)
	return mapError(err)
}
