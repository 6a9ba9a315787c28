// Package anthropic adapts the Anthropic Messages API to provider.Provider.
package anthropic

import (
	"context"
	"log/slog"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/flemzord/sloop/internal/provider"
)

// Interface guards.
var (
	_ provider.Provider      = (*Anthropic)(nil)
	_ provider.HealthChecker = (*Anthropic)(nil)
)

// Anthropic implements provider.Provider and provider.HealthChecker.
type Anthropic struct {
	config Config
	client *sdkanthropic.Client
	logger *slog.Logger
}

// New creates an adapter from cfg. A nil logger discards output.
func New(cfg Config, logger *slog.Logger) (*Anthropic, error) {
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
	client := sdkanthropic.NewClient(opts...)

	return &Anthropic{
		config: cfg,
		client: &client,
		logger: logger.With("provider", "anthropic", "model", cfg.Model),
	}, nil
}

// ModelName implements provider.Provider.
func (a *Anthropic) ModelName() string {
	return a.config.Model
}

// Complete implements provider.Provider.
func (a *Anthropic) Complete(ctx context.Context, req provider.Request) (provider.Response, error) {
	msg, err := a.client.Messages.New(ctx, convertRequest(req, &a.config))
	if err != nil {
		a.logger.Debug("messages request failed", "error", err)
		return provider.Response{}, mapError(err)
	}
	return convertResponse(msg), nil
}

// HealthCheck sends a 1-token completion. The API has no dedicated health
// endpoint.
func (a *Anthropic) HealthCheck(ctx context.Context) error {
	_, err := a.client.Messages.New(ctx, sdkanthropic.MessageNewParams{
		Model:     sdkanthropic.Model(a.config.Model),
		MaxTokens: 1,
		Messages: []sdkanthropic.MessageParam{
			sdkanthropic.NewUserMessage(sdkanthropic.NewTextBlock("hi")),
		},
	})
	return mapError(err)
}
