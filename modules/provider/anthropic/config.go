package anthropic

import (
	"errors"
	"time"
)

// defaultModel is the model used when none is specified.
const defaultModel = "claude-sonnet-4-5-20250929"

const (
	defaultMaxTokens = 4096
	defaultTimeout   = 120 * time.Second
)

// Config configures the Anthropic adapter.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int

	// Timeout bounds each HTTP request, including reading the body.
	Timeout time.Duration
}

// defaults fills in zero-value fields.
func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return errors.New("anthropic: api key must not be empty")
	}
	if c.MaxTokens < 0 {
		return errors.New("anthropic: max_tokens must be non-negative")
	}
	return nil
}
