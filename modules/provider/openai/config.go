package openai

import (
	"errors"
	"time"
)

const (
	defaultModel     = "gpt-4o"
	defaultMaxTokens = 4096
	defaultTimeout   = 120 * time.Second
)

// Config configures the OpenAI adapter. BaseURL may point at any
// Chat Completions compatible endpoint.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// defaults fills zero-valued fields.
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
		return errors.New("openai: api key must not be empty")
	}
	if c.MaxTokens < 0 {
		return errors.New("openai: max_tokens must be non-negative")
	}
	return nil
}
