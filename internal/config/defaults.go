package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Default values applied by Load and Default.
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultLoopKind      = "react"
	DefaultMaxIterations = 10
	DefaultMaxTokens     = 4096
	DefaultStoreDriver   = "sqlite"
	DefaultStorePath     = "~/.sloop/runs.db"
	DefaultBind          = "127.0.0.1:8080"
	DefaultOTLPEndpoint  = "localhost:4318"
	DefaultServiceName   = "sloop"
)

// Default returns a configuration with every default applied and providers
// discovered from ANTHROPIC_API_KEY and OPENAI_API_KEY.
func Default() *Config {
	cfg := &Config{Version: "1"}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		cfg.Providers = append(cfg.Providers, ProviderConfig{
			Name: "anthropic", Type: "anthropic", APIKeyEnv: "ANTHROPIC_API_KEY",
		})
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		cfg.Providers = append(cfg.Providers, ProviderConfig{
			Name: "openai", Type: "openai", APIKeyEnv: "OPENAI_API_KEY",
		})
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Loop.Kind == "" {
		c.Loop.Kind = DefaultLoopKind
	}
	if c.Loop.MaxIterations == 0 {
		c.Loop.MaxIterations = DefaultMaxIterations
	}
	if c.Model.MaxTokens == 0 {
		c.Model.MaxTokens = DefaultMaxTokens
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DefaultStoreDriver
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	if c.Telemetry.Tracing.Endpoint == "" {
		c.Telemetry.Tracing.Endpoint = DefaultOTLPEndpoint
	}
	if c.Telemetry.Tracing.SampleRate == 0 {
		c.Telemetry.Tracing.SampleRate = 1
	}
	if c.Telemetry.Tracing.ServiceName == "" {
		c.Telemetry.Tracing.ServiceName = DefaultServiceName
	}
	if c.Server.Bind == "" {
		c.Server.Bind = DefaultBind
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ResolveAPIKey returns the provider key: the literal value first, then APIKeyEnv.
func (p ProviderConfig) ResolveAPIKey() string {
	if p.APIKey != "" {
		return p.APIKey
	}
	if p.APIKeyEnv != "" {
		return os.Getenv(p.APIKeyEnv)
	}
	return ""
}

// Secrets returns every credential in the configuration, for log redaction.
func (c *Config) Secrets() []string {
	var out []string
	for _, p := range c.Providers {
		if key := p.ResolveAPIKey(); key != "" {
			out = append(out, key)
		}
	}
	for _, s := range []string{c.Server.Auth.BearerToken, c.Server.Auth.BasicPass} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
