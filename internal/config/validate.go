package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
)

// Accepted enumerations.
var (
	loopKinds     = []string{"react", "reflection", "plan_execute"}
	providerTypes = []string{"anthropic", "openai"}
	storeDrivers  = []string{"sqlite", "memory"}
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"text", "json"}
)

// maxStopSequences is the lowest limit among the supported providers.
const maxStopSequences = 4

// ErrInvalid wraps every validation problem.
var ErrInvalid = errors.New("config: invalid")

// Validate checks the structural validity of a Config and returns every
// problem found, joined.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("unsupported version %q (supported: \"1\")", cfg.Version))
	}

	errs = append(errs, oneOf("log.level", cfg.Log.Level, logLevels)...)
	errs = append(errs, oneOf("log.format", cfg.Log.Format, logFormats)...)
	errs = append(errs, validateLoop(cfg.Loop)...)
	errs = append(errs, validateModel(cfg.Model)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateStore(cfg.Store)...)
	errs = append(errs, validateTelemetry(cfg.Telemetry)...)
	errs = append(errs, validateServer(cfg.Server)...)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

func oneOf(field, value string, allowed []string) []error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return []error{fmt.Errorf("%s: unknown value %q (allowed: %v)", field, value, allowed)}
}

func validateLoop(l LoopConfig) []error {
	errs := oneOf("loop.kind", l.Kind, loopKinds)

	if l.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("loop.max_iterations must be positive, got %d", l.MaxIterations))
	}
	if l.ReAct.TokenBudget < 0 {
		errs = append(errs, errors.New("loop.react.token_budget must not be negative"))
	}
	if l.ReAct.LoopThreshold < 0 {
		errs = append(errs, errors.New("loop.react.loop_threshold must not be negative"))
	}
	if l.Reflection.MaxRefinements < 0 {
		errs = append(errs, errors.New("loop.reflection.max_refinements must not be negative"))
	}
	if q := l.Reflection.QualityThreshold; q < 0 || q > 10 {
		errs = append(errs, fmt.Errorf("loop.reflection.quality_threshold must be within 0..10, got %d", q))
	}
	return errs
}

func validateModel(m ModelConfig) []error {
	var errs []error
	if m.MaxTokens < 1 {
		errs = append(errs, fmt.Errorf("model.max_tokens must be positive, got %d", m.MaxTokens))
	}
	if t := m.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, fmt.Errorf("model.temperature must be within 0..2, got %g", *t))
	}
	if len(m.Stop) > maxStopSequences {
		errs = append(errs, fmt.Errorf("model.stop accepts at most %d sequences, got %d", maxStopSequences, len(m.Stop)))
	}
	for i, s := range m.Stop {
		if s == "" {
			errs = append(errs, fmt.Errorf("model.stop[%d] must not be empty", i))
		}
	}
	return errs
}

func validateProviders(providers []ProviderConfig) []error {
	if len(providers) == 0 {
		return []error{errors.New("at least one provider must be configured")}
	}

	var errs []error
	seen := make(map[string]bool, len(providers))
	for i, p := range providers {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("providers[%d]: name is required", i))
		} else if seen[p.Name] {
			errs = append(errs, fmt.Errorf("providers[%d]: duplicate name %q", i, p.Name))
		}
		seen[p.Name] = true

		errs = append(errs, oneOf(fmt.Sprintf("providers[%d].type", i), p.Type, providerTypes)...)
		if p.APIKey == "" && p.APIKeyEnv == "" {
			errs = append(errs, fmt.Errorf("providers[%d]: api_key or api_key_env is required", i))
		}
	}
	return errs
}

func validateStore(s StoreConfig) []error {
	errs := oneOf("store.driver", s.Driver, storeDrivers)
	if s.Driver == "sqlite" && s.Path == "" {
		errs = append(errs, errors.New("store.path is required for the sqlite driver"))
	}
	return errs
}

func validateTelemetry(t TelemetryConfig) []error {
	var errs []error
	if r := t.Tracing.SampleRate; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("telemetry.tracing.sample_rate must be within 0..1, got %g", r))
	}
	if t.Tracing.Enabled && t.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.tracing.endpoint is required when tracing is enabled"))
	}
	return errs
}

func validateServer(s ServerConfig) []error {
	var errs []error
	if _, _, err := net.SplitHostPort(s.Bind); err != nil {
		errs = append(errs, fmt.Errorf("server.bind: %w", err))
	}
	if (s.Auth.BasicUser == "") != (s.Auth.BasicPass == "") {
		errs = append(errs, errors.New("server.auth: basic_user and basic_pass must be set together"))
	}
	return errs
}
