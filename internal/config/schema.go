// Package config handles YAML configuration loading, environment variable
// expansion, defaults and structural validation for sloop.
package config

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	Log       LogConfig        `yaml:"log"`
	Loop      LoopConfig       `yaml:"loop"`
	Model     ModelConfig      `yaml:"model"`
	Providers []ProviderConfig `yaml:"providers"`
	Tools     ToolsConfig      `yaml:"tools"`
	Store     StoreConfig      `yaml:"store"`
	Telemetry TelemetryConfig  `yaml:"telemetry"`
	Server    ServerConfig     `yaml:"server"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// LoopConfig selects the interaction loop and its bounds.
type LoopConfig struct {
	// Kind is react, reflection or plan_execute.
	Kind string `yaml:"kind"`

	// MaxIterations bounds the number of model calls per run.
	MaxIterations int `yaml:"max_iterations"`

	SystemPrompt string `yaml:"system_prompt"`

	ReAct       ReActConfig       `yaml:"react"`
	Reflection  ReflectionConfig  `yaml:"reflection"`
	PlanExecute PlanExecuteConfig `yaml:"plan_execute"`
}

// ReActConfig holds the optional ReAct guards. Zero disables them.
type ReActConfig struct {
	TokenBudget   int `yaml:"token_budget"`
	LoopThreshold int `yaml:"loop_threshold"`
}

// ReflectionConfig tunes the Reflection loop.
type ReflectionConfig struct {
	MaxRefinements   int      `yaml:"max_refinements"`
	QualityThreshold int      `yaml:"quality_threshold"`
	Criteria         []string `yaml:"criteria,omitempty"`
}

// PlanExecuteConfig tunes the Plan-Execute loop.
type PlanExecuteConfig struct {
	// AllowReplan enables plan revision. Nil means true.
	AllowReplan *bool `yaml:"allow_replan,omitempty"`
}

// ReplanEnabled reports whether plan revision is on.
func (c PlanExecuteConfig) ReplanEnabled() bool {
	return c.AllowReplan == nil || *c.AllowReplan
}

// ModelConfig holds the parameters sent with every model request.
type ModelConfig struct {
	// Name overrides the model of every provider when set.
	Name        string   `yaml:"name"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature,omitempty"`

	// Stop lists sequences that end generation early.
	Stop []string `yaml:"stop,omitempty"`
}

// ProviderConfig declares one model provider. Providers are tried in order.
type ProviderConfig struct {
	Name string `yaml:"name"`

	// Type is anthropic or openai.
	Type string `yaml:"type"`

	// APIKey is the literal key. Prefer ${VAR} expansion or APIKeyEnv.
	APIKey string `yaml:"api_key,omitempty"`

	// APIKeyEnv names an environment variable holding the key.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// ToolsConfig lists the built-in tools exposed to the model.
type ToolsConfig struct {
	Enabled []string `yaml:"enabled"`
}

// StoreConfig selects where run records are persisted.
type StoreConfig struct {
	// Driver is sqlite or memory.
	Driver string `yaml:"driver"`

	// Path is the SQLite database file. A leading ~ expands to the home directory.
	Path string `yaml:"path"`
}

// TelemetryConfig groups metrics and tracing.
type TelemetryConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig toggles Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TracingConfig configures OTLP/HTTP trace export.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRate  float64 `yaml:"sample_rate"`
	ServiceName string  `yaml:"service_name"`
}

// ServerConfig configures the HTTP gateway.
type ServerConfig struct {
	Bind string     `yaml:"bind"`
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig protects the /v1 API. Empty means no authentication.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token,omitempty"`
	BasicUser   string `yaml:"basic_user,omitempty"`
	BasicPass   string `yaml:"basic_pass,omitempty"`
}

// IsEnabled reports whether any authentication is configured.
func (a AuthConfig) IsEnabled() bool {
	return a.BearerToken != "" || a.BasicUser != ""
}
