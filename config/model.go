package config

import (
	"fmt"
	"time"

	"github.com/hupe1980/agentloop/core"
)

// Provider names accepted in ModelConfig.Provider.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
	DefaultTimeout     = 60 * time.Second
)

// ModelConfig carries everything needed to call the remote model for a turn.
// APIKey is a secret: String redacts it and it is never logged.
type ModelConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key"`
	// Temperature is optional; nil means DefaultTemperature.
	Temperature *float64 `json:"temperature,omitempty"`
	// MaxTokens <= 0 means DefaultMaxTokens.
	MaxTokens      int    `json:"max_tokens"`
	Endpoint       string `json:"endpoint,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// DefaultModelConfig returns a config with provider, temperature and token
// defaults set. Model and APIKey must still be supplied.
func DefaultModelConfig() ModelConfig {
	t := DefaultTemperature
	return ModelConfig{
		Provider:    ProviderOpenRouter,
		Temperature: &t,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Float returns a pointer to v, for setting ModelConfig.Temperature.
func Float(v float64) *float64 { return &v }

// EffectiveTemperature returns the configured temperature or the default.
func (c ModelConfig) EffectiveTemperature() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

// EffectiveMaxTokens returns the configured token limit or the default.
func (c ModelConfig) EffectiveMaxTokens() int {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}

// EffectiveProvider returns the configured provider or openrouter.
func (c ModelConfig) EffectiveProvider() string {
	if c.Provider == "" {
		return ProviderOpenRouter
	}
	return c.Provider
}

// Timeout returns the per-call timeout.
func (c ModelConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the config before any remote call is attempted.
func (c ModelConfig) Validate() error {
	if c.Model == "" {
		return core.NewConfigurationError("model is required")
	}
	if c.APIKey == "" {
		return core.NewConfigurationError("api key is required")
	}
	if t := c.EffectiveTemperature(); t < 0 || t > 2 {
		return core.NewConfigurationError(fmt.Sprintf("temperature must be within [0, 2], got %g", t))
	}
	if c.MaxTokens < 0 {
		return core.NewConfigurationError(fmt.Sprintf("max tokens must be positive, got %d", c.MaxTokens))
	}
	switch c.EffectiveProvider() {
	case ProviderOpenRouter, ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return core.NewConfigurationError(fmt.Sprintf("unknown provider %q", c.Provider))
	}
	return nil
}

// String renders the config with the API key redacted.
func (c ModelConfig) String() string {
	key := ""
	if c.APIKey != "" {
		key = "***"
	}
	return fmt.Sprintf("ModelConfig{Provider:%s Model:%s APIKey:%s Temperature:%g MaxTokens:%d}",
		c.EffectiveProvider(), c.Model, key, c.EffectiveTemperature(), c.EffectiveMaxTokens())
}
