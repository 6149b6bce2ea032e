package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/agentloop/core"
)

func TestModelConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ModelConfig
		wantErr string
	}{
		{"minimal", ModelConfig{Model: "m", APIKey: "k"}, ""},
		{"missing model", ModelConfig{APIKey: "k"}, "model is required"},
		{"missing key", ModelConfig{Model: "m"}, "api key is required"},
		{"temperature too high", ModelConfig{Model: "m", APIKey: "k", Temperature: Float(2.5)}, "temperature"},
		{"negative tokens", ModelConfig{Model: "m", APIKey: "k", MaxTokens: -1}, "max tokens"},
		{"unknown provider", ModelConfig{Provider: "acme", Model: "m", APIKey: "k"}, "unknown provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			assert.True(t, errors.Is(err, core.ErrConfiguration))
		})
	}
}

func TestModelConfig_Defaults(t *testing.T) {
	cfg := ModelConfig{Model: "m", APIKey: "k"}

	assert.Equal(t, 0.7, cfg.EffectiveTemperature())
	assert.Equal(t, 1000, cfg.EffectiveMaxTokens())
	assert.Equal(t, ProviderOpenRouter, cfg.EffectiveProvider())
	assert.Equal(t, DefaultTimeout, cfg.Timeout())
}

func TestModelConfig_StringRedactsKey(t *testing.T) {
	cfg := ModelConfig{Model: "m", APIKey: "sk-secret"}

	assert.NotContains(t, cfg.String(), "sk-secret")
	assert.Contains(t, cfg.String(), "***")
}
