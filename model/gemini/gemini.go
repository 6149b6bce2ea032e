// Package gemini implements model.Model for Google Gemini through the
// google.golang.org/genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/model"
)

// Options configure the Gemini adapter.
type Options struct {
	// BaseURL overrides the API endpoint.
	BaseURL string
	// ClientFactory creates SDK clients per API key. Defaults to the real SDK.
	ClientFactory ClientFactory
	// Logger receives conversion warnings.
	Logger logging.Logger
}

// Model wraps the Gemini GenerateContent API. Clients are created lazily per
// API key and reused.
type Model struct {
	factory ClientFactory
	logger  logging.Logger

	mu      sync.Mutex
	clients map[string]Client
}

// NewModel creates a new Gemini model.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ClientFactory == nil {
		opts.ClientFactory = NewSDKClientFactory(opts.BaseURL)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Model{
		factory: opts.ClientFactory,
		logger:  opts.Logger,
		clients: make(map[string]Client),
	}
}

func (m *Model) client(ctx context.Context, apiKey string) (Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.clients[apiKey]; ok {
		return c, nil
	}

	c, err := m.factory(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	m.clients[apiKey] = c

	return c, nil
}

// Generate performs one GenerateContent call.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	client, err := m.client(ctx, req.APIKey)
	if err != nil {
		return nil, core.NewTransportError("create client", err)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	contents, system := toContents(req.Messages, m.logger)

	temperature := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       &temperature,
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.HasTools() {
		cfg.Tools = toTools(req.Tools)
		cfg.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto},
		}
	}

	resp, err := client.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return nil, core.NewTransportError(fmt.Sprintf("%s (code %d)", apiErr.Message, apiErr.Code), err)
		}
		return nil, core.NewTransportError("request failed", err)
	}

	return fromResponse(resp)
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          "generate-content",
		Provider:      "gemini",
		SupportsTools: true,
	}
}
