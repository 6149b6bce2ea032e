package gemini

import (
	"context"

	"google.golang.org/genai"
)

// Client is the subset of the Gemini SDK used by the adapter. It allows the
// SDK to be replaced in tests.
type Client interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientFactory creates a client bound to an API key.
type ClientFactory func(ctx context.Context, apiKey string) (Client, error)

type sdkClient struct {
	client *genai.Client
}

func (c *sdkClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}

// NewSDKClientFactory returns a factory creating Gemini API clients. A
// non-empty baseURL overrides the API endpoint.
func NewSDKClientFactory(baseURL string) ClientFactory {
	return func(ctx context.Context, apiKey string) (Client, error) {
		cfg := &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		}
		if baseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
		}

		client, err := genai.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}

		return &sdkClient{client: client}, nil
	}
}
