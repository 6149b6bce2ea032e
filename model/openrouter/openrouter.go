// Package openrouter implements model.Model over the OpenAI-compatible chat
// completions wire format served by OpenRouter. Requests go through a
// transport.Transport so the HTTP layer stays swappable and testable.
package openrouter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/transport"
)

const (
	DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	DefaultReferer  = "https://nodered.org/"
	DefaultTitle    = "Node-RED AI Agent"
)

// Options configure the OpenRouter model adapter.
type Options struct {
	// Endpoint is the chat completions URL.
	Endpoint string
	// Referer and Title are sent as the HTTP-Referer and X-Title
	// identification headers.
	Referer string
	Title   string
	// Transport performs the HTTP exchange. Defaults to transport.NewHTTP().
	Transport transport.Transport
}

// Model wraps the chat completions endpoint behind the generic model.Model interface.
type Model struct {
	opts Options
}

// NewModel creates a new OpenRouter model.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Endpoint: DefaultEndpoint,
		Referer:  DefaultReferer,
		Title:    DefaultTitle,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Transport == nil {
		opts.Transport = transport.NewHTTP()
	}

	return &Model{opts: opts}
}

// Generate performs one chat completion call.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	body, err := encodeRequest(req)
	if err != nil {
		return nil, core.NewTransportError("encode request", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+req.APIKey)
	header.Set("Content-Type", "application/json")
	if m.opts.Referer != "" {
		header.Set("HTTP-Referer", m.opts.Referer)
	}
	if m.opts.Title != "" {
		header.Set("X-Title", m.opts.Title)
	}

	resp, err := m.opts.Transport.Do(ctx, &transport.Request{
		Method:  http.MethodPost,
		URL:     m.opts.Endpoint,
		Header:  header,
		Body:    body,
		Timeout: req.Timeout,
	})
	if err != nil {
		return nil, core.NewTransportError("request failed", err)
	}

	if !resp.OK() {
		if msg := errorMessage(resp.Body); msg != "" {
			return nil, core.NewTransportError(msg, nil)
		}
		return nil, core.NewTransportError(fmt.Sprintf("Request failed with status code %d", resp.StatusCode), nil)
	}

	return decodeResponse(resp.Body)
}

// Info returns metadata describing this model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Endpoint,
		Provider:      "openrouter",
		SupportsTools: true,
	}
}
