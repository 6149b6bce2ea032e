package model

import (
	"context"
	"time"

	"github.com/hupe1980/agentloop/core"
)

// ToolChoice signals whether the model may request tools.
type ToolChoice string

const (
	ToolChoiceAuto ToolChoice = "auto"
	ToolChoiceNone ToolChoice = "none"
)

// ToolSpec declaratively exposes a callable function to the model.
type ToolSpec struct {
	Type     string       `json:"type"` // "function"
	Function FunctionSpec `json:"function"`
}

// FunctionSpec describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object.
type FunctionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures one remote call. Per-call settings (model, key,
// temperature, token limit) travel with the request so one Model can serve
// many configurations.
type Request struct {
	Model       string
	APIKey      string `json:"-"`
	Temperature float64
	MaxTokens   int
	Messages    []core.Message
	Tools       []ToolSpec
	ToolChoice  ToolChoice
	Timeout     time.Duration
}

// HasTools reports whether tools are offered in this request.
func (r Request) HasTools() bool { return len(r.Tools) > 0 }

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the assistant message returned by one remote call.
type Response struct {
	ID           string          `json:"id,omitempty"`
	Content      *string         `json:"content"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason,omitempty"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage     `json:"usage,omitempty"`
}

// Text returns the content or "" when absent.
func (r *Response) Text() string {
	if r == nil || r.Content == nil {
		return ""
	}
	return *r.Content
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openrouter", "openai", "anthropic", "gemini", "mock"
	SupportsTools bool   `json:"supports_tools"`
}

// Model performs one remote completion. Implementations report network
// failures and unusable responses as errors; they never retry.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Func adapts a function to the Model interface.
type Func func(ctx context.Context, req Request) (*Response, error)

// Generate implements Model.
func (f Func) Generate(ctx context.Context, req Request) (*Response, error) { return f(ctx, req) }

// Info implements Model.
func (Func) Info() Info { return Info{Name: "func", Provider: "func", SupportsTools: true} }

// TextResponse builds a content-only response.
func TextResponse(text string) *Response {
	return &Response{Content: &text, FinishReason: "stop"}
}

// ToolCallResponse builds a response requesting the given tool calls.
func ToolCallResponse(calls ...core.ToolCall) *Response {
	return &Response{ToolCalls: calls, FinishReason: "tool_calls"}
}
