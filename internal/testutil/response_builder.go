package testutil

import (
	"fmt"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/model"
)

// ResponseBuilder provides a fluent helper for scripted model responses.
// Example:
//
//	resp := NewResponseBuilder().ToolCall("weather", `{"city":"Oslo"}`).Build()
type ResponseBuilder struct {
	content *string
	calls   []core.ToolCall
	finish  string
	usage   *model.TokenUsage
}

// NewResponseBuilder creates a builder for an empty response.
func NewResponseBuilder() *ResponseBuilder { return &ResponseBuilder{} }

// Text sets the assistant content (chainable).
func (b *ResponseBuilder) Text(t string) *ResponseBuilder { b.content = &t; return b }

// ToolCall adds a tool call with id call_<n> (chainable).
func (b *ResponseBuilder) ToolCall(name, args string) *ResponseBuilder {
	b.calls = append(b.calls, core.ToolCall{
		ID:        fmt.Sprintf("call_%d", len(b.calls)+1),
		Name:      name,
		Arguments: args,
	})
	return b
}

// Finish sets the finish reason (chainable).
func (b *ResponseBuilder) Finish(reason string) *ResponseBuilder { b.finish = reason; return b }

// Usage sets token usage (chainable).
func (b *ResponseBuilder) Usage(prompt, completion int) *ResponseBuilder {
	b.usage = &model.TokenUsage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: prompt + completion}
	return b
}

// Build returns the response. The finish reason defaults to "tool_calls" or
// "stop".
func (b *ResponseBuilder) Build() *model.Response {
	finish := b.finish
	if finish == "" {
		finish = "stop"
		if len(b.calls) > 0 {
			finish = "tool_calls"
		}
	}

	return &model.Response{
		Content:      b.content,
		ToolCalls:    append([]core.ToolCall(nil), b.calls...),
		FinishReason: finish,
		Usage:        b.usage,
	}
}
