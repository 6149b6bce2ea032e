package testutil

import (
	"fmt"

	"github.com/hupe1980/agentloop/core"
)

// HistoryBuilder helps construct message histories with fluent chaining.
// Example:
//
//	msgs := NewHistoryBuilder().User("hi").Assistant("hello").Build()
//
// Tool calls get deterministic ids (call_1, call_2, ...) so a following
// ToolResult can refer to the most recent call.
type HistoryBuilder struct {
	msgs   []core.Message
	calls  int
	lastID string
}

// NewHistoryBuilder creates an empty builder.
func NewHistoryBuilder() *HistoryBuilder { return &HistoryBuilder{} }

// System appends a system message (chainable).
func (b *HistoryBuilder) System(text string) *HistoryBuilder {
	b.msgs = append(b.msgs, core.NewSystemMessage(text))
	return b
}

// User appends a user message (chainable).
func (b *HistoryBuilder) User(text string) *HistoryBuilder {
	b.msgs = append(b.msgs, core.NewUserMessage(text))
	return b
}

// Assistant appends a plain assistant message (chainable).
func (b *HistoryBuilder) Assistant(text string) *HistoryBuilder {
	b.msgs = append(b.msgs, core.NewAssistantMessage(text))
	return b
}

// ToolCall appends an assistant message requesting one tool call with raw
// JSON arguments (chainable).
func (b *HistoryBuilder) ToolCall(name, args string) *HistoryBuilder {
	b.calls++
	b.lastID = fmt.Sprintf("call_%d", b.calls)
	b.msgs = append(b.msgs, core.NewToolCallMessage(nil, []core.ToolCall{{ID: b.lastID, Name: name, Arguments: args}}))
	return b
}

// ToolResult appends the tool message answering the most recent ToolCall
// (chainable).
func (b *HistoryBuilder) ToolResult(name, content string) *HistoryBuilder {
	b.msgs = append(b.msgs, core.NewToolMessage(b.lastID, name, content))
	return b
}

// Turns appends n user/assistant pairs "u<i>"/"a<i>" (chainable).
func (b *HistoryBuilder) Turns(n int) *HistoryBuilder {
	for i := 1; i <= n; i++ {
		b.User(fmt.Sprintf("u%d", i)).Assistant(fmt.Sprintf("a%d", i))
	}
	return b
}

// Build returns a copy of the collected messages.
func (b *HistoryBuilder) Build() []core.Message {
	return append([]core.Message{}, b.msgs...)
}

// Texts returns the text of each message.
func Texts(msgs []core.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text()
	}
	return out
}

// Roles returns the role of each message.
func Roles(msgs []core.Message) []core.Role {
	out := make([]core.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role()
	}
	return out
}
