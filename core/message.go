package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role tags the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents one conversation entry. Concrete message types implement
// the unexported isMessage marker enabling a closed set: tool calls can only
// ride on an AssistantMessage and a tool call id only on a ToolMessage.
type Message interface {
	Role() Role
	// Text returns the textual content, or "" when the message carries none.
	Text() string
	Time() time.Time
	isMessage()
}

// ToolCall describes a tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON text as emitted by the model
}

// SystemMessage carries the system instructions of a prompt.
type SystemMessage struct {
	Content   string
	Timestamp time.Time
}

func (SystemMessage) Role() Role        { return RoleSystem }
func (m SystemMessage) Text() string    { return m.Content }
func (m SystemMessage) Time() time.Time { return m.Timestamp }
func (SystemMessage) isMessage()        {}

// UserMessage is caller input.
type UserMessage struct {
	Content   string
	Timestamp time.Time
}

func (UserMessage) Role() Role        { return RoleUser }
func (m UserMessage) Text() string    { return m.Content }
func (m UserMessage) Time() time.Time { return m.Timestamp }
func (UserMessage) isMessage()        {}

// AssistantMessage is a model reply. Content is nil when the model answered
// with tool calls only.
type AssistantMessage struct {
	Content   *string
	ToolCalls []ToolCall
	Timestamp time.Time
}

func (AssistantMessage) Role() Role { return RoleAssistant }

func (m AssistantMessage) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

func (m AssistantMessage) Time() time.Time { return m.Timestamp }
func (AssistantMessage) isMessage()        {}

// HasToolCalls reports whether the model requested at least one tool.
func (m AssistantMessage) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// ToolMessage carries the result of one tool call back to the model.
type ToolMessage struct {
	ToolCallID string
	Name       string
	Content    string
	Timestamp  time.Time
}

func (ToolMessage) Role() Role        { return RoleTool }
func (m ToolMessage) Text() string    { return m.Content }
func (m ToolMessage) Time() time.Time { return m.Timestamp }
func (ToolMessage) isMessage()        {}

// NewSystemMessage creates a system message stamped with the current time.
func NewSystemMessage(content string) SystemMessage {
	return SystemMessage{Content: content, Timestamp: time.Now().UTC()}
}

// NewUserMessage creates a user message stamped with the current time.
func NewUserMessage(content string) UserMessage {
	return UserMessage{Content: content, Timestamp: time.Now().UTC()}
}

// NewAssistantMessage creates a plain-text assistant message.
func NewAssistantMessage(content string) AssistantMessage {
	return AssistantMessage{Content: &content, Timestamp: time.Now().UTC()}
}

// NewToolCallMessage creates an assistant message requesting tool calls.
func NewToolCallMessage(content *string, calls []ToolCall) AssistantMessage {
	return AssistantMessage{Content: content, ToolCalls: append([]ToolCall(nil), calls...), Timestamp: time.Now().UTC()}
}

// NewToolMessage creates the result message for the tool call with the given id.
func NewToolMessage(toolCallID, name, content string) ToolMessage {
	return ToolMessage{ToolCallID: toolCallID, Name: name, Content: content, Timestamp: time.Now().UTC()}
}

// Envelope is the persisted JSON shape of a Message. Stores use it so that
// every backend shares one durable representation.
type Envelope struct {
	Role       Role       `json:"role"`
	Content    *string    `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToEnvelope converts a Message into its persisted shape.
func ToEnvelope(m Message) Envelope {
	switch v := m.(type) {
	case SystemMessage:
		return Envelope{Role: RoleSystem, Content: &v.Content, Timestamp: v.Timestamp}
	case UserMessage:
		return Envelope{Role: RoleUser, Content: &v.Content, Timestamp: v.Timestamp}
	case AssistantMessage:
		return Envelope{Role: RoleAssistant, Content: v.Content, Timestamp: v.Timestamp, ToolCalls: v.ToolCalls}
	case ToolMessage:
		return Envelope{Role: RoleTool, Content: &v.Content, Timestamp: v.Timestamp, ToolCallID: v.ToolCallID, Name: v.Name}
	default:
		return Envelope{Role: m.Role(), Timestamp: m.Time()}
	}
}

// Message converts the envelope back into its typed variant. Unknown roles and
// fields that do not belong to the role are reported as configuration errors.
func (e Envelope) Message() (Message, error) {
	text := ""
	if e.Content != nil {
		text = *e.Content
	}

	if len(e.ToolCalls) > 0 && e.Role != RoleAssistant {
		return nil, NewConfigurationError(fmt.Sprintf("malformed memory: tool_calls on %q message", e.Role))
	}
	if e.ToolCallID != "" && e.Role != RoleTool {
		return nil, NewConfigurationError(fmt.Sprintf("malformed memory: tool_call_id on %q message", e.Role))
	}

	switch e.Role {
	case RoleSystem:
		return SystemMessage{Content: text, Timestamp: e.Timestamp}, nil
	case RoleUser:
		return UserMessage{Content: text, Timestamp: e.Timestamp}, nil
	case RoleAssistant:
		return AssistantMessage{Content: e.Content, ToolCalls: e.ToolCalls, Timestamp: e.Timestamp}, nil
	case RoleTool:
		return ToolMessage{ToolCallID: e.ToolCallID, Name: e.Name, Content: text, Timestamp: e.Timestamp}, nil
	default:
		return nil, NewConfigurationError(fmt.Sprintf("malformed memory: unknown role %q", e.Role))
	}
}

// EncodeMessages serializes a history as a JSON array of envelopes.
func EncodeMessages(msgs []Message) ([]byte, error) {
	envs := make([]Envelope, len(msgs))
	for i, m := range msgs {
		envs[i] = ToEnvelope(m)
	}
	return json.Marshal(envs)
}

// DecodeMessages parses a JSON array of envelopes. Empty input yields an empty
// history.
func DecodeMessages(data []byte) ([]Message, error) {
	if len(data) == 0 {
		return []Message{}, nil
	}

	var envs []Envelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, &Error{Kind: ErrConfiguration, Message: "malformed memory", Cause: err}
	}

	return FromEnvelopes(envs)
}

// FromEnvelopes converts persisted envelopes into typed messages.
func FromEnvelopes(envs []Envelope) ([]Message, error) {
	msgs := make([]Message, 0, len(envs))
	for _, e := range envs {
		m, err := e.Message()
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
