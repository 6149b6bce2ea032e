package core

// ToolInvocation records one resolved tool call of a turn.
type ToolInvocation struct {
	CallID    string         `json:"call_id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	Result    any            `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Failed reports whether the invocation produced an error payload.
func (t ToolInvocation) Failed() bool { return t.Error != "" }

// Result is the outcome of one orchestrated turn.
type Result struct {
	FinalText       string           `json:"final_text"`
	TurnsUsed       int              `json:"turns_used"` // remote model calls made
	ToolInvocations []ToolInvocation `json:"tool_invocations,omitempty"`
}
