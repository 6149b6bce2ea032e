package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/core"
)

func TestHistoryBuilder(t *testing.T) {
	msgs := NewHistoryBuilder().
		System("sys").
		User("weather?").
		ToolCall("weather", `{"city":"Oslo"}`).
		ToolResult("weather", "rainy").
		Assistant("It rains.").
		Build()

	assert.Equal(t, []core.Role{core.RoleSystem, core.RoleUser, core.RoleAssistant, core.RoleTool, core.RoleAssistant}, Roles(msgs))

	call, ok := msgs[2].(core.AssistantMessage)
	require.True(t, ok)
	require.Len(t, call.ToolCalls, 1)
	assert.Equal(t, "call_1", call.ToolCalls[0].ID)

	result, ok := msgs[3].(core.ToolMessage)
	require.True(t, ok)
	assert.Equal(t, "call_1", result.ToolCallID)
}

func TestHistoryBuilder_Turns(t *testing.T) {
	msgs := NewHistoryBuilder().Turns(2).Build()
	assert.Equal(t, []string{"u1", "a1", "u2", "a2"}, Texts(msgs))
}

func TestResponseBuilder(t *testing.T) {
	resp := NewResponseBuilder().ToolCall("a", `{}`).ToolCall("b", `{"x":1}`).Usage(3, 4).Build()

	require.Len(t, resp.ToolCalls, 2)
	assert.Equal(t, "call_2", resp.ToolCalls[1].ID)
	assert.Equal(t, "tool_calls", resp.FinishReason)
	assert.Nil(t, resp.Content)
	assert.Equal(t, 7, resp.Usage.TotalTokens)

	text := NewResponseBuilder().Text("done").Build()
	assert.Equal(t, "done", text.Text())
	assert.Equal(t, "stop", text.FinishReason)
}
