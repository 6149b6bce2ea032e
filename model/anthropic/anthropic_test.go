package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/model"
)

func TestGenerate(t *testing.T) {
	var body map[string]any
	var apiKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		apiKey = r.Header.Get("X-Api-Key")
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [
				{"type": "text", "text": "Let me check."},
				{"type": "tool_use", "id": "toolu_1", "name": "lookup", "input": {"q": "go"}}
			],
			"stop_reason": "tool_use",
			"usage": {"input_tokens": 7, "output_tokens": 3}
		}`))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) { o.BaseURL = srv.URL })

	resp, err := m.Generate(context.Background(), model.Request{
		Model:       "claude-3-5-haiku-latest",
		APIKey:      "ak-test",
		Temperature: 0.5,
		MaxTokens:   128,
		Messages: []core.Message{
			core.NewSystemMessage("be brief"),
			core.NewUserMessage("hi"),
		},
		Tools: []model.ToolSpec{{Type: "function", Function: model.FunctionSpec{
			Name:        "lookup",
			Description: "Look something up",
			Parameters:  map[string]any{"type": "object", "properties": map[string]any{"q": map[string]any{"type": "string"}}, "required": []string{"q"}},
		}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "ak-test", apiKey)
	assert.Equal(t, "claude-3-5-haiku-latest", body["model"])
	assert.Equal(t, 128.0, body["max_tokens"])
	assert.Len(t, body["tools"], 1)
	assert.Len(t, body["messages"], 1)

	assert.Equal(t, "Let me check.", resp.Text())
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "toolu_1", resp.ToolCalls[0].ID)
	assert.JSONEq(t, `{"q":"go"}`, resp.ToolCalls[0].Arguments)
	assert.Equal(t, "tool_use", resp.FinishReason)
	assert.Equal(t, 10, resp.Usage.TotalTokens)
}

func TestGenerate_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	_, err := NewModel(func(o *Options) { o.BaseURL = srv.URL }).Generate(context.Background(), model.Request{Model: "claude", APIKey: "bad"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTransport))
}

func TestBuildMessages_ToolResultsInUserMessage(t *testing.T) {
	msgs := buildMessages([]core.Message{
		core.NewSystemMessage("sys"),
		core.NewUserMessage("weather?"),
		core.NewToolCallMessage(nil, []core.ToolCall{
			{ID: "t1", Name: "a", Arguments: `{"x":1}`},
			{ID: "t2", Name: "b", Arguments: ""},
		}),
		core.NewToolMessage("t1", "a", "one"),
		core.NewToolMessage("t2", "b", "two"),
	})

	require.Len(t, msgs, 3)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
	assert.Len(t, msgs[1].Content, 2)
	assert.Equal(t, "user", string(msgs[2].Role))
	assert.Len(t, msgs[2].Content, 2)
}
