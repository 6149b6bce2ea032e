package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/config"
	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/memory"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/model/openrouter"
	"github.com/hupe1980/agentloop/tool"
)

func TestAgent_EndToEnd(t *testing.T) {
	var calls atomic.Int32
	var body map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"This is a test response"}}]}`))
	}))
	defer srv.Close()

	m := openrouter.NewModel(func(o *openrouter.Options) { o.Endpoint = srv.URL })

	a, err := New(m, config.ModelConfig{Model: "m", APIKey: "k"}, func(o *Options) {
		o.Instruction = NewInstructionFromText("You are a test assistant.")
	})
	require.NoError(t, err)

	resp, err := a.Run(context.Background(), "thread-1", "Hello, AI")
	require.NoError(t, err)

	assert.Equal(t, "This is a test response", resp.Payload)
	assert.Equal(t, "This is a test response", resp.Text)
	assert.Equal(t, int32(1), calls.Load())

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, map[string]any{"role": "system", "content": "You are a test assistant."}, msgs[0])
	assert.Equal(t, map[string]any{"role": "user", "content": "Hello, AI"}, msgs[1])
}

func TestAgent_MemoryAppendsCompletedTurns(t *testing.T) {
	lookup := tool.NewFunctionTool("lookup", "", nil, func(*core.ToolContext, map[string]any) (any, error) {
		return "42", nil
	})

	m := model.NewMockModel("mock", "test")
	m.QueueResponse(model.ToolCallResponse(core.ToolCall{ID: "c1", Name: "lookup", Arguments: "{}"}))
	m.QueueResponse(model.TextResponse("The answer is 42"))
	m.QueueResponse(model.TextResponse("You asked about the answer"))

	store := memory.NewInMemoryStore()
	a, err := New(m, testConfig(), func(o *Options) {
		o.Tools = []tool.Tool{lookup}
		o.Memory = store
	})
	require.NoError(t, err)
	assert.True(t, a.HasMemory())
	assert.Equal(t, []string{"lookup"}, a.Tools())

	ctx := context.Background()

	resp, err := a.Run(ctx, "t1", "What is the answer?")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Result.TurnsUsed)
	assert.Equal(t, 2, resp.HistoryLen)

	history, err := a.History(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleUser, history[0].Role())
	assert.Equal(t, "What is the answer?", history[0].Text())
	assert.Equal(t, core.RoleAssistant, history[1].Role())
	assert.Equal(t, "The answer is 42", history[1].Text())

	_, err = a.Run(ctx, "t1", "What did I ask?")
	require.NoError(t, err)

	third := m.Requests()[2]
	require.Len(t, third.Messages, 4)
	assert.Equal(t, DefaultInstruction, third.Messages[0].Text())
	assert.Equal(t, "What is the answer?", third.Messages[1].Text())
	assert.Equal(t, "The answer is 42", third.Messages[2].Text())
	assert.Equal(t, "What did I ask?", third.Messages[3].Text())

	history, _ = a.History(ctx, "t1")
	assert.Len(t, history, 4)
}

func TestAgent_CapacityBoundsHistory(t *testing.T) {
	m := model.NewMockModel("mock", "test")
	store := memory.NewInMemoryStore()

	a, err := New(m, testConfig(), func(o *Options) {
		o.Memory = store
		o.Capacity = 3
	})
	require.NoError(t, err)

	for _, q := range []string{"one", "two", "three"} {
		_, err := a.Run(context.Background(), "t", q)
		require.NoError(t, err)
	}

	history, err := a.History(context.Background(), "t")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "Mock response to: two", history[0].Text())
	assert.Equal(t, "three", history[1].Text())
	assert.Equal(t, "Mock response to: three", history[2].Text())
}

func TestAgent_FailedTurnDoesNotTouchMemory(t *testing.T) {
	m := model.NewMockModel("mock", "test")
	m.QueueError(core.NewTransportError("Invalid API key", nil))

	store := memory.NewInMemoryStore()
	a, err := New(m, testConfig(), func(o *Options) { o.Memory = store })
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "t", "hi")
	require.Error(t, err)
	assert.Equal(t, "AI API Error: Invalid API key", err.Error())

	history, _ := store.Load(context.Background(), "t")
	assert.Empty(t, history)
	assert.Equal(t, 0, store.Threads())
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) ([]core.Message, error) {
	return nil, core.NewConfigurationError("malformed memory: unknown role \"robot\"")
}

func (brokenStore) Save(context.Context, string, []core.Message) error { return nil }

func TestAgent_MalformedMemory(t *testing.T) {
	m := model.NewMockModel("mock", "test")

	a, err := New(m, testConfig(), func(o *Options) { o.Memory = brokenStore{} })
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "t", "hi")
	assert.ErrorIs(t, err, core.ErrConfiguration)
	assert.Equal(t, 0, m.Calls())
}

func TestAgent_ConfigurationErrors(t *testing.T) {
	m := model.NewMockModel("mock", "test")

	dup := func() tool.Tool {
		return tool.NewFunctionTool("same", "", nil, func(*core.ToolContext, map[string]any) (any, error) { return nil, nil })
	}

	_, err := New(m, testConfig(), func(o *Options) { o.Tools = []tool.Tool{dup(), dup()} })
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = New(m, testConfig(), func(o *Options) { o.ResponseType = "yaml" })
	assert.ErrorIs(t, err, core.ErrConfiguration)

	a, err := New(m, config.ModelConfig{Model: "m"})
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "t", "hi")
	assert.ErrorIs(t, err, core.ErrConfiguration)
	assert.Equal(t, 0, m.Calls())
}

func TestAgent_ObjectPayloadAndDynamicInstruction(t *testing.T) {
	m := model.NewMockModel("mock", "test")
	m.AddResponse(`{"city":"Paris"}`, "Sunny")

	a, err := New(m, testConfig(), func(o *Options) {
		o.Name = "Weather Bot"
		o.ResponseType = config.ResponseObject
		o.Instruction = NewInstructionFromFunc(func(ic *InstructionContext) (string, error) {
			return "You are ${agent}. History: " + string(rune('0'+len(ic.History))), nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, "Weather Bot", a.Name())

	input := map[string]any{"city": "Paris"}
	resp, err := a.Run(context.Background(), "t", input)
	require.NoError(t, err)

	payload, ok := resp.Payload.(ObjectPayload)
	require.True(t, ok)
	assert.Equal(t, "Weather Bot", payload.Agent)
	assert.Equal(t, input, payload.Input)
	assert.Equal(t, "Sunny", payload.Response)
	assert.Equal(t, 2, payload.Context.ConversationLength)

	assert.Equal(t, "You are Weather Bot. History: 0", m.Requests()[0].Messages[0].Text())
}

func TestAgent_InstructionError(t *testing.T) {
	boom := errors.New("no instructions today")
	m := model.NewMockModel("mock", "test")

	a, err := New(m, testConfig(), func(o *Options) {
		o.Instruction = NewInstructionFromProvider(mockProvider{err: boom})
	})
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "t", "hi")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Calls())
}
