package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/core"
)

func TestMockModel_Canned(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.AddResponse("ping", "pong")

	resp, err := m.Generate(context.Background(), Request{Messages: []core.Message{
		core.NewSystemMessage("sys"),
		core.NewUserMessage("ping"),
	}})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Text())

	resp, err = m.Generate(context.Background(), Request{Messages: []core.Message{core.NewUserMessage("other")}})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: other", resp.Text())
	assert.Equal(t, 2, m.Calls())
}

func TestMockModel_QueueAndRecord(t *testing.T) {
	m := NewMockModel("mock", "mock")
	boom := errors.New("boom")
	m.QueueResponse(ToolCallResponse(core.ToolCall{ID: "c1", Name: "t", Arguments: "{}"}))
	m.QueueError(boom)

	resp, err := m.Generate(context.Background(), Request{Model: "m", Tools: []ToolSpec{{Type: "function"}}})
	require.NoError(t, err)
	assert.Len(t, resp.ToolCalls, 1)
	assert.Nil(t, resp.Content)

	_, err = m.Generate(context.Background(), Request{Model: "m"})
	assert.ErrorIs(t, err, boom)

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.True(t, reqs[0].HasTools())
	assert.False(t, reqs[1].HasTools())
}

func TestMockModel_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockModel("mock", "mock").Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}
