package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/core"
)

func TestFormatter_Text(t *testing.T) {
	f, err := NewFormatter("", "Bot")
	require.NoError(t, err)
	assert.Equal(t, "text", f.ResponseType())
	assert.Equal(t, "hi", f.Format("q", "hi", 2))
}

func TestFormatter_Object(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	f, err := NewFormatter("object", "Bot", func(o *FormatterOptions) {
		o.Now = func() time.Time { return fixed }
	})
	require.NoError(t, err)

	got := f.Format(map[string]any{"q": 1}, "answer", 4)
	payload, ok := got.(ObjectPayload)
	require.True(t, ok)

	assert.Equal(t, "Bot", payload.Agent)
	assert.Equal(t, "ai", payload.Type)
	assert.Equal(t, map[string]any{"q": 1}, payload.Input)
	assert.Equal(t, "answer", payload.Response)
	assert.Equal(t, "2025-01-02T03:04:05Z", payload.Timestamp)
	assert.Equal(t, 4, payload.Context.ConversationLength)
	assert.Equal(t, payload.Timestamp, payload.Context.LastInteraction)
}

func TestFormatter_JSON(t *testing.T) {
	f, err := NewFormatter("json", "Bot")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"a": 1.0}, f.Format(nil, `{"a":1}`, 0))
	assert.Equal(t, []any{"x"}, f.Format(nil, "```json\n[\"x\"]\n```", 0))
	assert.Equal(t, "not json", f.Format(nil, "not json", 0))
}

func TestFormatter_UnknownType(t *testing.T) {
	_, err := NewFormatter("xml", "Bot")
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestParseJSON_FormatError(t *testing.T) {
	_, err := ParseJSON("{")
	assert.ErrorIs(t, err, core.ErrFormat)
	assert.False(t, core.IsFatal(err))
}
