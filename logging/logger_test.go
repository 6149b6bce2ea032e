package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestTurnLogger_Attributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})

	l.WithComponent("loop").WithThread("t-1").With("agent", "tester").Info("loop.model.call", "round", 2)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "loop.model.call", lines[0]["msg"])
	assert.Equal(t, "loop", lines[0]["component"])
	assert.Equal(t, "t-1", lines[0]["thread_id"])
	assert.Equal(t, "tester", lines[0]["agent"])
	assert.Equal(t, float64(2), lines[0]["round"])
}

func TestTurnLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "json", Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestTurnLogger_DomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	l.LogToolCall("lookup", 5*time.Millisecond, false, errors.New("boom"))
	l.LogModelCall("m", 12, time.Millisecond, true, nil)
	l.LogTurn(2, 1, time.Millisecond, true, nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)
	assert.Equal(t, "tool.call.failed", lines[0]["msg"])
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, "boom", lines[0]["error"])
	assert.Equal(t, "model.call.completed", lines[1]["msg"])
	assert.Equal(t, "turn.completed", lines[2]["msg"])
}

func TestWithDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})
	_ = parent.With("child", true)

	parent.Info("plain")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	_, ok := lines[0]["child"]
	assert.False(t, ok)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel(" error "))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"))
}
