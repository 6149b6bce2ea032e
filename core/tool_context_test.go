package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/logging"
)

type recordingLogger struct {
	entries [][]any
}

func (r *recordingLogger) record(msg string, args []any) {
	r.entries = append(r.entries, append([]any{msg}, args...))
}

func (r *recordingLogger) Debug(msg string, args ...any) { r.record(msg, args) }
func (r *recordingLogger) Info(msg string, args ...any)  { r.record(msg, args) }
func (r *recordingLogger) Warn(msg string, args ...any)  { r.record(msg, args) }
func (r *recordingLogger) Error(msg string, args ...any) { r.record(msg, args) }

func TestToolContext_LoggerTagsThreadAndCall(t *testing.T) {
	rec := &recordingLogger{}
	tc := NewToolContext(context.Background(), "thread-1", "call_1", "weather", rec)

	tc.Logger().Info("tool.http.request", "url", "https://example.com")

	require.Len(t, rec.entries, 1)
	assert.Equal(t, []any{"tool.http.request", "thread", "thread-1", "fc_id", "call_1", "url", "https://example.com"}, rec.entries[0])

	assert.Equal(t, "thread-1", tc.ThreadID())
	assert.Equal(t, "call_1", tc.FunctionCallID())
	assert.Equal(t, "weather", tc.ToolName())
}

func TestToolContext_Defaults(t *testing.T) {
	var ctx context.Context
	tc := NewToolContext(ctx, "t", "c", "x", nil)

	assert.NotNil(t, tc.Context())
	assert.IsType(t, logging.NoOpLogger{}, tc.Logger())
	assert.NotPanics(t, func() { tc.Logger().Error("ignored") })
}
