package core

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	t.Run("transport error matches kind and cause", func(t *testing.T) {
		err := NewTransportError("status 500", io.ErrUnexpectedEOF)

		assert.True(t, errors.Is(err, ErrTransport))
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
		assert.False(t, errors.Is(err, ErrConfiguration))
		assert.Equal(t, "AI API Error: status 500: unexpected EOF", err.Error())
	})

	t.Run("wrapped errors keep their kind", func(t *testing.T) {
		err := errors.Join(errors.New("outer"), NewConfigurationError("model is required"))

		var typed *Error
		require.True(t, errors.As(err, &typed))
		assert.Equal(t, "model is required", typed.Message)
		assert.True(t, errors.Is(err, ErrConfiguration))
	})

	t.Run("fatality", func(t *testing.T) {
		assert.True(t, IsFatal(NewConfigurationError("x")))
		assert.True(t, IsFatal(NewToolResolutionError("tool-call budget exhausted")))
		assert.False(t, IsFatal(NewToolExecutionError("calc", errors.New("boom"))))
		assert.False(t, IsFatal(NewFormatError(errors.New("bad json"))))
		assert.False(t, IsFatal(nil))
	})
}

func TestToolRoundBudget(t *testing.T) {
	b := NewToolRoundBudget(0)
	assert.Equal(t, 1, b.Remaining())

	require.NoError(t, b.Consume())
	assert.Equal(t, 1, b.Used())
	assert.Equal(t, 0, b.Remaining())

	err := b.Consume()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolResolution))
	assert.Contains(t, err.Error(), "tool-call budget exhausted")
}

func TestToolContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	tc := NewToolContext(ctx, "thread-1", "call-1", "lookup", nil)

	assert.Equal(t, "v", tc.Context().Value(key{}))
	assert.Equal(t, "thread-1", tc.ThreadID())
	assert.Equal(t, "call-1", tc.FunctionCallID())
	assert.Equal(t, "lookup", tc.ToolName())
	assert.NotNil(t, tc.Logger())
	assert.NotEmpty(t, NewID())
}
