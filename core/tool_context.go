package core

import (
	"context"

	"github.com/hupe1980/agentloop/logging"
)

// ToolContext provides a constrained surface for tool implementations invoked
// during a turn: the turn's context, the originating call id and a logger.
// It does not expose conversation memory; tools see only their arguments.
type ToolContext struct {
	ctx            context.Context
	threadID       string
	functionCallID string
	toolName       string
	logger         logging.Logger
}

// NewToolContext constructs a tool context for one tool call.
func NewToolContext(ctx context.Context, threadID, functionCallID, toolName string, logger logging.Logger) *ToolContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ToolContext{
		ctx:            ctx,
		threadID:       threadID,
		functionCallID: functionCallID,
		toolName:       toolName,
		logger:         newScopedLogger(logger, "thread", threadID, "fc_id", functionCallID),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// ThreadID returns the conversation thread the call belongs to.
func (tc *ToolContext) ThreadID() string { return tc.threadID }

// FunctionCallID returns the id correlating the model request and the result.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// ToolName returns the name the model used to request the tool.
func (tc *ToolContext) ToolName() string { return tc.toolName }

// Logger returns a logger that tags every event with the thread and call id.
func (tc *ToolContext) Logger() logging.Logger { return tc.logger }
