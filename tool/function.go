package tool

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/internal/util"
)

// FunctionTool exposes a plain Go function as a tool.
//
// Arguments are validated against the declared schema before the function
// runs. Failures are normalized to *ToolError:
//
//	VALIDATION_ERROR -> schema / argument mismatch
//	EXECUTION_ERROR  -> the function returned a non-ToolError error
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	sumTool := NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(tc *core.ToolContext, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// util.CreateSchema.
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// Name returns the unique tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the declared schema then invokes the function.
// Errors are always *ToolError.
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()

	if err := t.validate(args); err != nil {
		logger.Warn("tool.function.invalid", "tool", t.name, "error", err.Message)
		return nil, err
	}

	start := time.Now()
	result, err := t.fn(toolCtx, args)
	if err != nil {
		toolErr := t.normalize(err)
		logger.Warn("tool.function.failed", "tool", t.name, "code", toolErr.Code, "error", toolErr.Message)
		return nil, toolErr
	}

	logger.Debug("tool.function.done", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

func (t *FunctionTool) validate(args map[string]any) *ToolError {
	if t.parameters == nil {
		return nil
	}

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		return &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}
	}

	return nil
}

// normalize keeps a *ToolError returned by the function and wraps anything
// else as an execution error.
func (t *FunctionTool) normalize(err error) *ToolError {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr
	}

	return &ToolError{Tool: t.name, Message: err.Error(), Code: CodeExecution, Details: err}
}
