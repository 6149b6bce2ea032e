// Package tool implements the tool calling subsystem: the Tool interface the
// model can invoke, a FunctionTool adapter for plain Go functions, and the
// Registry that formats tools for transmission and resolves calls by name.
package tool

import (
	"fmt"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/internal/util"
)

// Tool is a named, schema-described capability the model may request.
//
// Implementations should:
//   - Provide clear, unique names and descriptions
//   - Define a JSON schema for parameters
//   - Return errors instead of panicking
//   - Be safe for concurrent use; different turns may share a tool
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description is provided to the model to help it decide when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with the decoded arguments. The result is sent back
	// to the model verbatim when it is a string and JSON-encoded otherwise.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// Error codes used by ToolError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodePanic      = "PANIC"
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Is reports ToolError as a tool execution error.
func (e *ToolError) Is(target error) bool { return target == core.ErrToolExecution }

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
