package tool

import (
	"fmt"
	"runtime/debug"

	"github.com/hupe1980/agentloop/core"
)

// PanicError is returned by Execute when a tool panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string { return fmt.Sprintf("panic recovered: %v", p.Value) }

// Execute runs t with panic safety: a panicking tool yields a *ToolError with
// code PANIC wrapping the recovered value instead of crashing the turn.
func Execute(t Tool, toolCtx *core.ToolContext, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			perr := &PanicError{Value: r, Stack: debug.Stack()}
			toolCtx.Logger().Error("tool.call.panic", "tool", t.Name(), "recover", r)
			err = &ToolError{Tool: t.Name(), Message: perr.Error(), Code: CodePanic, Details: perr}
			result = nil
		}
	}()

	return t.Call(toolCtx, args)
}
