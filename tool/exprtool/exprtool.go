// Package exprtool provides a tool whose behavior is a user supplied
// expression over the call arguments. Expressions are compiled once at
// construction with expr-lang/expr and have no access to I/O; the arguments
// are visible as the variable "input".
//
// Examples:
//
//	input.a + input.b
//	{"city": upper(input.city), "days": input.days ?? 3}
//	filter(input.items, .price > 10)
package exprtool

import (
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/mitchellh/mapstructure"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/internal/util"
	"github.com/hupe1980/agentloop/tool"
)

// IdentityExpression is used when no expression is configured.
const IdentityExpression = "input"

// Config describes one expression tool.
type Config struct {
	Name        string         `mapstructure:"name"`
	Description string         `mapstructure:"description"`
	Expression  string         `mapstructure:"expression"`
	Parameters  map[string]any `mapstructure:"parameters"`
}

// Decode builds a Config from a loosely typed options map.
func Decode(options map[string]any) (Config, error) {
	var cfg Config
	if err := mapstructure.Decode(options, &cfg); err != nil {
		return Config{}, core.NewConfigurationError(fmt.Sprintf("invalid expression tool options: %v", err))
	}
	return cfg, nil
}

// Tool evaluates a compiled expression against the call arguments.
type Tool struct {
	cfg     Config
	program *vm.Program
}

var _ tool.Tool = (*Tool)(nil)

// New compiles cfg.Expression. A syntax error is a configuration error.
func New(cfg Config) (*Tool, error) {
	if cfg.Name == "" {
		return nil, core.NewConfigurationError("expression tool name is required")
	}

	source := strings.TrimSpace(cfg.Expression)
	if source == "" {
		source = IdentityExpression
	}

	program, err := expr.Compile(source, expr.Env(env(map[string]any{})))
	if err != nil {
		return nil, core.NewConfigurationError(fmt.Sprintf("expression tool %q: %v", cfg.Name, err))
	}

	cfg.Expression = source

	return &Tool{cfg: cfg, program: program}, nil
}

// Name returns the tool name.
func (t *Tool) Name() string { return t.cfg.Name }

// Description returns the configured description.
func (t *Tool) Description() string { return t.cfg.Description }

// Parameters returns the declared argument schema or an empty object schema.
func (t *Tool) Parameters() map[string]any {
	if t.cfg.Parameters == nil {
		return util.EmptyObjectSchema()
	}
	return t.cfg.Parameters
}

// Call evaluates the expression with args bound to "input".
func (t *Tool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}

	start := time.Now()

	out, err := expr.Run(t.program, env(args))
	if err != nil {
		toolCtx.Logger().Warn("tool.expr.failed", "tool", t.cfg.Name, "error", err.Error())

		return nil, &tool.ToolError{
			Tool:    t.cfg.Name,
			Message: err.Error(),
			Code:    tool.CodeExecution,
		}
	}

	toolCtx.Logger().Debug("tool.expr.evaluated", "tool", t.cfg.Name, "duration_ms", time.Since(start).Milliseconds())

	return out, nil
}

func env(input map[string]any) map[string]any {
	return map[string]any{"input": input}
}
