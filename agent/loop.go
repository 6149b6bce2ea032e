package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentloop/config"
	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/tool"
)

// DefaultMaxToolRounds is the number of tool-call rounds a turn may resolve
// before the continuation is sent without tools.
const DefaultMaxToolRounds = 1

// LoopOptions configures a Loop.
type LoopOptions struct {
	// MaxToolRounds bounds tool resolution per turn. Values below one select
	// DefaultMaxToolRounds.
	MaxToolRounds int
	// Logger receives loop events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Loop drives one turn: it calls the model, resolves requested tools
// sequentially, feeds their results back and returns the final text.
//
// States: build request -> await model -> (resolve tools -> build request)
// | done | failed. Tools stay offered while rounds remain; the continuation
// after the last permitted round is sent without them, and a response that
// still requests tools then fails the turn with a tool resolution error.
//
// A Loop holds no per-turn state and may serve concurrent turns.
type Loop struct {
	model     model.Model
	cfg       config.ModelConfig
	registry  *tool.Registry
	maxRounds int
	logger    logging.Logger
}

// modelCallLogger is implemented by loggers with a dedicated model call event
// (logging.TurnLogger).
type modelCallLogger interface {
	LogModelCall(model string, tokens int, dur time.Duration, success bool, err error)
}

// toolCallLogger is implemented by loggers with a dedicated tool call event.
type toolCallLogger interface {
	LogToolCall(tool string, dur time.Duration, success bool, err error)
}

// NewLoop creates a loop for one model configuration. A nil registry offers
// no tools.
func NewLoop(m model.Model, cfg config.ModelConfig, registry *tool.Registry, optFns ...func(o *LoopOptions)) *Loop {
	opts := LoopOptions{
		MaxToolRounds: DefaultMaxToolRounds,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxToolRounds < 1 {
		opts.MaxToolRounds = DefaultMaxToolRounds
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Loop{
		model:     m,
		cfg:       cfg,
		registry:  registry,
		maxRounds: opts.MaxToolRounds,
		logger:    opts.Logger,
	}
}

// MaxToolRounds returns the configured tool round budget.
func (l *Loop) MaxToolRounds() int { return l.maxRounds }

// Run executes the turn for prompt. The prompt is not modified. On failure
// no partial result is returned.
func (l *Loop) Run(ctx context.Context, threadID string, prompt []core.Message) (*core.Result, error) {
	if err := l.cfg.Validate(); err != nil {
		return nil, err
	}

	if l.model == nil {
		return nil, core.NewConfigurationError("model is not configured")
	}

	messages := append([]core.Message(nil), prompt...)
	specs := l.registry.Specs()
	budget := core.NewToolRoundBudget(l.maxRounds)
	offerTools := len(specs) > 0
	result := &core.Result{}

	for {
		req := model.Request{
			Model:       l.cfg.Model,
			APIKey:      l.cfg.APIKey,
			Temperature: l.cfg.EffectiveTemperature(),
			MaxTokens:   l.cfg.EffectiveMaxTokens(),
			Messages:    messages,
			Timeout:     l.cfg.Timeout(),
		}

		if offerTools {
			req.Tools = specs
			req.ToolChoice = l.registry.ToolChoice()
		} else {
			req.ToolChoice = model.ToolChoiceNone
		}

		resp, err := l.generate(ctx, req)
		result.TurnsUsed++
		if err != nil {
			return nil, err
		}

		text := strings.TrimSpace(resp.Text())

		if len(resp.ToolCalls) == 0 || len(specs) == 0 {
			result.FinalText = text
			return result, nil
		}

		// Tool calls on a request that offered no tools: keep the answer when
		// there is one, otherwise fail closed below.
		if !offerTools && text != "" {
			l.logger.Warn("loop.tools.ignored",
				"thread", threadID,
				"rounds", budget.Used(),
				"requested", len(resp.ToolCalls),
			)
			result.FinalText = text
			return result, nil
		}

		if err := budget.Consume(); err != nil {
			l.logger.Error("loop.tools.budget_exhausted",
				"thread", threadID,
				"rounds", budget.Used(),
				"requested", len(resp.ToolCalls),
			)
			return nil, err
		}

		messages = append(messages, core.NewToolCallMessage(resp.Content, resp.ToolCalls))

		for _, call := range resp.ToolCalls {
			inv, content := l.resolve(ctx, threadID, call)
			result.ToolInvocations = append(result.ToolInvocations, inv)
			messages = append(messages, core.NewToolMessage(call.ID, call.Name, content))
		}

		offerTools = budget.Remaining() > 0

		l.logger.Debug("loop.tools.round",
			"thread", threadID,
			"round", budget.Used(),
			"calls", len(resp.ToolCalls),
			"tools_offered_next", offerTools,
		)
	}
}

// generate performs one remote call. Errors that are not already typed are
// reported as transport errors.
func (l *Loop) generate(ctx context.Context, req model.Request) (*model.Response, error) {
	start := time.Now()

	l.logger.Debug("loop.model.call",
		"model", req.Model,
		"messages", len(req.Messages),
		"tools", len(req.Tools),
	)

	resp, err := l.model.Generate(ctx, req)
	if err == nil && resp == nil {
		err = core.NewTransportError("empty response", nil)
	}

	if err != nil {
		var typed *core.Error
		if !errors.As(err, &typed) {
			err = core.NewTransportError("model call failed", err)
		}
	}

	tokens := 0
	if resp != nil && resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}

	if ml, ok := l.logger.(modelCallLogger); ok {
		ml.LogModelCall(req.Model, tokens, time.Since(start), err == nil, err)
	} else if err != nil {
		l.logger.Error("loop.model.failed", "model", req.Model, "error", err.Error())
	}

	return resp, err
}

// resolve handles one tool call and returns its record plus the content of
// the tool message sent back to the model. Failures never escape: they
// become {"error": ...} payloads.
func (l *Loop) resolve(ctx context.Context, threadID string, call core.ToolCall) (core.ToolInvocation, string) {
	inv := core.ToolInvocation{
		CallID:    call.ID,
		Name:      call.Name,
		Arguments: map[string]any{},
	}

	// Unparseable arguments fall back to {}; an unknown tool is reported as
	// not found regardless of its arguments.
	args, parseErr := parseArguments(call.Arguments)
	inv.Arguments = args

	t, ok := l.registry.Lookup(call.Name)
	if !ok {
		inv.Error = fmt.Sprintf("Tool '%s' not found", call.Name)
		l.logger.Warn("loop.tool.not_found", "thread", threadID, "tool", call.Name, "fc_id", call.ID)
		return inv, errorPayload(inv.Error)
	}

	if parseErr != nil {
		rerr := core.NewToolResolutionError(fmt.Sprintf("invalid arguments for tool '%s': %v", call.Name, parseErr))
		l.logger.Warn("loop.tool.bad_arguments", "thread", threadID, "tool", call.Name, "fc_id", call.ID, "error", rerr.Error())
		inv.Error = rerr.Error()
		return inv, errorPayload(inv.Error)
	}

	toolCtx := core.NewToolContext(ctx, threadID, call.ID, call.Name, l.logger)
	start := time.Now()

	out, err := tool.Execute(t, toolCtx, args)

	if tl, ok := l.logger.(toolCallLogger); ok {
		tl.LogToolCall(call.Name, time.Since(start), err == nil, err)
	}

	if err != nil {
		msg := err.Error()
		var toolErr *tool.ToolError
		if errors.As(err, &toolErr) {
			msg = toolErr.Message
		}

		l.logger.Warn("loop.tool.failed", "thread", threadID, "tool", call.Name, "fc_id", call.ID, "error", msg)

		inv.Error = msg
		return inv, errorPayload(msg)
	}

	l.logger.Debug("loop.tool.executed", "thread", threadID, "tool", call.Name, "fc_id", call.ID)

	inv.Result = out

	content, err := encodeResult(out)
	if err != nil {
		inv.Error = err.Error()
		return inv, errorPayload(inv.Error)
	}

	return inv, content
}

// parseArguments decodes the raw argument text. Blank text is an empty
// object; JSON null is an empty object too.
func parseArguments(raw string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}

	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{}, err
	}

	if args == nil {
		args = map[string]any{}
	}

	return args, nil
}

// encodeResult renders a tool result as message content: strings verbatim,
// everything else as JSON.
func encodeResult(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("tool result is not JSON encodable: %w", err)
	}

	return string(data), nil
}

func errorPayload(msg string) string {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return string(data)
}
