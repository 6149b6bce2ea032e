package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentloop/config"
	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/memory"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/tool"
)

// Defaults applied by New.
const (
	DefaultName        = "AI Agent"
	DefaultInstruction = "You are a helpful AI assistant."
)

// Options configures an Agent.
type Options struct {
	// Name is reported in object payloads and logs.
	Name string
	// Instruction is the system prompt, static or dynamic.
	Instruction Instruction
	// ResponseType selects the payload shape: "text", "object" or "json".
	ResponseType string
	// MaxToolRounds bounds tool resolution per turn.
	MaxToolRounds int
	// Tools offered to the model. Names must be unique.
	Tools []tool.Tool
	// Memory persists history between turns. Nil keeps every turn stateless.
	Memory core.MemoryStore
	// Capacity bounds the history of each thread.
	Capacity int
	// Logger receives agent and loop events.
	Logger logging.Logger
}

// Response is the outcome of one turn.
type Response struct {
	ThreadID string
	// Payload is the formatted result (string, ObjectPayload or decoded JSON).
	Payload any
	// Text is the final assistant text.
	Text string
	// Result carries loop statistics and the tool invocations.
	Result *core.Result
	// HistoryLen is the thread's history length after the turn.
	HistoryLen int
}

// Agent runs turns: it resolves the system prompt, loads the thread's
// history, drives the Loop, records the completed turn and formats the
// payload.
//
// An Agent is safe for concurrent use across threads. Two turns on the same
// thread must not overlap; the runner package enforces that for hosts.
type Agent struct {
	name        string
	instruction Instruction
	cfg         config.ModelConfig
	registry    *tool.Registry
	loop        *Loop
	formatter   *Formatter
	memory      core.MemoryStore
	capacity    int
	logger      logging.Logger
}

// New creates an agent. Duplicate tool names and unknown response types are
// configuration errors; the model configuration itself is validated on
// every turn so a misconfigured agent fails before any remote call.
func New(m model.Model, cfg config.ModelConfig, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		Name:          DefaultName,
		Instruction:   NewInstructionFromText(DefaultInstruction),
		ResponseType:  config.ResponseText,
		MaxToolRounds: DefaultMaxToolRounds,
		Capacity:      memory.DefaultCapacity,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Instruction.IsZero() {
		opts.Instruction = NewInstructionFromText(DefaultInstruction)
	}

	registry, err := tool.NewRegistry(opts.Tools...)
	if err != nil {
		return nil, err
	}

	formatter, err := NewFormatter(opts.ResponseType, opts.Name, func(o *FormatterOptions) {
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	loop := NewLoop(m, cfg, registry, func(o *LoopOptions) {
		o.MaxToolRounds = opts.MaxToolRounds
		o.Logger = opts.Logger
	})

	return &Agent{
		name:        opts.Name,
		instruction: opts.Instruction,
		cfg:         cfg,
		registry:    registry,
		loop:        loop,
		formatter:   formatter,
		memory:      opts.Memory,
		capacity:    opts.Capacity,
		logger:      opts.Logger,
	}, nil
}

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// Tools returns the registered tool names in registration order.
func (a *Agent) Tools() []string { return a.registry.Names() }

// HasMemory reports whether turns are persisted.
func (a *Agent) HasMemory() bool { return a.memory != nil }

// turnLogger is implemented by loggers with a dedicated turn summary event.
type turnLogger interface {
	LogTurn(modelCalls, toolCalls int, dur time.Duration, success bool, err error)
}

// Run executes one turn for threadID with the caller's input payload.
// History is only updated when the turn completes.
func (a *Agent) Run(ctx context.Context, threadID string, input any) (*Response, error) {
	start := time.Now()

	resp, err := a.run(ctx, threadID, input)

	modelCalls, toolCalls := 0, 0
	if resp != nil && resp.Result != nil {
		modelCalls = resp.Result.TurnsUsed
		toolCalls = len(resp.Result.ToolInvocations)
	}

	if tl, ok := a.logger.(turnLogger); ok {
		tl.LogTurn(modelCalls, toolCalls, time.Since(start), err == nil, err)
	} else if err != nil {
		a.logger.Error("agent.turn.failed", "agent", a.name, "thread", threadID, "error", err.Error())
	} else {
		a.logger.Info("agent.turn.completed", "agent", a.name, "thread", threadID, "model_calls", modelCalls, "tool_calls", toolCalls)
	}

	return resp, err
}

func (a *Agent) run(ctx context.Context, threadID string, input any) (*Response, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	text, err := NormalizeInput(input)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("agent.turn.start", "agent", a.name, "thread", threadID, "tools", a.registry.Len())

	history, err := a.loadHistory(ctx, threadID)
	if err != nil {
		return nil, err
	}

	conv := memory.NewConversation(a.capacity, history)

	system, err := a.instruction.Resolve(&InstructionContext{
		Context:   ctx,
		AgentName: a.name,
		ThreadID:  threadID,
		Input:     text,
		History:   conv.Messages(),
	})
	if err != nil {
		return nil, fmt.Errorf("resolve instruction: %w", err)
	}

	prompt := BuildPrompt(system, conv.Messages(), text)

	result, err := a.loop.Run(ctx, threadID, prompt)
	if err != nil {
		return nil, err
	}

	conv.Append(prompt[len(prompt)-1], core.NewAssistantMessage(result.FinalText))

	if a.memory != nil {
		if err := a.memory.Save(ctx, threadID, conv.Messages()); err != nil {
			return nil, fmt.Errorf("save history for thread %s: %w", threadID, err)
		}
	}

	return &Response{
		ThreadID:   threadID,
		Payload:    a.formatter.Format(input, result.FinalText, conv.Len()),
		Text:       result.FinalText,
		Result:     result,
		HistoryLen: conv.Len(),
	}, nil
}

// History returns the stored history of threadID; empty without memory.
func (a *Agent) History(ctx context.Context, threadID string) ([]core.Message, error) {
	return a.loadHistory(ctx, threadID)
}

func (a *Agent) loadHistory(ctx context.Context, threadID string) ([]core.Message, error) {
	if a.memory == nil {
		return []core.Message{}, nil
	}

	history, err := a.memory.Load(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("load history for thread %s: %w", threadID, err)
	}

	return history, nil
}
