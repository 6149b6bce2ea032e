// Package agentloop assembles a runnable agent from a config.Config: the
// remote model for the configured provider, the memory backend, the declared
// tools, the logger, the per-thread runner and the HTTP server.
//
// Most hosts either call New with a loaded config and then Serve, or build
// the pieces themselves from the agent, runner and server packages.
package agentloop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentloop/agent"
	"github.com/hupe1980/agentloop/config"
	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/memory"
	"github.com/hupe1980/agentloop/memory/filestore"
	"github.com/hupe1980/agentloop/memory/redisstore"
	"github.com/hupe1980/agentloop/memory/sqlstore"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/model/anthropic"
	"github.com/hupe1980/agentloop/model/gemini"
	"github.com/hupe1980/agentloop/model/openai"
	"github.com/hupe1980/agentloop/model/openrouter"
	"github.com/hupe1980/agentloop/runner"
	"github.com/hupe1980/agentloop/server"
	"github.com/hupe1980/agentloop/tool"
	"github.com/hupe1980/agentloop/tool/exprtool"
	"github.com/hupe1980/agentloop/tool/httptool"
)

// Options overrides parts of the config-driven assembly.
type Options struct {
	// Model replaces the provider model built from config.
	Model model.Model
	// Memory replaces the configured memory backend.
	Memory core.MemoryStore
	// Instruction replaces the static instruction from config.
	Instruction agent.Instruction
	// Tools are registered after the configured tools.
	Tools []tool.Tool
	// Logger replaces the logger built from config.Log.
	Logger logging.Logger
}

// App is an assembled agent with its runner and HTTP server.
type App struct {
	cfg    *config.Config
	agent  *agent.Agent
	runner *runner.Runner
	server *server.Server
	logger logging.Logger

	closers []func() error
}

// New validates cfg and assembles an App. Resources opened here (redis
// clients, database handles) are released by Close.
func New(cfg *config.Config, optFns ...func(o *Options)) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = NewLogger(cfg.Log)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{cfg: cfg, logger: opts.Logger}

	m := opts.Model
	if m == nil {
		var err error
		if m, err = NewModel(cfg.Model); err != nil {
			return nil, err
		}
	}

	store := opts.Memory
	if store == nil {
		var (
			closer func() error
			err    error
		)
		if store, closer, err = NewMemory(cfg.Memory); err != nil {
			return nil, err
		}
		if closer != nil {
			app.closers = append(app.closers, closer)
		}
	}

	tools, err := NewTools(cfg.Tools)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	tools = append(tools, opts.Tools...)

	instruction := opts.Instruction
	if instruction.IsZero() {
		instruction = agent.NewInstructionFromText(cfg.Agent.Instruction)
	}

	a, err := agent.New(m, cfg.Model, func(o *agent.Options) {
		o.Name = cfg.Agent.Name
		o.Instruction = instruction
		o.ResponseType = cfg.Agent.ResponseType
		o.MaxToolRounds = cfg.Agent.MaxToolRounds
		o.Tools = tools
		o.Memory = store
		o.Capacity = cfg.Memory.Capacity
		o.Logger = opts.Logger
	})
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.agent = a
	app.runner = runner.New(a, func(o *runner.Options) {
		o.MaxConcurrentTurns = cfg.Server.MaxConcurrentTurns
		o.Logger = opts.Logger
	})
	app.server = server.New(app.runner, a, func(o *server.Options) {
		o.CORSOrigins = cfg.Server.CORSOrigins
		o.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
		o.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
		o.Logger = opts.Logger
	})

	opts.Logger.Info("agentloop.assembled",
		"agent", a.Name(),
		"provider", cfg.Model.EffectiveProvider(),
		"model", cfg.Model.Model,
		"memory", cfg.Memory.Backend,
		"tools", strings.Join(a.Tools(), ","),
	)

	return app, nil
}

// Agent returns the assembled agent.
func (a *App) Agent() *agent.Agent { return a.agent }

// Runner returns the per-thread turn runner.
func (a *App) Runner() *runner.Runner { return a.runner }

// Server returns the HTTP server.
func (a *App) Server() *server.Server { return a.server }

// Run executes one turn through the runner.
func (a *App) Run(ctx context.Context, threadID string, input any) (*agent.Response, error) {
	return a.runner.Run(ctx, threadID, input)
}

// Serve runs the HTTP API on the configured address until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	return a.server.ListenAndServe(ctx, a.cfg.Server.Addr)
}

// Close releases the resources opened by New.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewModel builds the remote model for cfg's provider. Endpoint overrides the
// provider's default URL.
func NewModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.EffectiveProvider() {
	case config.ProviderOpenRouter:
		return openrouter.NewModel(func(o *openrouter.Options) {
			if cfg.Endpoint != "" {
				o.Endpoint = cfg.Endpoint
			}
		}), nil
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) { o.BaseURL = cfg.Endpoint }), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) { o.BaseURL = cfg.Endpoint }), nil
	case config.ProviderGemini:
		return gemini.NewModel(func(o *gemini.Options) { o.BaseURL = cfg.Endpoint }), nil
	default:
		return nil, core.NewConfigurationError(fmt.Sprintf("unknown provider %q", cfg.Provider))
	}
}

// NewMemory opens the configured memory backend. The returned closer is nil
// when the backend holds no external resources. Backend "none" returns a nil
// store, which keeps every turn stateless.
func NewMemory(cfg config.MemoryConfig) (core.MemoryStore, func() error, error) {
	switch cfg.Backend {
	case config.MemoryNone:
		return nil, nil, nil
	case config.MemoryInMem, "":
		return memory.NewInMemoryStore(func(o *memory.Options) { o.MaxItems = cfg.Capacity }), nil, nil
	case config.MemoryFile:
		s, err := filestore.New(cfg.Path, func(o *filestore.Options) { o.MaxItems = cfg.Capacity })
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case config.MemoryRedis:
		client := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		s, err := redisstore.New(client, func(o *redisstore.Options) {
			if cfg.KeyPrefix != "" {
				o.KeyPrefix = cfg.KeyPrefix
			}
			o.TTL = time.Duration(cfg.TTLSeconds) * time.Second
			o.MaxItems = cfg.Capacity
		})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return s, client.Close, nil
	case config.MemorySQL:
		db, err := sqlstore.OpenMySQL(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("sql memory: %w", err)
		}
		s, err := sqlstore.New(db, func(o *sqlstore.Options) {
			o.MaxItems = cfg.Capacity
			o.AutoMigrate = true
		})
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return s, sqlDB.Close, nil
	default:
		return nil, nil, core.NewConfigurationError(fmt.Sprintf("memory backend %q is not supported", cfg.Backend))
	}
}

// NewTools builds the declared tools. Name and description of the entry take
// precedence over the same keys inside options.
func NewTools(cfgs []config.ToolConfig) ([]tool.Tool, error) {
	tools := make([]tool.Tool, 0, len(cfgs))

	for i, tc := range cfgs {
		t, err := newTool(tc)
		if err != nil {
			return nil, fmt.Errorf("tools[%d] %q: %w", i, tc.Name, err)
		}
		tools = append(tools, t)
	}

	return tools, nil
}

func newTool(tc config.ToolConfig) (tool.Tool, error) {
	switch tc.Type {
	case config.ToolHTTP:
		c, err := httptool.Decode(tc.Options)
		if err != nil {
			return nil, err
		}
		c.Name = pick(tc.Name, c.Name)
		c.Description = pick(tc.Description, c.Description)
		return httptool.New(c)
	case config.ToolExpr:
		c, err := exprtool.Decode(tc.Options)
		if err != nil {
			return nil, err
		}
		c.Name = pick(tc.Name, c.Name)
		c.Description = pick(tc.Description, c.Description)
		return exprtool.New(c)
	default:
		return nil, core.NewConfigurationError(fmt.Sprintf("tool type %q is not supported", tc.Type))
	}
}

// NewLogger builds the structured turn logger described by cfg.
func NewLogger(cfg config.LogConfig) logging.Logger {
	return logging.NewSlogLogger(logging.ParseLevel(cfg.Level), cfg.Format, cfg.AddSource).WithComponent("agentloop")
}

func pick(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}
