// Package logging provides a minimal logging interface and adapters for agentloop.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the agent, loop, tools and stores use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - TurnLogger with thread/component attributes and turn helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	a, err := agent.New(m, cfg, func(o *agent.Options) { o.Logger = logger })
//
// Secrets (API keys) are never passed to a logger by this module.
package logging
