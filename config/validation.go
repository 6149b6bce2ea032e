package config

import (
	"fmt"
	"strings"
)

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	if err := c.Model.Validate(); err != nil {
		errs = append(errs, "model: "+err.Error())
	}

	// Agent
	switch c.Agent.ResponseType {
	case ResponseText, ResponseObject, ResponseJSON:
	default:
		errs = append(errs, fmt.Sprintf("agent.response_type must be one of text, object, json (got %q)", c.Agent.ResponseType))
	}
	if c.Agent.MaxToolRounds < 1 {
		errs = append(errs, "agent.max_tool_rounds must be >= 1")
	}

	// Memory
	if c.Memory.Capacity < 1 {
		errs = append(errs, "memory.capacity must be >= 1")
	}
	switch c.Memory.Backend {
	case MemoryNone, MemoryInMem:
	case MemoryFile:
		if c.Memory.Path == "" {
			errs = append(errs, "memory.path is required for the file backend")
		}
	case MemoryRedis:
		if c.Memory.RedisAddr == "" {
			errs = append(errs, "memory.redis_addr is required for the redis backend")
		}
		if c.Memory.TTLSeconds < 0 {
			errs = append(errs, "memory.ttl_seconds must be >= 0")
		}
	case MemorySQL:
		if c.Memory.DSN == "" {
			errs = append(errs, "memory.dsn is required for the sql backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("memory.backend %q is not supported", c.Memory.Backend))
	}

	// Tools
	seen := make(map[string]struct{}, len(c.Tools))
	for i, t := range c.Tools {
		if t.Name == "" {
			errs = append(errs, fmt.Sprintf("tools[%d].name is required", i))
		} else if _, dup := seen[t.Name]; dup {
			errs = append(errs, fmt.Sprintf("tools[%d].name %q is duplicated", i, t.Name))
		}
		seen[t.Name] = struct{}{}

		if t.Type != ToolHTTP && t.Type != ToolExpr {
			errs = append(errs, fmt.Sprintf("tools[%d].type %q is not supported", i, t.Type))
		}
	}

	// Server
	if c.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if c.Server.MaxConcurrentTurns < 1 {
		errs = append(errs, "server.max_concurrent_turns must be >= 1")
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not supported", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("log.format must be text or json (got %q)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
