package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Environment variables applied over the loaded configuration.
const (
	EnvAPIKey    = "AGENTLOOP_API_KEY"
	EnvModel     = "AGENTLOOP_MODEL"
	EnvProvider  = "AGENTLOOP_PROVIDER"
	EnvRedisAddr = "AGENTLOOP_REDIS_ADDR"
	EnvMySQLDSN  = "AGENTLOOP_MYSQL_DSN"
)

// FileSystem abstracts file operations for testability.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// Environment abstracts environment lookups for testability.
type Environment interface {
	LookupEnv(key string) (string, bool)
}

type osFileSystem struct{}

func (osFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

type osEnvironment struct{}

func (osEnvironment) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

// Loader handles configuration loading with injected dependencies.
type Loader struct {
	fs  FileSystem
	env Environment
}

// NewLoader creates a production Loader using the real filesystem and environment.
func NewLoader() *Loader {
	return &Loader{fs: osFileSystem{}, env: osEnvironment{}}
}

// NewLoaderWith creates a Loader with custom dependencies (for testing).
func NewLoaderWith(fs FileSystem, env Environment) *Loader {
	return &Loader{fs: fs, env: env}
}

// Load reads the JSON config at path and merges it with defaults, then
// applies environment overrides and validates the result. An empty path
// skips the file and uses defaults plus environment.
//
// NOTE: JSON keys are unmarshalled directly over the default configuration,
// so explicit zero values in the file override defaults.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := l.fs.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}

		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	l.applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (l *Loader) applyEnv(cfg *Config) {
	if l.env == nil {
		return
	}

	if v, ok := l.env.LookupEnv(EnvAPIKey); ok && v != "" {
		cfg.Model.APIKey = v
	}
	if v, ok := l.env.LookupEnv(EnvModel); ok && v != "" {
		cfg.Model.Model = v
	}
	if v, ok := l.env.LookupEnv(EnvProvider); ok && v != "" {
		cfg.Model.Provider = v
	}
	if v, ok := l.env.LookupEnv(EnvRedisAddr); ok && v != "" {
		cfg.Memory.RedisAddr = v
	}
	if v, ok := l.env.LookupEnv(EnvMySQLDSN); ok && v != "" {
		cfg.Memory.DSN = v
	}
}

// Load is a convenience function using the default loader.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}
