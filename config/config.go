package config

// Memory backends accepted in MemoryConfig.Backend.
const (
	MemoryNone  = "none"
	MemoryInMem = "inmem"
	MemoryFile  = "file"
	MemoryRedis = "redis"
	MemorySQL   = "sql"
)

// Response types accepted in AgentConfig.ResponseType.
const (
	ResponseText   = "text"
	ResponseObject = "object"
	ResponseJSON   = "json"
)

// Tool types accepted in ToolConfig.Type.
const (
	ToolHTTP = "http"
	ToolExpr = "expr"
)

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via the config file.
// NOTE: Values in config files override defaults, including explicit zero values.
type Config struct {
	Model  ModelConfig  `json:"model"`
	Agent  AgentConfig  `json:"agent"`
	Memory MemoryConfig `json:"memory"`
	Tools  []ToolConfig `json:"tools"`
	Server ServerConfig `json:"server"`
	Log    LogConfig    `json:"log"`
}

type AgentConfig struct {
	Name          string `json:"name"`          // Default: "AI Agent"
	Instruction   string `json:"instruction"`   // Default: "You are a helpful AI assistant."
	ResponseType  string `json:"response_type"` // Default: "text"
	MaxToolRounds int    `json:"max_tool_rounds"`
}

type MemoryConfig struct {
	Backend  string `json:"backend"`  // Default: "inmem"
	Capacity int    `json:"capacity"` // Default: 1000

	// file
	Path string `json:"path"`

	// redis
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	KeyPrefix     string `json:"key_prefix"`
	TTLSeconds    int    `json:"ttl_seconds"`

	// sql
	DSN string `json:"dsn"`
}

// ToolConfig declares one tool. Options are decoded into the typed config of
// the tool type.
type ToolConfig struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Options     map[string]any `json:"options"`
}

type ServerConfig struct {
	Addr                string `json:"addr"`                  // Default: ":8080"
	MaxConcurrentTurns  int    `json:"max_concurrent_turns"`  // Default: 10
	ReadTimeoutSeconds  int    `json:"read_timeout_seconds"`  // Default: 30
	WriteTimeoutSeconds int    `json:"write_timeout_seconds"` // Default: 120
	// CORSOrigins enables CORS for the listed origins. Empty disables CORS.
	CORSOrigins []string `json:"cors_origins,omitempty"`
}

type LogConfig struct {
	Level     string `json:"level"`  // Default: "info"
	Format    string `json:"format"` // Default: "text"
	AddSource bool   `json:"add_source"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Model: DefaultModelConfig(),
		Agent: AgentConfig{
			Name:          "AI Agent",
			Instruction:   "You are a helpful AI assistant.",
			ResponseType:  ResponseText,
			MaxToolRounds: 1,
		},
		Memory: MemoryConfig{
			Backend:   MemoryInMem,
			Capacity:  1000,
			Path:      "agentloop-memory.json",
			KeyPrefix: "agentloop:thread:",
		},
		Server: ServerConfig{
			Addr:                ":8080",
			MaxConcurrentTurns:  10,
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 120,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
