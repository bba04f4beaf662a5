package model

// Config holds the complete service configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Addr            string `yaml:"addr" mapstructure:"addr"`                         // Listen address, e.g. ":8000"
	ShutdownTimeout int    `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"` // Graceful shutdown window, seconds
}

// DatabaseConfig configures the sqlite store
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // sqlite file path, ":memory:" for ephemeral
}

// LLMConfig configures the external decision service
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // "openai", "gemini"
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"` // Custom endpoint (tests, proxies)
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"`   // Per-call timeout, seconds
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // Upstream rate limit
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig configures the dashboard response cache
type CacheConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	TTLSeconds int  `yaml:"ttl_seconds" mapstructure:"ttl_seconds"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Path: "fnol.db",
		},
		LLM: LLMConfig{
			Provider:          "openai",
			Model:             "",
			Timeout:           30,
			MaxTokens:         1000,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 15,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
