package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the top-level application configuration.
type Config struct {
	Provider  ProviderConfig  `toml:"provider"`
	Backend   BackendConfig   `toml:"backend"`
	Cache     CacheConfig     `toml:"cache"`
	Generator GeneratorConfig `toml:"generator"`
	Research  ResearchConfig  `toml:"research"`
	Auth      AuthConfig      `toml:"auth"`
}

// ProviderConfig holds settings for LLM provider selection.
type ProviderConfig struct {
	Name         string `toml:"name"`
	Model        string `toml:"model"`
	CustomModel  string `toml:"custom_model"`
	APIKeySource string `toml:"api_key_source"`
	APIKey       string `toml:"api_key"`
}

// BackendConfig holds the LLM gateway endpoints the transport talks to.
type BackendConfig struct {
	BaseURL string `toml:"base_url"` // chunked HTTP completion stream
	WSURL   string `toml:"ws_url"`   // persistent websocket stream
	Token   string `toml:"token"`    // optional access token for private repos
}

// CacheConfig selects and configures the wiki cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"` // "remote" or "local"
	BaseURL string `toml:"base_url"`
	Path    string `toml:"path"` // sqlite database path for the local backend
}

// GeneratorConfig holds settings for wiki generation behavior.
type GeneratorConfig struct {
	MaxConcurrent   int    `toml:"max_concurrent"`
	Language        string `toml:"language"`
	Comprehensive   bool   `toml:"comprehensive"`
	RequestsPerHour int    `toml:"requests_per_hour"` // 0 disables client-side rate limiting
	RemoteParserURL string `toml:"remote_parser_url"`
	RegenerateURL   string `toml:"regenerate_url"`
}

// ResearchConfig holds settings for the deep-research loop.
type ResearchConfig struct {
	MaxIterations int      `toml:"max_iterations"`
	ContinueDelay Duration `toml:"continue_delay"`
}

// AuthConfig holds the legacy authorization-code gate settings.
type AuthConfig struct {
	Required bool   `toml:"required"`
	Code     string `toml:"code"`
}

// Duration wraps time.Duration so TOML values like "2s" decode directly.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:         "google",
			Model:        "gemini-2.5-flash",
			APIKeySource: "env",
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8001",
			WSURL:   "ws://localhost:8001/ws/chat",
		},
		Cache: CacheConfig{
			Backend: "remote",
			BaseURL: "http://localhost:8001",
		},
		Generator: GeneratorConfig{
			MaxConcurrent: 3,
			Language:      "en",
		},
		Research: ResearchConfig{
			MaxIterations: 5,
			ContinueDelay: Duration(2 * time.Second),
		},
	}
}

// Load reads a TOML config file from path. A missing file returns defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}
