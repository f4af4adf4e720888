// Package config builds the process configuration once at startup from the
// environment, an optional .env file and the desktop client's MCP settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"stdict-mcp/internal/stdict"
)

// APIKeyEnv is the environment variable holding the dictionary credential.
const APIKeyEnv = "STDICT_API_KEY"

// desktopServerName is the mcpServers entry consulted in the desktop client config.
const desktopServerName = "stdict"

// Config contains the full process configuration. It is not mutated after Load.
type Config struct {
	Dictionary DictionaryConfig
	Server     ServerConfig
	Log        LogConfig
}

// DictionaryConfig configures the upstream dictionary API.
type DictionaryConfig struct {
	APIKey            string        `env:"STDICT_API_KEY"`
	SearchURL         string        `env:"STDICT_SEARCH_URL" envDefault:"https://stdict.korean.go.kr/api/search.do"`
	ViewURL           string        `env:"STDICT_VIEW_URL" envDefault:"https://stdict.korean.go.kr/api/view.do"`
	Timeout           time.Duration `env:"STDICT_UPSTREAM_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes      int64         `env:"STDICT_MAX_BODY_BYTES" envDefault:"8388608"`
	DesktopConfigPath string        `env:"STDICT_DESKTOP_CONFIG"`
}

// ServerConfig configures the streamable HTTP transport.
type ServerConfig struct {
	Addr            string        `env:"MCP_ADDR" envDefault:":8080"`
	SessionTimeout  time.Duration `env:"MCP_SESSION_TIMEOUT" envDefault:"1h"`
	CleanupInterval time.Duration `env:"MCP_CLEANUP_INTERVAL" envDefault:"5m"`
	RequireSession  bool          `env:"MCP_REQUIRE_SESSION" envDefault:"true"`
	MetricsInterval time.Duration `env:"MCP_METRICS_INTERVAL" envDefault:"15s"`
	AllowedOrigins  []string      `env:"MCP_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// LogConfig configures the root zerolog logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

// ConfigurationError is fatal: the process must not start serving.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Load reads envFiles (default ".env"; missing files are skipped), parses the
// environment into a Config, resolves the API key and validates the result.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.Dictionary.APIKey = strings.TrimSpace(cfg.Dictionary.APIKey)
	if cfg.Dictionary.APIKey == "" {
		path := cfg.Dictionary.DesktopConfigPath
		if path == "" {
			path = DefaultDesktopConfigPath()
		}
		cfg.Dictionary.APIKey = desktopAPIKey(path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the process cannot run without.
func (c *Config) Validate() error {
	if c.Dictionary.APIKey == "" {
		return &ConfigurationError{
			Field:  APIKeyEnv,
			Reason: "API key not found; set it in the environment or in the desktop client's mcpServers.stdict.env",
		}
	}
	if c.Dictionary.Timeout <= 0 {
		return &ConfigurationError{Field: "STDICT_UPSTREAM_TIMEOUT", Reason: "must be positive"}
	}
	if c.Dictionary.MaxBodyBytes <= 0 {
		return &ConfigurationError{Field: "STDICT_MAX_BODY_BYTES", Reason: "must be positive"}
	}
	if c.Server.SessionTimeout <= 0 {
		return &ConfigurationError{Field: "MCP_SESSION_TIMEOUT", Reason: "must be positive"}
	}
	if c.Server.CleanupInterval <= 0 {
		return &ConfigurationError{Field: "MCP_CLEANUP_INTERVAL", Reason: "must be positive"}
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return &ConfigurationError{Field: "LOG_LEVEL", Reason: err.Error()}
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return &ConfigurationError{Field: "LOG_FORMAT", Reason: fmt.Sprintf("unsupported format %q (console, json)", c.Log.Format)}
	}
	return nil
}

// ClientConfig maps the dictionary settings onto the upstream client.
func (c *Config) ClientConfig(version string) stdict.ClientConfig {
	return stdict.ClientConfig{
		SearchURL:    c.Dictionary.SearchURL,
		ViewURL:      c.Dictionary.ViewURL,
		Timeout:      c.Dictionary.Timeout,
		MaxBodyBytes: c.Dictionary.MaxBodyBytes,
		UserAgent:    "stdict-mcp/" + version,
	}
}

// KeyLooksValid reports whether the configured key has the issued 32-hex shape.
func (c *Config) KeyLooksValid() bool {
	return stdict.ValidKey(c.Dictionary.APIKey)
}

// String renders the configuration with the API key redacted.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dictionary:\n")
	fmt.Fprintf(&b, "  api_key: %s\n", redact(c.Dictionary.APIKey))
	fmt.Fprintf(&b, "  search_url: %s\n", c.Dictionary.SearchURL)
	fmt.Fprintf(&b, "  view_url: %s\n", c.Dictionary.ViewURL)
	fmt.Fprintf(&b, "  timeout: %s\n", c.Dictionary.Timeout)
	fmt.Fprintf(&b, "  max_body_bytes: %d\n", c.Dictionary.MaxBodyBytes)
	fmt.Fprintf(&b, "server:\n")
	fmt.Fprintf(&b, "  addr: %s\n", c.Server.Addr)
	fmt.Fprintf(&b, "  session_timeout: %s\n", c.Server.SessionTimeout)
	fmt.Fprintf(&b, "  cleanup_interval: %s\n", c.Server.CleanupInterval)
	fmt.Fprintf(&b, "  require_session: %t\n", c.Server.RequireSession)
	fmt.Fprintf(&b, "  metrics_interval: %s\n", c.Server.MetricsInterval)
	fmt.Fprintf(&b, "  allowed_origins: %s\n", strings.Join(c.Server.AllowedOrigins, ","))
	fmt.Fprintf(&b, "log:\n")
	fmt.Fprintf(&b, "  level: %s\n", c.Log.Level)
	fmt.Fprintf(&b, "  format: %s\n", c.Log.Format)
	return b.String()
}

func redact(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

// DefaultDesktopConfigPath returns the desktop client's config file location
// (~/Library/Application Support/Claude on macOS, ~/.config/Claude on Linux).
func DefaultDesktopConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "Claude", "claude_desktop_config.json")
}

type desktopConfig struct {
	MCPServers map[string]struct {
		Env map[string]string `json:"env"`
	} `json:"mcpServers"`
}

// desktopAPIKey returns "" when the file is absent, unreadable or lacks the entry.
func desktopAPIKey(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var dc desktopConfig
	if err := json.Unmarshal(data, &dc); err != nil {
		return ""
	}
	server, ok := dc.MCPServers[desktopServerName]
	if !ok {
		return ""
	}
	return strings.TrimSpace(server.Env[APIKeyEnv])
}
