package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"coursework-roadmap/internal/logging"
)

// EnvServerURL overrides server.base_url when set
const EnvServerURL = "ROADMAP_SERVER_URL"

// Config represents the application configuration
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Sync    SyncConfig     `yaml:"sync"`
	Store   StoreConfig    `yaml:"store"`
	Logging logging.Config `yaml:"logging"`
}

// ServerConfig represents the remote persistence service
type ServerConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SyncConfig controls autosave and retries
type SyncConfig struct {
	DebounceMS        int `yaml:"debounce_ms"`
	RetryCount        int `yaml:"retry_count"`
	RetryDelaySeconds int `yaml:"retry_delay_seconds"`
}

// StoreConfig represents the local cache
type StoreConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		Sync: SyncConfig{
			DebounceMS:        2000,
			RetryCount:        3,
			RetryDelaySeconds: 2,
		},
		Store: StoreConfig{
			Path: "~/.coursework-roadmap/cache.db",
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// defaults; fields left out of the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(ExpandHome(configPath))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.Server.BaseURL = envStr(EnvServerURL, config.Server.BaseURL)
	config.Store.Path = ExpandHome(config.Store.Path)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server base URL is required")
	}

	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server base URL must be an http(s) URL, got %q", c.Server.BaseURL)
	}

	if c.Server.TimeoutSeconds <= 0 {
		return fmt.Errorf("server timeout must be positive")
	}

	if c.Sync.DebounceMS <= 0 {
		return fmt.Errorf("sync debounce must be positive")
	}

	if c.Sync.RetryCount < 1 {
		return fmt.Errorf("sync retry count must be at least 1")
	}

	if c.Sync.RetryDelaySeconds < 0 {
		return fmt.Errorf("sync retry delay cannot be negative")
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	return nil
}

// Timeout returns the HTTP timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// DebounceWindow returns the autosave quiet period
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.Sync.DebounceMS) * time.Millisecond
}

// RetryDelay returns the pause between attempts
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Sync.RetryDelaySeconds) * time.Second
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	path = ExpandHome(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
