package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvServerURL, "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.DebounceWindow())
	assert.Equal(t, 3, cfg.Sync.RetryCount)
	assert.NotContains(t, cfg.Store.Path, "~")
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv(EnvServerURL, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  base_url: https://roadmap.example.com
sync:
  debounce_ms: 500
store:
  path: /tmp/roadmap.db
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://roadmap.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, 500*time.Millisecond, cfg.DebounceWindow())
	assert.Equal(t, 2*time.Second, cfg.RetryDelay())
	assert.Equal(t, "/tmp/roadmap.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv(EnvServerURL, "http://10.0.0.5:9000")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.Server.BaseURL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv(EnvServerURL, "")
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config file")

	require.NoError(t, os.WriteFile(path, []byte("sync:\n  retry_count: 0\n"), 0644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "retry count")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty url", func(c *Config) { c.Server.BaseURL = "" }, "base URL is required"},
		{"bad scheme", func(c *Config) { c.Server.BaseURL = "ftp://host" }, "http(s)"},
		{"zero timeout", func(c *Config) { c.Server.TimeoutSeconds = 0 }, "timeout"},
		{"zero debounce", func(c *Config) { c.Sync.DebounceMS = 0 }, "debounce"},
		{"negative delay", func(c *Config) { c.Sync.RetryDelaySeconds = -1 }, "delay"},
		{"no store", func(c *Config) { c.Store.Path = "" }, "store path"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "log level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestWriteDefault(t *testing.T) {
	t.Setenv(EnvServerURL, "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefault(path))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)

	assert.ErrorContains(t, WriteDefault(path), "already exists")
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".roadmap"), ExpandHome("~/.roadmap"))
	assert.Equal(t, "/etc/roadmap", ExpandHome("/etc/roadmap"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
}
