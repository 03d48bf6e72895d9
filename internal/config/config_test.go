package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "mcp-testbed", cfg.Name)
	assert.Equal(t, "stdio", cfg.Server.Transport.Type)
	assert.Equal(t, "2024-11-05", cfg.Server.ProtocolVersion)
	assert.False(t, cfg.Server.LegacyIDs)
	assert.False(t, cfg.Server.StrictArguments)
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
name: conformance-endpoint
version: 2.1.0
log_level: debug
server:
  transport:
    type: tcp
    host: 127.0.0.1
    port: 9000
  legacy_ids: true
  tools:
    disabled: [random]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "conformance-endpoint", cfg.Name)
	assert.Equal(t, "2.1.0", cfg.Version)
	assert.Equal(t, "tcp", cfg.Server.Transport.Type)
	assert.Equal(t, 9000, cfg.Server.Transport.Port)
	assert.True(t, cfg.Server.LegacyIDs)
	assert.Equal(t, []string{"random"}, cfg.Server.Tools.Disabled)

	// Defaults survive a partial file.
	assert.Equal(t, "2024-11-05", cfg.Server.ProtocolVersion)
}

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"name":"json-endpoint","server":{"strict_arguments":true,"transport":{"type":"stdio"}}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "json-endpoint", cfg.Name)
	assert.True(t, cfg.Server.StrictArguments)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty name", func(c *Config) { c.Name = "" }, "name is required"},
		{"empty version", func(c *Config) { c.Version = "" }, "version is required"},
		{"unknown transport", func(c *Config) { c.Server.Transport.Type = "carrier-pigeon" }, "unsupported transport"},
		{"tcp without valid port", func(c *Config) {
			c.Server.Transport.Type = "tcp"
			c.Server.Transport.Port = 0
		}, "invalid tcp port"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
