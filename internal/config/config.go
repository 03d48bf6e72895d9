package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"mcp-testbed/internal/mcp/protocol"
)

// Config holds the complete application configuration
type Config struct {
	// Application information
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`

	// Server configuration
	Server ServerConfig `yaml:"server" json:"server"`

	// Logging configuration
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// ServerConfig holds the protocol endpoint configuration
type ServerConfig struct {
	ProtocolVersion string          `yaml:"protocol_version,omitempty" json:"protocol_version,omitempty"`
	Transport       TransportConfig `yaml:"transport" json:"transport"`

	// StrictArguments validates tools/call arguments against each tool's
	// input schema instead of the reference's tolerant defaulting.
	StrictArguments bool `yaml:"strict_arguments" json:"strict_arguments"`

	// LegacyIDs reproduces the reference's fixed response ids for
	// initialize (1) and tools/list (2). The counter still advances
	// underneath, exactly as the reference's did.
	LegacyIDs bool `yaml:"legacy_ids" json:"legacy_ids"`

	Tools ToolsConfig `yaml:"tools,omitempty" json:"tools,omitempty"`
}

// TransportConfig holds transport configuration
type TransportConfig struct {
	Type    string        `yaml:"type" json:"type"`
	Host    string        `yaml:"host,omitempty" json:"host,omitempty"`
	Port    int           `yaml:"port,omitempty" json:"port,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// ToolsConfig controls which builtin tools are exposed
type ToolsConfig struct {
	Disabled []string `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validTransports = map[string]bool{
	"stdio": true,
	"tcp":   true,
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Name:    "mcp-testbed",
		Version: "1.0.0",
		Server: ServerConfig{
			ProtocolVersion: protocol.MCPProtocolVersion,
			Transport: TransportConfig{
				Type: "stdio",
				Host: "localhost",
				Port: 8383,
			},
		},
		LogLevel: "info",
	}
}

// LoadConfig loads configuration from a file, overlaying the defaults
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch ext := filepath.Ext(configPath); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", ext)
	}

	return config, nil
}

// Validate checks the configuration for fatal misconfiguration. A failure
// here must keep the process from ever entering the session loop.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if c.Server.ProtocolVersion == "" {
		return fmt.Errorf("server.protocol_version is required")
	}
	if !validTransports[c.Server.Transport.Type] {
		return fmt.Errorf("unsupported transport type: %q (want stdio or tcp)", c.Server.Transport.Type)
	}
	if c.Server.Transport.Type == "tcp" {
		if c.Server.Transport.Port < 1 || c.Server.Transport.Port > 65535 {
			return fmt.Errorf("invalid tcp port: %d", c.Server.Transport.Port)
		}
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %q", c.LogLevel)
	}
	return nil
}
