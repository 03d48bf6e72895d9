package server

import (
	"time"

	"mcp-testbed/internal/config"
)

// Config is the server-side view of the unified configuration
type Config struct {
	Name            string
	Version         string
	ProtocolVersion string
	Transport       TransportConfig
	StrictArguments bool
	LegacyIDs       bool
	DisabledTools   []string
}

// TransportConfig holds transport settings for the endpoint
type TransportConfig struct {
	Type    string
	Host    string
	Port    int
	Timeout time.Duration
}

// DefaultConfig returns a server config derived from the unified defaults
func DefaultConfig() *Config {
	return NewConfigFromUnified(config.DefaultConfig())
}

// NewConfigFromUnified projects the unified application config onto the
// server's own view.
func NewConfigFromUnified(cfg *config.Config) *Config {
	return &Config{
		Name:            cfg.Name,
		Version:         cfg.Version,
		ProtocolVersion: cfg.Server.ProtocolVersion,
		Transport: TransportConfig{
			Type:    cfg.Server.Transport.Type,
			Host:    cfg.Server.Transport.Host,
			Port:    cfg.Server.Transport.Port,
			Timeout: cfg.Server.Transport.Timeout,
		},
		StrictArguments: cfg.Server.StrictArguments,
		LegacyIDs:       cfg.Server.LegacyIDs,
		DisabledTools:   cfg.Server.Tools.Disabled,
	}
}
