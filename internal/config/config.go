// Package config loads serve-side configuration. Per-operation bridge
// timeouts are fixed by the protocol and deliberately not configurable
// here.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the serve-side configuration.
type Config struct {
	// ApplicationName is the owning-application hint used to match the
	// host's windows during native capture.
	ApplicationName string `yaml:"application_name"`

	// DefaultWindowLabel overrides the label used when a request names
	// none. Empty keeps the built-in "main".
	DefaultWindowLabel string `yaml:"default_window_label"`

	MCP MCPConfig `yaml:"mcp"`
}

// MCPConfig configures the MCP tool surface.
type MCPConfig struct {
	Transport string `yaml:"transport"` // "stdio" or "streamable-http"
	Port      int    `yaml:"port"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		MCP: MCPConfig{
			Transport: "stdio",
			Port:      8137,
		},
	}
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "appdriver", "config.yaml"), nil
}

// Load reads configuration from path, or from the standard location when
// path is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.MCP.Transport == "" {
		cfg.MCP.Transport = "stdio"
	}
	return cfg, nil
}
