package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MCP.Transport != "stdio" {
		t.Errorf("transport = %q, want stdio", cfg.MCP.Transport)
	}
	if cfg.MCP.Port != 8137 {
		t.Errorf("port = %d, want 8137", cfg.MCP.Port)
	}
	if cfg.ApplicationName != "" {
		t.Errorf("application name = %q, want empty", cfg.ApplicationName)
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `application_name: MyApp
default_window_label: workspace
mcp:
  transport: streamable-http
  port: 9000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ApplicationName != "MyApp" {
		t.Errorf("application name = %q", cfg.ApplicationName)
	}
	if cfg.DefaultWindowLabel != "workspace" {
		t.Errorf("default window label = %q", cfg.DefaultWindowLabel)
	}
	if cfg.MCP.Transport != "streamable-http" || cfg.MCP.Port != 9000 {
		t.Errorf("mcp = %+v", cfg.MCP)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("application_name: MyApp\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MCP.Transport != "stdio" || cfg.MCP.Port != 8137 {
		t.Errorf("mcp = %+v, want defaults preserved", cfg.MCP)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("::: not yaml {"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
