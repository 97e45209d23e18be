package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsZeroConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target != "" || cfg.Port != 0 {
		t.Fatalf("got %+v, want zero value", cfg)
	}
}

func TestLoadEmptyPathReturnsZeroConfig(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target != "" {
		t.Fatalf("got %+v, want zero value", cfg)
	}
}

func TestLoadParsesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
target: alice@example.com
port: 2222
ssh_options:
  - StrictHostKeyChecking=no
max_size: 1048576
strict_frames: true
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target != "alice@example.com" || cfg.Port != 2222 || cfg.MaxSize != 1048576 || !cfg.StrictFrames {
		t.Fatalf("got %+v, want parsed fields", cfg)
	}
	if len(cfg.SSHOptions) != 1 || cfg.SSHOptions[0] != "StrictHostKeyChecking=no" {
		t.Fatalf("got ssh_options %v", cfg.SSHOptions)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("target: [unterminated"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML, got nil")
	}
}
