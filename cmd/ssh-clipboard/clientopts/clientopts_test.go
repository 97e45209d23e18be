package clientopts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveFlagsWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("target: file-target\nmax_size: 100\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opts := &Options{Target: "flag-target", ConfigPath: path}
	cfg, err := opts.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Target != "flag-target" {
		t.Fatalf("got target %q, want flag value to win", cfg.Target)
	}
	if cfg.MaxSize != 100 {
		t.Fatalf("got max size %d, want file value since no flag set", cfg.MaxSize)
	}
}

func TestResolveFallsBackToFileWhenNoFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("target: file-target\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opts := &Options{ConfigPath: path}
	cfg, err := opts.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Target != "file-target" {
		t.Fatalf("got target %q, want file value", cfg.Target)
	}
}

func TestResolveMissingConfigFileIsNotAnError(t *testing.T) {
	opts := &Options{Target: "flag-target", ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")}
	cfg, err := opts.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Target != "flag-target" {
		t.Fatalf("got target %q", cfg.Target)
	}
}
