// Package config loads optional client/daemon/proxy defaults from a
// YAML file, layered underneath CLI flags (flags always win). A
// missing file is not an error; a malformed existing file is reported
// so the user knows their configuration attempt was ignored.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds every defaultable setting. Zero values mean "not set
// in the file"; callers merge in built-in defaults separately.
type Config struct {
	Target          string   `yaml:"target"`
	Host            string   `yaml:"host"`
	User            string   `yaml:"user"`
	Port            int      `yaml:"port"`
	IdentityFile    string   `yaml:"identity_file"`
	SSHOptions      []string `yaml:"ssh_options"`
	SSHBin          string   `yaml:"ssh_bin"`
	MaxSize         int64    `yaml:"max_size"`
	TimeoutMS       int64    `yaml:"timeout_ms"`
	StrictFrames    bool     `yaml:"strict_frames"`
	ResyncMaxBytes  int      `yaml:"resync_max_bytes"`
	SocketPath      string   `yaml:"socket_path"`
	IOTimeoutMS     int64    `yaml:"io_timeout_ms"`
	AutostartDaemon bool     `yaml:"autostart_daemon"`
}

// DefaultPath returns the conventional config file location:
// $XDG_CONFIG_HOME/ssh-clipboard/config.yaml, falling back to
// ~/.config/ssh-clipboard/config.yaml.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "ssh-clipboard", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ssh-clipboard", "config.yaml")
}

// Load reads and parses the YAML config file at path. A missing file
// returns a zero Config and a nil error — there is simply nothing to
// layer on top of the built-in defaults. A file that exists but fails
// to parse returns an error so the caller can warn the user.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}
