// Package proxycmd implements the "proxy" subcommand: the one-shot
// SSH-stdio-to-daemon-socket bridge invoked as the SSH remote command.
package proxycmd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/cli"
	"github.com/johansigfrids/ssh-clipboard/internal/config"
	"github.com/johansigfrids/ssh-clipboard/internal/logging"
	"github.com/johansigfrids/ssh-clipboard/internal/proxy"
)

// Command builds the "proxy" subcommand.
func Command() *cli.Command {
	var socketPath string
	var maxSize int64
	var ioTimeoutMS int64
	var autostart bool
	var configPath string

	return &cli.Command{
		Name:    "proxy",
		Summary: "Bridge one SSH-spawned request to the daemon socket (Linux)",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("proxy", pflag.ContinueOnError)
			fs.StringVar(&socketPath, "socket-path", "", "Unix socket path (default: XDG runtime dir fallback chain)")
			fs.Int64Var(&maxSize, "max-size", 0, "maximum clipboard value size in bytes (default 10MiB)")
			fs.Int64Var(&ioTimeoutMS, "io-timeout-ms", 0, "deadline for the daemon round trip (default 7000)")
			fs.BoolVar(&autostart, "autostart-daemon", false, "spawn a detached daemon if the socket is unreachable")
			fs.StringVar(&configPath, "config", "", "path to an alternate config file")
			return fs
		},
		Run: func(args []string) error {
			return &cli.ExitError{Code: run(socketPath, maxSize, ioTimeoutMS, autostart, configPath)}
		},
	}
}

func run(socketPath string, maxSize, ioTimeoutMS int64, autostart bool, configPath string) int {
	if configPath == "" {
		configPath = os.Getenv("SSH_CLIPBOARD_CONFIG")
	}
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	fileCfg, err := config.Load(configPath)
	if err != nil {
		logging.NewJSON(os.Stderr, slog.LevelWarn).Warn("ignoring malformed config file", "path", configPath, "error", err)
		fileCfg = &config.Config{}
	}

	if socketPath == "" {
		socketPath = fileCfg.SocketPath
	}
	if maxSize == 0 {
		maxSize = fileCfg.MaxSize
	}
	if ioTimeoutMS == 0 {
		ioTimeoutMS = fileCfg.IOTimeoutMS
	}
	if !autostart {
		autostart = fileCfg.AutostartDaemon
	}

	logger := logging.NewJSON(os.Stderr, slog.LevelInfo)

	return proxy.Run(context.Background(), os.Stdin, os.Stdout, proxy.Options{
		SocketPath:      socketPath,
		MaxSize:         maxSize,
		IOTimeout:       time.Duration(ioTimeoutMS) * time.Millisecond,
		AutostartDaemon: autostart,
		Logger:          logger,
	})
}
