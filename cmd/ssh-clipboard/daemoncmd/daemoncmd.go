// Package daemoncmd implements the "daemon" subcommand: run the
// long-lived clipboard-holding process.
package daemoncmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/cli"
	"github.com/johansigfrids/ssh-clipboard/internal/config"
	"github.com/johansigfrids/ssh-clipboard/internal/daemon"
	"github.com/johansigfrids/ssh-clipboard/internal/logging"
)

// Command builds the "daemon" subcommand.
func Command() *cli.Command {
	var socketPath string
	var maxSize int64
	var ioTimeoutMS int64
	var configPath string

	return &cli.Command{
		Name:    "daemon",
		Summary: "Run the clipboard daemon (Linux)",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("daemon", pflag.ContinueOnError)
			fs.StringVar(&socketPath, "socket-path", "", "Unix socket path (default: XDG runtime dir fallback chain)")
			fs.Int64Var(&maxSize, "max-size", 0, "maximum clipboard value size in bytes (default 10MiB)")
			fs.Int64Var(&ioTimeoutMS, "io-timeout-ms", 0, "per-connection read/write deadline (default 7000)")
			fs.StringVar(&configPath, "config", "", "path to an alternate config file")
			return fs
		},
		Examples: []cli.Example{
			{Description: "run the daemon in the foreground", Command: "ssh-clipboard daemon"},
		},
		Run: func(args []string) error {
			return run(socketPath, maxSize, ioTimeoutMS, configPath)
		},
	}
}

func run(socketPath string, maxSize, ioTimeoutMS int64, configPath string) error {
	if configPath == "" {
		configPath = os.Getenv("SSH_CLIPBOARD_CONFIG")
	}
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	fileCfg, err := config.Load(configPath)
	if err != nil {
		logging.New(os.Stderr, slog.LevelWarn).Warn("ignoring malformed config file", "path", configPath, "error", err)
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

	logger := logging.New(os.Stderr, slog.LevelInfo)

	d := daemon.New(daemon.Options{
		SocketPath: socketPath,
		MaxSize:    maxSize,
		IOTimeout:  time.Duration(ioTimeoutMS) * time.Millisecond,
		Logger:     logger,
	})

	if err := d.Listen(); err != nil {
		logger.Error("failed to listen", "error", err)
		return &cli.ExitError{Code: 5}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return d.Serve(ctx)
}
