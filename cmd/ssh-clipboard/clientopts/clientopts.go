// Package clientopts registers the SSH/transport flags shared by
// push, pull, and peek, and merges them with the optional config file
// to build an internal/transport.Config. Flags always win over the
// file; the file wins over built-in defaults.
package clientopts

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/johansigfrids/ssh-clipboard/internal/config"
	"github.com/johansigfrids/ssh-clipboard/internal/transport"
)

// Options holds the raw flag values before merging with the config
// file. Register binds these to a *pflag.FlagSet; Resolve produces the
// final transport.Config.
type Options struct {
	Target         string
	Host           string
	User           string
	Port           int
	IdentityFile   string
	SSHOptions     []string
	SSHBin         string
	TimeoutMS      int64
	MaxSize        int64
	StrictFrames   bool
	ResyncMaxBytes int
	ConfigPath     string
}

// Register adds every shared client flag to fs, storing values into a
// new Options.
func Register(fs *pflag.FlagSet) *Options {
	opts := &Options{}
	fs.StringVar(&opts.Target, "target", "", "SSH target (user@host[:port])")
	fs.StringVar(&opts.Host, "host", "", "SSH host (alternative to --target)")
	fs.StringVar(&opts.User, "user", "", "SSH user (alternative to --target)")
	fs.IntVar(&opts.Port, "port", 0, "SSH port")
	fs.StringVar(&opts.IdentityFile, "identity-file", "", "SSH identity file")
	fs.StringArrayVar(&opts.SSHOptions, "ssh-option", nil, "extra -o option for ssh (repeatable)")
	fs.StringVar(&opts.SSHBin, "ssh-bin", "", "path to the ssh binary (default: PATH lookup)")
	fs.Int64Var(&opts.TimeoutMS, "timeout-ms", 0, "wall-clock deadline for the round trip (default 7000)")
	fs.Int64Var(&opts.MaxSize, "max-size", 0, "maximum clipboard value size in bytes (default 10MiB)")
	fs.BoolVar(&opts.StrictFrames, "strict-frames", false, "disable resync tolerance on the client frame reader")
	fs.IntVar(&opts.ResyncMaxBytes, "resync-max-bytes", 0, "bytes of leading garbage tolerated before MAGIC (default 8192)")
	fs.StringVar(&opts.ConfigPath, "config", "", "path to an alternate config file")
	return opts
}

// Resolve loads the config file (flags-unaware defaults) and layers
// the flag values on top, producing the transport.Config to use for
// one invocation. A config file that exists but cannot be read or
// parsed is reported on stderr and ignored.
func (o *Options) Resolve() (transport.Config, error) {
	path := o.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	fileCfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ssh-clipboard: ignoring config file: %v\n", err)
		fileCfg = &config.Config{}
	}

	cfg := transport.Config{
		Target:         firstNonEmpty(o.Target, fileCfg.Target),
		Host:           firstNonEmpty(o.Host, fileCfg.Host),
		User:           firstNonEmpty(o.User, fileCfg.User),
		Port:           firstNonZeroInt(o.Port, fileCfg.Port),
		IdentityFile:   firstNonEmpty(o.IdentityFile, fileCfg.IdentityFile),
		SSHBin:         firstNonEmpty(o.SSHBin, fileCfg.SSHBin),
		MaxSize:        firstNonZeroInt64(o.MaxSize, fileCfg.MaxSize),
		StrictFrames:   o.StrictFrames || fileCfg.StrictFrames,
		ResyncMaxBytes: firstNonZeroInt(o.ResyncMaxBytes, fileCfg.ResyncMaxBytes),
	}
	if len(o.SSHOptions) > 0 {
		cfg.SSHOptions = o.SSHOptions
	} else {
		cfg.SSHOptions = fileCfg.SSHOptions
	}

	timeoutMS := firstNonZeroInt64(o.TimeoutMS, fileCfg.TimeoutMS)
	if timeoutMS > 0 {
		cfg.Timeout = time.Duration(timeoutMS) * time.Millisecond
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZeroInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonZeroInt64(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
