// Package doctor implements the "doctor" subcommand: a read-only
// diagnostic sweep of the local environment, grounded in the same
// checks the daemon and proxy perform at startup but reported instead
// of acted on.
package doctor

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/cli"
	"github.com/johansigfrids/ssh-clipboard/internal/config"
	"github.com/johansigfrids/ssh-clipboard/internal/sockpath"
	"github.com/johansigfrids/ssh-clipboard/internal/version"
)

type check struct {
	name string
	ok   bool
	note string
}

// Command builds the "doctor" subcommand.
func Command() *cli.Command {
	var socketPath string
	var configPath string

	return &cli.Command{
		Name:    "doctor",
		Summary: "Diagnose the local ssh-clipboard environment",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("doctor", pflag.ContinueOnError)
			fs.StringVar(&socketPath, "socket-path", "", "Unix socket path to probe (default: XDG runtime dir fallback chain)")
			fs.StringVar(&configPath, "config", "", "path to an alternate config file")
			return fs
		},
		Run: func(args []string) error {
			return run(socketPath, configPath)
		},
	}
}

func run(socketPath, configPath string) error {
	fmt.Printf("ssh-clipboard %s\n\n", version.String())

	checks := []check{
		checkSSHBinary(),
		checkSocketDir(socketPath),
		checkDaemonReachable(socketPath),
		checkConfigFile(configPath),
	}

	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.ColorProfile()))
	okStyle := renderer.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle := renderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	failed := 0
	for _, c := range checks {
		status := okStyle.Render("ok")
		if !c.ok {
			status = failStyle.Render("FAIL")
			failed++
		}
		if c.note != "" {
			fmt.Printf("[%s] %-24s %s\n", status, c.name, c.note)
		} else {
			fmt.Printf("[%s] %-24s\n", status, c.name)
		}
	}

	if failed > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func checkSSHBinary() check {
	path, err := exec.LookPath("ssh")
	if err != nil {
		return check{name: "ssh binary", ok: false, note: err.Error()}
	}
	return check{name: "ssh binary", ok: true, note: path}
}

func checkSocketDir(override string) check {
	dir := sockpath.Dir(sockpath.Resolve(override))
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return check{name: "socket directory", ok: true, note: dir + " (not yet created)"}
	}
	if err != nil {
		return check{name: "socket directory", ok: false, note: err.Error()}
	}
	if info.Mode().Perm()&0o077 != 0 {
		return check{name: "socket directory", ok: false, note: fmt.Sprintf("%s has group/other permissions (mode %o)", dir, info.Mode().Perm())}
	}
	return check{name: "socket directory", ok: true, note: dir}
}

func checkDaemonReachable(override string) check {
	path := sockpath.Resolve(override)
	conn, err := net.DialTimeout("unix", path, 500*time.Millisecond)
	if err != nil {
		return check{name: "daemon reachable", ok: false, note: fmt.Sprintf("%s: %v", path, err)}
	}
	conn.Close()
	return check{name: "daemon reachable", ok: true, note: path}
}

func checkConfigFile(override string) check {
	path := override
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return check{name: "config file", ok: true, note: "no home directory, skipped"}
	}
	if _, err := config.Load(path); err != nil {
		return check{name: "config file", ok: false, note: err.Error()}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return check{name: "config file", ok: true, note: path + " (not present, using defaults)"}
	}
	return check{name: "config file", ok: true, note: path}
}
