// Package commands assembles the ssh-clipboard command tree.
package commands

import (
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/cli"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/daemoncmd"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/doctor"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/peek"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/proxycmd"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/pull"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/push"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/versioncmd"
)

// Root builds the top-level "ssh-clipboard" command.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "ssh-clipboard",
		Summary: "Share a clipboard value with a remote host over SSH",
		Subcommands: []*cli.Command{
			push.Command(),
			pull.Command(),
			peek.Command(),
			daemoncmd.Command(),
			proxycmd.Command(),
			doctor.Command(),
			versioncmd.Command(),
		},
	}
}
