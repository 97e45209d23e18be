// Package versioncmd implements the trivial "version" subcommand.
package versioncmd

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/cli"
	"github.com/johansigfrids/ssh-clipboard/internal/version"
)

// Command builds the "version" subcommand.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print the ssh-clipboard version",
		Flags: func() *pflag.FlagSet {
			return pflag.NewFlagSet("version", pflag.ContinueOnError)
		},
		Run: func(args []string) error {
			fmt.Println(version.String())
			return nil
		},
	}
}
