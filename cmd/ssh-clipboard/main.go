package main

import (
	"fmt"
	"os"

	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that have already written their own diagnostics
		// (push, pull, peek, doctor) return an *cli.ExitError carrying
		// the exit code they want. Don't print a redundant "error:"
		// line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
