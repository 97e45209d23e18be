package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesToSubcommand(t *testing.T) {
	var called string
	root := &Command{
		Name: "ssh-clipboard",
		Subcommands: []*Command{
			{Name: "push", Run: func(args []string) error { called = "push"; return nil }},
			{Name: "pull", Run: func(args []string) error { called = "pull"; return nil }},
		},
	}

	if err := root.Execute([]string{"pull"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if called != "pull" {
		t.Fatalf("dispatched to %q, want pull", called)
	}
}

func TestExecuteNestedSubcommands(t *testing.T) {
	var receivedArgs []string
	root := &Command{
		Name: "ssh-clipboard",
		Subcommands: []*Command{
			{
				Name: "pull",
				Subcommands: []*Command{
					{
						Name: "peek",
						Run: func(args []string) error {
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute([]string{"pull", "peek", "extra"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "extra" {
		t.Fatalf("got args %v, want [extra]", receivedArgs)
	}
}

func TestExecuteParsesFlagsBeforeRun(t *testing.T) {
	var target string
	root := &Command{
		Name: "push",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("push", pflag.ContinueOnError)
			fs.StringVar(&target, "target", "", "SSH target")
			return fs
		},
		Run: func(args []string) error { return nil },
	}

	if err := root.Execute([]string{"--target", "user@example.com"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if target != "user@example.com" {
		t.Fatalf("got target %q", target)
	}
}

func TestExecuteUnknownSubcommandSuggestsClosestMatch(t *testing.T) {
	root := &Command{
		Name: "ssh-clipboard",
		Subcommands: []*Command{
			{Name: "push", Run: func(args []string) error { return nil }},
		},
	}

	err := root.Execute([]string{"puhs"})
	if err == nil {
		t.Fatal("expected error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "push") {
		t.Fatalf("error %q does not suggest push", err.Error())
	}
}

func TestExecuteHelpFlagPrintsHelpWithoutError(t *testing.T) {
	root := &Command{Name: "ssh-clipboard", Summary: "clipboard over ssh"}
	if err := root.Execute([]string{"--help"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestPrintHelpListsSubcommandsAndFlags(t *testing.T) {
	var portFlag int
	cmd := &Command{
		Name:    "push",
		Summary: "send clipboard contents",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("push", pflag.ContinueOnError)
			fs.IntVar(&portFlag, "port", 22, "SSH port")
			return fs
		},
		Subcommands: []*Command{
			{Name: "sub", Summary: "a nested thing"},
		},
	}

	var buf bytes.Buffer
	cmd.PrintHelp(&buf)
	out := buf.String()
	if !strings.Contains(out, "send clipboard contents") {
		t.Error("missing summary")
	}
	if !strings.Contains(out, "sub") {
		t.Error("missing subcommand listing")
	}
	if !strings.Contains(out, "--port") {
		t.Error("missing flag listing")
	}
}

func TestExecuteRequiresSubcommandWhenNoneGiven(t *testing.T) {
	root := &Command{
		Name:        "ssh-clipboard",
		Subcommands: []*Command{{Name: "push"}},
	}
	if err := root.Execute(nil); err == nil {
		t.Fatal("expected error when no subcommand given")
	}
}
