// Package pull implements the "pull" subcommand: fetch the remote
// clipboard value and write it to the local clipboard, stdout, or a
// file.
package pull

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/cli"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/clientopts"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/exitmap"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/peek"
	"github.com/johansigfrids/ssh-clipboard/internal/clipboardio"
	"github.com/johansigfrids/ssh-clipboard/internal/protocol"
	"github.com/johansigfrids/ssh-clipboard/internal/transport"
)

// Command builds the "pull" subcommand.
func Command() *cli.Command {
	var toStdout bool
	var outputPath string
	var base64Out bool
	var peekOnly bool
	var asJSON bool
	var opts *clientopts.Options

	return &cli.Command{
		Name:    "pull",
		Summary: "Fetch the remote clipboard and write it locally",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("pull", pflag.ContinueOnError)
			fs.BoolVar(&toStdout, "stdout", false, "write the value to stdout instead of the system clipboard")
			fs.StringVar(&outputPath, "output", "", "write the value to this file instead of the system clipboard")
			fs.BoolVar(&base64Out, "base64", false, "base64-encode the value (implies --stdout unless --output is set)")
			fs.BoolVar(&peekOnly, "peek", false, "request metadata only, without transferring content")
			fs.BoolVar(&asJSON, "json", false, "with --peek, print metadata as JSON")
			opts = clientopts.Register(fs)
			return fs
		},
		Examples: []cli.Example{
			{Description: "pull the remote clipboard into the local one", Command: "ssh-clipboard pull --target alice@example.com"},
			{Description: "save a remote image to a file", Command: "ssh-clipboard pull --output screenshot.png --target alice@example.com"},
			{Description: "check metadata before transferring", Command: "ssh-clipboard pull --peek --json --target alice@example.com"},
		},
		Run: func(args []string) error {
			if peekOnly {
				return peek.Run(asJSON, opts)
			}
			return run(toStdout, outputPath, base64Out, opts)
		},
	}
}

func run(toStdout bool, outputPath string, base64Out bool, opts *clientopts.Options) error {
	cfg, err := opts.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ssh-clipboard: loading config: %v\n", err)
		return &cli.ExitError{Code: exitmap.InvalidRequest}
	}

	req := protocol.Request{RequestID: protocol.NewRequestID(), Kind: protocol.RequestGet}

	resp, err := transport.SendRequest(context.Background(), cfg, req)
	if err != nil {
		var terr *transport.Error
		if errors.As(err, &terr) {
			fmt.Fprintln(os.Stderr, terr.Error())
			if terr.Stderr != "" {
				fmt.Fprintln(os.Stderr, terr.Stderr)
			}
			return &cli.ExitError{Code: exitmap.ForTransportFailure(terr.Class)}
		}
		fmt.Fprintf(os.Stderr, "ssh-clipboard: %v\n", err)
		return &cli.ExitError{Code: exitmap.SSHFailure}
	}

	switch resp.Kind {
	case protocol.ResponseEmpty:
		fmt.Fprintln(os.Stderr, "ssh-clipboard: remote clipboard is empty")
		return &cli.ExitError{Code: exitmap.InvalidRequest}
	case protocol.ResponseError:
		fmt.Fprintln(os.Stderr, resp.Error.Message)
		return &cli.ExitError{Code: exitmap.ForErrorCode(resp.Error.Code)}
	case protocol.ResponseValue:
		return deliver(resp.Value, toStdout, outputPath, base64Out)
	default:
		fmt.Fprintf(os.Stderr, "ssh-clipboard: unexpected response kind %s\n", resp.Kind)
		return &cli.ExitError{Code: exitmap.InvalidRequest}
	}
}

func deliver(value protocol.ClipboardValue, toStdout bool, outputPath string, base64Out bool) error {
	if outputPath != "" {
		data := value.Data
		if base64Out {
			data = []byte(base64.StdEncoding.EncodeToString(data))
		}
		if err := os.WriteFile(outputPath, data, 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "ssh-clipboard: writing %s: %v\n", outputPath, err)
			return &cli.ExitError{Code: exitmap.ClipboardIOFailure}
		}
		return nil
	}

	if base64Out || toStdout {
		out := value.Data
		if base64Out {
			fmt.Fprintln(os.Stdout, base64.StdEncoding.EncodeToString(out))
		} else {
			os.Stdout.Write(out)
		}
		return nil
	}

	if value.ContentType != protocol.ContentTypeText {
		fmt.Fprintf(os.Stderr, "ssh-clipboard: unsupported content type %q; use --output or --base64 to retrieve it\n", value.ContentType)
		return &cli.ExitError{Code: exitmap.InvalidRequest}
	}

	if err := clipboardio.NewSystemAdapter().WriteText(context.Background(), string(value.Data)); err != nil {
		fmt.Fprintf(os.Stderr, "ssh-clipboard: writing local clipboard: %v\n", err)
		return &cli.ExitError{Code: exitmap.ClipboardIOFailure}
	}
	return nil
}
