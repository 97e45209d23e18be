// Package peek implements the "peek" subcommand and the metadata
// rendering shared with "pull --peek".
package peek

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/cli"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/clientopts"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/exitmap"
	"github.com/johansigfrids/ssh-clipboard/internal/protocol"
	"github.com/johansigfrids/ssh-clipboard/internal/transport"
)

// Command builds the "peek" subcommand.
func Command() *cli.Command {
	var asJSON bool
	var opts *clientopts.Options

	return &cli.Command{
		Name:    "peek",
		Summary: "Fetch remote clipboard metadata without transferring content",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("peek", pflag.ContinueOnError)
			fs.BoolVar(&asJSON, "json", false, "print metadata as JSON")
			opts = clientopts.Register(fs)
			return fs
		},
		Examples: []cli.Example{
			{Description: "check what's on the remote clipboard", Command: "ssh-clipboard peek --target alice@example.com"},
		},
		Run: func(args []string) error {
			return Run(asJSON, opts)
		},
	}
}

// Run sends a PeekMeta request and renders the result. Shared with
// "pull --peek".
func Run(asJSON bool, opts *clientopts.Options) error {
	cfg, err := opts.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ssh-clipboard: loading config: %v\n", err)
		return &cli.ExitError{Code: exitmap.InvalidRequest}
	}

	req := protocol.Request{RequestID: protocol.NewRequestID(), Kind: protocol.RequestPeekMeta}
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
		return renderEmpty(asJSON)
	case protocol.ResponseError:
		fmt.Fprintln(os.Stderr, resp.Error.Message)
		return &cli.ExitError{Code: exitmap.ForErrorCode(resp.Error.Code)}
	case protocol.ResponseMeta:
		return renderMeta(resp.Meta, asJSON)
	default:
		fmt.Fprintf(os.Stderr, "ssh-clipboard: unexpected response kind %s\n", resp.Kind)
		return &cli.ExitError{Code: exitmap.InvalidRequest}
	}
}

// metaView is the JSON shape printed by --json; human output uses the
// same fields in a short plain-text form.
type metaView struct {
	ContentType string `json:"content_type"`
	Size        uint64 `json:"size"`
	CreatedAt   string `json:"created_at"`
	Empty       bool   `json:"empty"`
}

func renderMeta(meta protocol.Meta, asJSON bool) error {
	view := metaView{
		ContentType: meta.ContentType,
		Size:        meta.Size,
		CreatedAt:   time.UnixMilli(meta.CreatedAt).UTC().Format(time.RFC3339),
	}
	if asJSON {
		return printJSON(view)
	}
	fmt.Printf("%s, %s (%d bytes), created %s\n", view.ContentType, humanize.Bytes(view.Size), view.Size, view.CreatedAt)
	return nil
}

func renderEmpty(asJSON bool) error {
	if asJSON {
		return printJSON(metaView{Empty: true})
	}
	fmt.Println("remote clipboard is empty")
	return nil
}

func printJSON(v metaView) error {
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(v)
}
