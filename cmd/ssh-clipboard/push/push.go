// Package push implements the "push" subcommand: send the local
// clipboard (or stdin) to the remote daemon as a Set request.
package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/cli"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/clientopts"
	"github.com/johansigfrids/ssh-clipboard/cmd/ssh-clipboard/exitmap"
	"github.com/johansigfrids/ssh-clipboard/internal/clipboardio"
	"github.com/johansigfrids/ssh-clipboard/internal/logging"
	"github.com/johansigfrids/ssh-clipboard/internal/protocol"
	"github.com/johansigfrids/ssh-clipboard/internal/transport"
)

// Command builds the "push" subcommand.
func Command() *cli.Command {
	var fromStdin bool
	var contentType string
	var opts *clientopts.Options

	return &cli.Command{
		Name:    "push",
		Summary: "Send the local clipboard to the remote daemon",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("push", pflag.ContinueOnError)
			fs.BoolVar(&fromStdin, "stdin", false, "read the value from stdin instead of the system clipboard")
			fs.StringVar(&contentType, "content-type", protocol.ContentTypeText, "content type to send (text/plain; charset=utf-8 or image/png)")
			opts = clientopts.Register(fs)
			return fs
		},
		Examples: []cli.Example{
			{Description: "push the local clipboard to a remote host", Command: "ssh-clipboard push --target alice@example.com"},
			{Description: "push arbitrary bytes from stdin", Command: "printf 'hi' | ssh-clipboard push --stdin --target alice@example.com"},
		},
		Run: func(args []string) error {
			return run(fromStdin, contentType, opts)
		},
	}
}

func run(fromStdin bool, contentType string, opts *clientopts.Options) error {
	logger := logging.New(os.Stderr, slog.LevelInfo)

	data, err := readValue(fromStdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ssh-clipboard: reading clipboard input: %v\n", err)
		return &cli.ExitError{Code: exitmap.ClipboardIOFailure}
	}

	cfg, err := opts.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ssh-clipboard: loading config: %v\n", err)
		return &cli.ExitError{Code: exitmap.InvalidRequest}
	}

	if cfg.MaxSize == 0 {
		cfg.MaxSize = protocol.DefaultMaxSize
	}
	if int64(len(data)) > cfg.MaxSize {
		fmt.Fprintf(os.Stderr, "ssh-clipboard: value is %s, exceeds max-size %s\n",
			humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(cfg.MaxSize)))
		return &cli.ExitError{Code: exitmap.PayloadTooLarge}
	}

	req := protocol.Request{
		RequestID: protocol.NewRequestID(),
		Kind:      protocol.RequestSet,
		Value: protocol.ClipboardValue{
			ContentType: contentType,
			Data:        data,
			CreatedAt:   nowMillis(),
		},
	}

	ctx := context.Background()
	resp, err := transport.SendRequest(ctx, cfg, req)
	if err != nil {
		var terr *transport.Error
		if errors.As(err, &terr) {
			fmt.Fprintln(os.Stderr, terr.Error())
			if terr.Stderr != "" {
				fmt.Fprintln(os.Stderr, terr.Stderr)
			}
			return &cli.ExitError{Code: exitmap.ForTransportFailure(terr.Class)}
		}
		logger.Error("push failed", "error", err)
		return &cli.ExitError{Code: exitmap.SSHFailure}
	}

	if resp.Kind == protocol.ResponseError {
		fmt.Fprintln(os.Stderr, resp.Error.Message)
		return &cli.ExitError{Code: exitmap.ForErrorCode(resp.Error.Code)}
	}

	return nil
}

func readValue(fromStdin bool) ([]byte, error) {
	if fromStdin {
		return io.ReadAll(os.Stdin)
	}
	text, err := clipboardio.NewSystemAdapter().ReadText(context.Background())
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
