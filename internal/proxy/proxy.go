// Package proxy implements the one-shot bridge invoked over SSH as
// "ssh_clipboard proxy": it reads one request frame from stdin, hands
// it to the local daemon unchanged, and writes the daemon's response
// frame to stdout. It never parses payload contents.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"time"

	"github.com/johansigfrids/ssh-clipboard/internal/frame"
	"github.com/johansigfrids/ssh-clipboard/internal/protocol"
	"github.com/johansigfrids/ssh-clipboard/internal/sockpath"
)

// Exit codes, stable for SSH-side scripting. These are the proxy
// process's own exit status, independent of the client-side exit code
// contract (cmd/ssh-clipboard/exitmap), which interprets the response
// frame itself.
const (
	ExitOK               = 0
	ExitInvalidRequest   = 2
	ExitPayloadTooLarge  = 3
	ExitDaemonNotRunning = 4
	ExitInternal         = 5
)

// connectRetryAttempts bounds the number of connect attempts when
// autostart is enabled; attempts are connectRetryDelay apart, so the
// retries span about 400ms plus the dial time.
const connectRetryAttempts = 3

const connectRetryDelay = 200 * time.Millisecond

// Options configures one proxy invocation.
type Options struct {
	SocketPath      string
	MaxSize         int64
	IOTimeout       time.Duration
	AutostartDaemon bool
	Logger          *slog.Logger

	// DaemonBin overrides the executable spawned for autostart.
	// Defaults to os.Executable().
	DaemonBin string
}

// Run executes exactly one bridge cycle: read a request frame from
// in, forward it to the daemon, write the daemon's response frame to
// out. It returns the process exit code to use.
func Run(ctx context.Context, in io.Reader, out io.Writer, opts Options) int {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = protocol.DefaultMaxSize
	}
	ioTimeout := opts.IOTimeout
	if ioTimeout <= 0 {
		ioTimeout = 7 * time.Second
	}
	socketPath := sockpath.Resolve(opts.SocketPath)

	requestResult, err := frame.Read(in, int(maxSize))
	if err != nil {
		logger.Error("reading request frame from stdin failed", "error", err)
		writeErrorFrame(out, 0, mapFrameError(err))
		return exitForFrameError(err)
	}

	requestID := requestIDOf(requestResult.Payload)

	conn, err := connectDaemon(ctx, socketPath, ioTimeout, opts.AutostartDaemon, opts.DaemonBin, logger)
	if err != nil {
		logger.Error("connecting to daemon failed", "error", err, "socket", socketPath)
		fmt.Fprintln(os.Stderr, err.Error())
		writeErrorFrame(out, requestID, protocol.ErrorInfo{Code: protocol.ErrDaemonNotRunning, Message: err.Error()})
		return ExitDaemonNotRunning
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(ioTimeout))
	if err := frame.Write(conn, requestResult.Payload); err != nil {
		logger.Error("forwarding request to daemon failed", "error", err)
		writeErrorFrame(out, requestID, protocol.ErrorInfo{Code: protocol.ErrInternal, Message: err.Error()})
		return ExitInternal
	}

	conn.SetReadDeadline(time.Now().Add(ioTimeout))
	responseResult, err := frame.Read(conn, int(maxSize)+responseOverhead)
	if err != nil {
		logger.Error("reading response from daemon failed", "error", err)
		writeErrorFrame(out, requestID, protocol.ErrorInfo{Code: protocol.ErrInternal, Message: err.Error()})
		return ExitInternal
	}

	if err := frame.Write(out, responseResult.Payload); err != nil {
		logger.Error("writing response frame to stdout failed", "error", err)
		return ExitInternal
	}

	return exitForResponse(responseResult.Payload)
}

// responseOverhead accounts for the envelope a Value response adds
// around max_size bytes of data (request id, kind tag, content type,
// length prefixes, created_at), which puts it past max_size.
const responseOverhead = 4096

func requestIDOf(payload []byte) uint64 {
	req, err := protocol.DecodeRequest(payload)
	if err != nil {
		return 0
	}
	return req.RequestID
}

func mapFrameError(err error) protocol.ErrorInfo {
	var ferr *frame.Error
	if errors.As(err, &ferr) {
		code := protocol.ErrInternal
		switch ferr.Code {
		case frame.CodeInvalidRequest:
			code = protocol.ErrInvalidRequest
		case frame.CodeVersionMismatch:
			code = protocol.ErrVersionMismatch
		case frame.CodePayloadTooLarge:
			code = protocol.ErrPayloadTooLarge
		}
		return protocol.ErrorInfo{Code: code, Message: ferr.Message}
	}
	return protocol.ErrorInfo{Code: protocol.ErrInternal, Message: err.Error()}
}

func exitForFrameError(err error) int {
	var ferr *frame.Error
	if errors.As(err, &ferr) {
		switch ferr.Code {
		case frame.CodePayloadTooLarge:
			return ExitPayloadTooLarge
		default:
			return ExitInvalidRequest
		}
	}
	return ExitInvalidRequest
}

func exitForResponse(payload []byte) int {
	resp, err := protocol.DecodeResponse(payload)
	if err != nil {
		return ExitInternal
	}
	if resp.Kind != protocol.ResponseError {
		return ExitOK
	}
	switch resp.Error.Code {
	case protocol.ErrPayloadTooLarge:
		return ExitPayloadTooLarge
	case protocol.ErrDaemonNotRunning:
		return ExitDaemonNotRunning
	case protocol.ErrInvalidRequest, protocol.ErrInvalidUTF8, protocol.ErrVersionMismatch:
		return ExitInvalidRequest
	default:
		return ExitInternal
	}
}

func writeErrorFrame(out io.Writer, requestID uint64, info protocol.ErrorInfo) {
	resp := protocol.ErrorResponse(requestID, info.Code, info.Message)
	frame.Write(out, protocol.EncodeResponse(resp))
}

// connectDaemon dials the daemon socket, optionally autostarting the
// daemon and retrying with a fixed backoff when the first attempt
// fails and autostart is enabled.
func connectDaemon(ctx context.Context, socketPath string, ioTimeout time.Duration, autostart bool, daemonBin string, logger *slog.Logger) (net.Conn, error) {
	var lastErr error
	started := false

	for attempt := 1; attempt <= connectRetryAttempts; attempt++ {
		conn, err := net.DialTimeout("unix", socketPath, ioTimeout)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		if autostart && !started {
			if spawnErr := spawnDaemon(daemonBin, socketPath); spawnErr != nil {
				return nil, fmt.Errorf("daemon autostart failed: %w", spawnErr)
			}
			started = true
			logger.Info("autostarted daemon", "socket", socketPath)
		} else if !autostart || attempt >= connectRetryAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectRetryDelay):
		}
	}

	return nil, fmt.Errorf("daemon not running or socket unavailable at %s: %w", socketPath, lastErr)
}

// spawnDaemon launches a detached daemon process bound to the given
// socket path. Stdio is discarded: nothing reads a backgrounded
// daemon's output.
func spawnDaemon(daemonBin, socketPath string) error {
	exe := daemonBin
	if exe == "" {
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("proxy: resolving own executable: %w", err)
		}
		exe = self
	}

	cmd := exec.Command(exe, "daemon", "--socket-path", socketPath)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	setDetached(cmd)

	return cmd.Start()
}
