// Package transport spawns the external ssh binary, writes one
// request frame to its stdin, and reads one response frame from its
// stdout — the client side of the protocol. It never links an
// in-process SSH implementation: the contract is "attach three pipes,
// no TTY, deterministic argv, timeout-killable".
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/johansigfrids/ssh-clipboard/internal/frame"
	"github.com/johansigfrids/ssh-clipboard/internal/protocol"
)

// DefaultTimeout is the wall-clock deadline for one request/response
// round trip, including SSH connection setup.
const DefaultTimeout = 7 * time.Second

// DefaultResyncMaxBytes bounds how much leading garbage the client's
// frame reader will discard before giving up.
const DefaultResyncMaxBytes = frame.DefaultResyncMaxBytes

// remoteCommand is the command line the proxy is invoked with on the
// remote host.
const remoteCommand = "ssh_clipboard proxy"

// FailureClass distinguishes why SendRequest failed, so callers can
// map to the stable client exit code contract.
type FailureClass int

const (
	// FailureNone indicates success; Err is nil.
	FailureNone FailureClass = iota
	// FailureTimeout indicates the wall-clock deadline expired.
	FailureTimeout
	// FailureSSH indicates the ssh child process itself failed
	// (spawn, auth, transport) with no usable response frame.
	FailureSSH
	// FailureProtocol indicates a response frame was read but could
	// not be decoded, or no frame was found at all.
	FailureProtocol
)

// Error wraps a transport failure with its classification.
type Error struct {
	Class   FailureClass
	Stderr  string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Config describes how to reach the daemon via SSH.
type Config struct {
	Target       string
	Host         string
	User         string
	Port         int
	IdentityFile string
	SSHOptions   []string
	SSHBin       string

	MaxSize        int64
	Timeout        time.Duration
	StrictFrames   bool
	ResyncMaxBytes int

	// CommandFactory overrides exec.Command for testing. Defaults to
	// exec.CommandContext.
	CommandFactory func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func (c Config) commandFactory() func(context.Context, string, ...string) *exec.Cmd {
	if c.CommandFactory != nil {
		return c.CommandFactory
	}
	return exec.CommandContext
}

func (c Config) maxSize() int64 {
	if c.MaxSize > 0 {
		return c.MaxSize
	}
	return protocol.DefaultMaxSize
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c Config) resyncMaxBytes() int {
	if c.StrictFrames {
		return 0
	}
	if c.ResyncMaxBytes > 0 {
		return c.ResyncMaxBytes
	}
	return DefaultResyncMaxBytes
}

// ResolveTarget returns the SSH destination string, preferring an
// explicit Target over a Host/User combination.
func (c Config) ResolveTarget() string {
	if c.Target != "" {
		return c.Target
	}
	switch {
	case c.User != "" && c.Host != "":
		return c.User + "@" + c.Host
	case c.Host != "":
		return c.Host
	default:
		return ""
	}
}

// ResolveTargetAndPort splits an inline ":<port>" suffix from a bare
// hostname target. An explicit Port, when set, wins over the inline
// one (the suffix is still stripped from the target). A host portion
// with more than one colon, such as a bracketed IPv6 literal, is left
// untouched — use --port explicitly for those.
func (c Config) ResolveTargetAndPort() (string, int) {
	target, inlinePort := splitTargetAndPort(c.ResolveTarget())
	if c.Port != 0 {
		return target, c.Port
	}
	return target, inlinePort
}

func splitTargetAndPort(target string) (string, int) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", 0
	}

	hostPart := target
	if idx := strings.LastIndex(target, "@"); idx != -1 {
		hostPart = target[idx+1:]
	}
	if strings.Count(hostPart, ":") != 1 {
		return target, 0
	}

	lastColon := strings.LastIndex(target, ":")
	portStr := target[lastColon+1:]
	if portStr == "" {
		return target, 0
	}
	for _, r := range portStr {
		if r < '0' || r > '9' {
			return target, 0
		}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return target, 0
	}
	return target[:lastColon], port
}

// buildArgs constructs the ssh argv in the required order: -T, then
// -p/-i/-o options, then the target, then the remote command.
func buildArgs(c Config) ([]string, error) {
	target, port := c.ResolveTargetAndPort()
	if strings.TrimSpace(target) == "" {
		return nil, errors.New("transport: missing SSH target (use --target or --host)")
	}

	args := []string{"-T"}
	if port != 0 {
		args = append(args, "-p", strconv.Itoa(port))
	}
	if c.IdentityFile != "" {
		args = append(args, "-i", c.IdentityFile)
	}
	for _, opt := range c.SSHOptions {
		args = append(args, "-o", opt)
	}
	args = append(args, target, remoteCommand)
	return args, nil
}

// SendRequest spawns ssh, writes req as a single frame to its stdin,
// and reads exactly one response frame from its stdout. The returned
// error, when non-nil, can be unwrapped to *Error for classification.
func SendRequest(ctx context.Context, cfg Config, req protocol.Request) (protocol.Response, error) {
	args, err := buildArgs(cfg)
	if err != nil {
		return protocol.Response{}, &Error{Class: FailureSSH, Message: err.Error()}
	}

	sshBin := cfg.SSHBin
	if sshBin == "" {
		sshBin = "ssh"
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	cmd := cfg.commandFactory()(ctx, sshBin, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return protocol.Response{}, &Error{Class: FailureSSH, Message: fmt.Sprintf("transport: stdin pipe: %v", err)}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return protocol.Response{}, &Error{Class: FailureSSH, Message: fmt.Sprintf("transport: stdout pipe: %v", err)}
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return protocol.Response{}, &Error{Class: FailureSSH, Message: fmt.Sprintf("transport: spawning ssh: %v", err)}
	}

	payload := protocol.EncodeRequest(req)
	writeErr := writeRequest(stdin, payload)

	response, readErr := readResponse(stdout, cfg)

	waitErr := cmd.Wait()

	if ctx.Err() == context.DeadlineExceeded {
		return protocol.Response{}, &Error{Class: FailureTimeout, Stderr: stderr.String(), Message: "transport: operation timed out"}
	}

	if readErr == nil {
		// The framed response is authoritative even if the child
		// process itself exited non-zero (e.g. ssh prints a harmless
		// warning to stderr but the proxy still replied).
		return response, nil
	}

	if writeErr != nil {
		return protocol.Response{}, &Error{Class: FailureSSH, Stderr: stderr.String(), Message: fmt.Sprintf("transport: writing request: %v", writeErr)}
	}

	if waitErr != nil {
		message := stderr.String()
		if strings.TrimSpace(message) == "" {
			message = waitErr.Error()
		}
		return protocol.Response{}, &Error{Class: FailureSSH, Stderr: stderr.String(), Message: fmt.Sprintf("transport: ssh failed: %s", message)}
	}

	return protocol.Response{}, &Error{Class: FailureProtocol, Stderr: stderr.String(), Message: fmt.Sprintf("transport: reading response: %v", readErr)}
}

func writeRequest(stdin io.WriteCloser, payload []byte) error {
	defer stdin.Close()
	return frame.Write(stdin, payload)
}

func readResponse(stdout io.Reader, cfg Config) (protocol.Response, error) {
	maxSize := int(cfg.maxSize()) + responseOverhead

	var result frame.ReadResult
	var err error
	if cfg.StrictFrames {
		result, err = frame.Read(stdout, maxSize)
	} else {
		result, err = frame.ReadResync(stdout, maxSize, cfg.resyncMaxBytes())
	}
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.DecodeResponse(result.Payload)
}

// responseOverhead accounts for the envelope a Value response adds
// around max_size bytes of data (request id, kind tag, content type,
// length prefixes, created_at), which puts it past max_size.
const responseOverhead = 4096
