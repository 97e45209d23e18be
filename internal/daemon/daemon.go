// Package daemon implements the long-lived process that holds the
// single clipboard cell behind a peer-credential-checked Unix socket.
// One process per user; exactly one framed request is served per
// accepted connection.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"sync"
	"syscall"
	"time"
	"unicode/utf8"

	"golang.org/x/sys/unix"

	"github.com/johansigfrids/ssh-clipboard/internal/cell"
	"github.com/johansigfrids/ssh-clipboard/internal/fingerprint"
	"github.com/johansigfrids/ssh-clipboard/internal/frame"
	"github.com/johansigfrids/ssh-clipboard/internal/protocol"
	"github.com/johansigfrids/ssh-clipboard/internal/sockpath"
)

// DefaultIOTimeout is the per-frame read/write deadline on an accepted
// connection.
const DefaultIOTimeout = 7 * time.Second

// Options configures a Daemon.
type Options struct {
	SocketPath string
	MaxSize    int64
	IOTimeout  time.Duration
	Logger     *slog.Logger
}

// Daemon serves the clipboard protocol on a Unix socket.
type Daemon struct {
	socketPath string
	maxSize    int64
	ioTimeout  time.Duration
	logger     *slog.Logger

	cell *cell.Cell

	listener net.Listener
	active   sync.WaitGroup
}

// New constructs a Daemon without binding a socket yet. Call Listen
// before Serve.
func New(opts Options) *Daemon {
	ioTimeout := opts.IOTimeout
	if ioTimeout <= 0 {
		ioTimeout = DefaultIOTimeout
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = protocol.DefaultMaxSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		socketPath: sockpath.Resolve(opts.SocketPath),
		maxSize:    maxSize,
		ioTimeout:  ioTimeout,
		logger:     logger,
		cell:       cell.New(),
	}
}

// SocketPath returns the resolved socket path this daemon binds to.
func (d *Daemon) SocketPath() string { return d.socketPath }

// Listen prepares the socket directory, checks for and clears a stale
// socket file, binds the listener, and chmods it to 0600. It must be
// called exactly once before Serve.
func (d *Daemon) Listen() error {
	dir := sockpath.Dir(d.socketPath)
	if err := prepareDir(dir); err != nil {
		return err
	}
	if err := reclaimStaleSocket(d.socketPath); err != nil {
		return err
	}

	oldMask := unix.Umask(0o077)
	listener, err := net.Listen("unix", d.socketPath)
	unix.Umask(oldMask)
	if err != nil {
		return fmt.Errorf("daemon: bind %s: %w", d.socketPath, err)
	}
	if err := os.Chmod(d.socketPath, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("daemon: chmod socket: %w", err)
	}

	d.listener = listener
	return nil
}

// prepareDir creates dir with mode 0700 if absent. If it already
// exists it must be a directory owned by the current user with no
// group/other permission bits, or Listen refuses to start.
func prepareDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return os.MkdirAll(dir, 0o700)
	}
	if err != nil {
		return fmt.Errorf("daemon: stat socket dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("daemon: socket dir %s exists and is not a directory", dir)
	}
	if info.Mode().Perm()&0o077 != 0 {
		return fmt.Errorf("daemon: socket dir %s has group/other permissions set (mode %o)", dir, info.Mode().Perm())
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if ok && stat.Uid != uint32(os.Getuid()) {
		return fmt.Errorf("daemon: socket dir %s is owned by uid %d, not %d", dir, stat.Uid, os.Getuid())
	}
	return nil
}

// reclaimStaleSocket removes an existing socket file at path, but only
// after confirming no daemon is actually listening on it.
func reclaimStaleSocket(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("daemon: stat socket path: %w", err)
	}

	conn, err := net.DialTimeout("unix", path, 200*time.Millisecond)
	if err == nil {
		conn.Close()
		return fmt.Errorf("daemon: another daemon is already listening on %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("daemon: removing stale socket %s: %w", path, err)
	}
	return nil
}

// Serve accepts connections until ctx is cancelled, dispatching each
// to its own goroutine. It returns once every in-flight connection has
// finished.
func (d *Daemon) Serve(ctx context.Context) error {
	if d.listener == nil {
		return errors.New("daemon: Listen must be called before Serve")
	}

	go func() {
		<-ctx.Done()
		d.listener.Close()
	}()

	d.logger.Info("daemon listening", "socket", d.socketPath, "max_size", d.maxSize)

	for {
		conn, err := d.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			d.logger.Error("accept failed", "error", err)
			continue
		}
		d.active.Add(1)
		go func() {
			defer d.active.Done()
			d.handleConnection(conn)
		}()
	}

	d.active.Wait()
	os.Remove(d.socketPath)
	return nil
}

// handleConnection enforces the peer-uid check, reads exactly one
// frame, dispatches it, and writes exactly one frame in reply.
func (d *Daemon) handleConnection(conn net.Conn) {
	defer conn.Close()

	if err := d.checkPeerUID(conn); err != nil {
		d.logger.Warn("peer credential check failed", "error", err)
		return
	}

	deadline := time.Now().Add(d.ioTimeout)
	conn.SetReadDeadline(deadline)

	result, err := frame.Read(conn, int(d.maxSize))
	if err != nil {
		d.writeErrorFrame(conn, 0, mapFrameError(err))
		return
	}

	req, err := protocol.DecodeRequest(result.Payload)
	if err != nil {
		d.writeErrorFrame(conn, 0, protocol.ErrorInfo{Code: protocol.ErrInvalidRequest, Message: err.Error()})
		return
	}

	resp := d.dispatch(req)

	conn.SetWriteDeadline(time.Now().Add(d.ioTimeout))
	d.writeResponse(conn, resp)
}

func (d *Daemon) checkPeerUID(conn net.Conn) error {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return fmt.Errorf("daemon: connection is not a Unix socket")
	}
	raw, err := unixConn.SyscallConn()
	if err != nil {
		return fmt.Errorf("daemon: SyscallConn: %w", err)
	}

	var cred *unix.Ucred
	var credErr error
	if err := raw.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return fmt.Errorf("daemon: syscall control: %w", err)
	}
	if credErr != nil {
		return fmt.Errorf("daemon: SO_PEERCRED: %w", credErr)
	}

	want := uint32(os.Getuid())
	if cred.Uid != want {
		return fmt.Errorf("peer uid mismatch: expected %d, got %d", want, cred.Uid)
	}
	return nil
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

// dispatch applies one request to the cell and builds the matching
// response. It never returns an error: all failures are represented
// as an Error response so the caller always has exactly one frame to
// write back.
func (d *Daemon) dispatch(req protocol.Request) protocol.Response {
	switch req.Kind {
	case protocol.RequestGet:
		value, ok := d.cell.Get()
		if !ok {
			return protocol.EmptyResponse(req.RequestID)
		}
		return protocol.ValueResponse(req.RequestID, value)

	case protocol.RequestPeekMeta:
		meta, ok := d.cell.Meta()
		if !ok {
			return protocol.EmptyResponse(req.RequestID)
		}
		return protocol.MetaResponse(req.RequestID, meta)

	case protocol.RequestSet:
		if errInfo, bad := d.validateValue(req.Value); bad {
			return protocol.ErrorResponse(req.RequestID, errInfo.Code, errInfo.Message)
		}
		d.cell.Set(req.Value)
		d.logger.Debug("clipboard set",
			"content_type", req.Value.ContentType,
			"size", len(req.Value.Data),
			"fingerprint", fingerprint.Of(req.Value.Data),
		)
		return protocol.OkResponse(req.RequestID)

	default:
		return protocol.ErrorResponse(req.RequestID, protocol.ErrInvalidRequest, "unknown request kind")
	}
}

func (d *Daemon) validateValue(v protocol.ClipboardValue) (protocol.ErrorInfo, bool) {
	if v.ContentType != protocol.ContentTypeText && v.ContentType != protocol.ContentTypePNG {
		return protocol.ErrorInfo{Code: protocol.ErrInvalidRequest, Message: "invalid content type"}, true
	}
	if int64(len(v.Data)) > d.maxSize {
		return protocol.ErrorInfo{Code: protocol.ErrPayloadTooLarge, Message: "payload too large"}, true
	}
	if v.ContentType == protocol.ContentTypeText && !utf8.Valid(v.Data) {
		return protocol.ErrorInfo{Code: protocol.ErrInvalidUTF8, Message: "invalid utf-8"}, true
	}
	return protocol.ErrorInfo{}, false
}

func (d *Daemon) writeErrorFrame(conn net.Conn, requestID uint64, info protocol.ErrorInfo) {
	conn.SetWriteDeadline(time.Now().Add(d.ioTimeout))
	d.writeResponse(conn, protocol.ErrorResponse(requestID, info.Code, info.Message))
}

func (d *Daemon) writeResponse(conn net.Conn, resp protocol.Response) {
	payload := protocol.EncodeResponse(resp)
	if err := frame.Write(conn, payload); err != nil {
		d.logger.Debug("write response failed", "error", err)
	}
}
