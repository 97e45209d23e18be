// Package frame implements the ssh-clipboard wire framing layer: a
// fixed header (MAGIC, VERSION, LEN) wrapped around one serialized
// protocol.Request or protocol.Response, plus the client-side resync
// tolerance for noisy shells (MOTD banners, TTY echo) that precede the
// real frame on a freshly spawned SSH session.
package frame

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic is the four-byte marker identifying a protocol frame.
var Magic = [4]byte{'S', 'C', 'B', '1'}

// Version is the frame header's protocol version. Must match
// protocol.Version.
const Version uint16 = 2

// headerLen is the fixed size of everything before PAYLOAD: 4 bytes
// magic, 2 bytes version, 4 bytes length.
const headerLen = 4 + 2 + 4

// DefaultResyncMaxBytes bounds how many non-magic bytes the client
// reader will discard before giving up.
const DefaultResyncMaxBytes = 8192

// Error is a sentinel-comparable framing failure. Callers map these to
// protocol.ErrorCode values (see internal/daemon and internal/proxy).
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error codes returned by Read/ReadResync. These mirror the identifiers
// used by protocol.ErrorCode so callers can map them directly.
const (
	CodeInvalidRequest  = "invalid_request"
	CodeVersionMismatch = "version_mismatch"
	CodePayloadTooLarge = "payload_too_large"
)

// Write encodes payload as a single frame and writes it to w.
func Write(w io.Writer, payload []byte) error {
	var header [headerLen]byte
	copy(header[0:4], Magic[:])
	binary.LittleEndian.PutUint16(header[4:6], Version)
	binary.LittleEndian.PutUint32(header[6:10], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("frame: write header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("frame: write payload: %w", err)
		}
	}
	return nil
}

// ReadResult is the outcome of a successful frame read, including how
// many non-magic bytes were discarded finding the frame (zero unless
// resync was used and the stream was prefixed by garbage).
type ReadResult struct {
	Payload        []byte
	DiscardedBytes int
}

// Read reads exactly one frame from r with no resync tolerance: the
// stream must begin with MAGIC. This is the server-side reader (proxy
// reading client stdin, daemon reading its socket) — those streams
// never carry a shell banner or MOTD in front of the frame.
func Read(r io.Reader, maxSize int) (ReadResult, error) {
	return read(r, maxSize, false, 0)
}

// ReadResync reads one frame from r, tolerating up to maxScanBytes of
// non-magic bytes before the real frame. This is the client-side
// reader only.
func ReadResync(r io.Reader, maxSize, maxScanBytes int) (ReadResult, error) {
	return read(r, maxSize, true, maxScanBytes)
}

func read(r io.Reader, maxSize int, resync bool, maxScanBytes int) (ReadResult, error) {
	discarded, err := readMagic(r, resync, maxScanBytes)
	if err != nil {
		return ReadResult{}, err
	}

	var versionBytes [2]byte
	if _, err := io.ReadFull(r, versionBytes[:]); err != nil {
		return ReadResult{}, fmt.Errorf("frame: read version: %w", err)
	}
	version := binary.LittleEndian.Uint16(versionBytes[:])
	if version != Version {
		return ReadResult{}, newError(CodeVersionMismatch, "frame: version mismatch: got %d, want %d", version, Version)
	}

	var lenBytes [4]byte
	if _, err := io.ReadFull(r, lenBytes[:]); err != nil {
		return ReadResult{}, fmt.Errorf("frame: read length: %w", err)
	}
	length := binary.LittleEndian.Uint32(lenBytes[:])
	if length > uint32(maxSize) {
		return ReadResult{}, newError(CodePayloadTooLarge, "frame: payload length %d exceeds maximum %d", length, maxSize)
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return ReadResult{}, fmt.Errorf("frame: read payload: %w", err)
		}
	}

	return ReadResult{Payload: payload, DiscardedBytes: discarded}, nil
}

// readMagic consumes bytes from r until a four-byte window equal to
// Magic has been read, returning the number of bytes discarded before
// it. When resync is false, the first four bytes must equal Magic or
// the read fails immediately.
func readMagic(r io.Reader, resync bool, maxScanBytes int) (int, error) {
	var window [4]byte
	if _, err := io.ReadFull(r, window[:]); err != nil {
		return 0, fmt.Errorf("frame: read magic: %w", err)
	}
	if window == Magic {
		return 0, nil
	}
	if !resync {
		return 0, newError(CodeInvalidRequest, "frame: invalid magic %x", window)
	}

	first := window
	discarded := 0
	var b [1]byte
	for {
		if discarded >= maxScanBytes {
			return discarded, newError(CodeInvalidRequest,
				"frame: magic not found within %d bytes (first bytes: %x)", maxScanBytes, first)
		}
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return discarded, fmt.Errorf("frame: resync scan: %w", err)
		}
		discarded++
		window[0], window[1], window[2], window[3] = window[1], window[2], window[3], b[0]
		if window == Magic {
			return discarded, nil
		}
	}
}
