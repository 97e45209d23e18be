// Package exitmap maps protocol error codes and transport failure
// classes to the stable client exit code contract:
//
//	0  success
//	2  invalid request/response, or unsupported content
//	3  payload too large
//	4  daemon not running / socket unavailable
//	5  SSH spawn/auth/transport failure
//	6  clipboard read/write failure
package exitmap

import (
	"github.com/johansigfrids/ssh-clipboard/internal/protocol"
	"github.com/johansigfrids/ssh-clipboard/internal/transport"
)

const (
	OK                 = 0
	InvalidRequest     = 2
	PayloadTooLarge    = 3
	DaemonNotRunning   = 4
	SSHFailure         = 5
	ClipboardIOFailure = 6
)

// ForErrorCode maps a protocol-level error code to its client exit
// code.
func ForErrorCode(code protocol.ErrorCode) int {
	switch code {
	case protocol.ErrPayloadTooLarge:
		return PayloadTooLarge
	case protocol.ErrDaemonNotRunning:
		return DaemonNotRunning
	case protocol.ErrInvalidRequest, protocol.ErrInvalidUTF8, protocol.ErrVersionMismatch:
		return InvalidRequest
	default:
		return InvalidRequest
	}
}

// ForTransportFailure maps a transport-layer failure classification
// to its client exit code.
func ForTransportFailure(class transport.FailureClass) int {
	switch class {
	case transport.FailureTimeout, transport.FailureSSH:
		return SSHFailure
	case transport.FailureProtocol:
		return InvalidRequest
	default:
		return SSHFailure
	}
}
