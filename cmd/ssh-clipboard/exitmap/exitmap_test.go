package exitmap

import (
	"testing"

	"github.com/johansigfrids/ssh-clipboard/internal/protocol"
	"github.com/johansigfrids/ssh-clipboard/internal/transport"
)

func TestForErrorCode(t *testing.T) {
	cases := []struct {
		code protocol.ErrorCode
		want int
	}{
		{protocol.ErrPayloadTooLarge, PayloadTooLarge},
		{protocol.ErrDaemonNotRunning, DaemonNotRunning},
		{protocol.ErrInvalidRequest, InvalidRequest},
		{protocol.ErrInvalidUTF8, InvalidRequest},
		{protocol.ErrVersionMismatch, InvalidRequest},
		{protocol.ErrInternal, InvalidRequest},
	}
	for _, c := range cases {
		if got := ForErrorCode(c.code); got != c.want {
			t.Errorf("ForErrorCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestForTransportFailure(t *testing.T) {
	cases := []struct {
		class transport.FailureClass
		want  int
	}{
		{transport.FailureTimeout, SSHFailure},
		{transport.FailureSSH, SSHFailure},
		{transport.FailureProtocol, InvalidRequest},
	}
	for _, c := range cases {
		if got := ForTransportFailure(c.class); got != c.want {
			t.Errorf("ForTransportFailure(%v) = %d, want %d", c.class, got, c.want)
		}
	}
}
