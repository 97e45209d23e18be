package frame

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	payload := []byte("hello frame")
	if err := Write(&buf, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	result, err := Read(&buf, 1024)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(result.Payload, payload) {
		t.Fatalf("got payload %q, want %q", result.Payload, payload)
	}
	if result.DiscardedBytes != 0 {
		t.Fatalf("got discarded %d, want 0", result.DiscardedBytes)
	}
}

func TestWriteReadEmptyPayload(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	result, err := Read(&buf, 1024)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(result.Payload) != 0 {
		t.Fatalf("got payload %q, want empty", result.Payload)
	}
}

func TestReadRejectsOversizedLengthBeforeAllocating(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := Write(&buf, make([]byte, 2048)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_, err := Read(&buf, 1024)
	if err == nil {
		t.Fatal("expected error for oversized payload, got nil")
	}
	fe, ok := err.(*Error)
	if !ok || fe.Code != CodePayloadTooLarge {
		t.Fatalf("got error %v, want payload_too_large", err)
	}
}

func TestReadRejectsBadMagicWithoutResync(t *testing.T) {
	t.Parallel()
	buf := bytes.NewBufferString("Last login: Mon\n$ ")
	_, err := Read(buf, 1024)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	fe, ok := err.(*Error)
	if !ok || fe.Code != CodeInvalidRequest {
		t.Fatalf("got error %v, want invalid_request", err)
	}
}

func TestReadRejectsVersionMismatch(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	buf.Write(Magic[:])
	buf.Write([]byte{0xff, 0xff}) // bogus version
	buf.Write([]byte{0, 0, 0, 0}) // zero length
	_, err := Read(&buf, 1024)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	fe, ok := err.(*Error)
	if !ok || fe.Code != CodeVersionMismatch {
		t.Fatalf("got error %v, want version_mismatch", err)
	}
}

func TestResyncSkipsGarbagePrefix(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	buf.WriteString("Last login: Mon\n$ ")
	prefixLen := buf.Len()
	if err := Write(&buf, []byte("abc")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	result, err := ReadResync(&buf, 1024, DefaultResyncMaxBytes)
	if err != nil {
		t.Fatalf("ReadResync: %v", err)
	}
	if string(result.Payload) != "abc" {
		t.Fatalf("got payload %q, want %q", result.Payload, "abc")
	}
	if result.DiscardedBytes != prefixLen {
		t.Fatalf("got discarded %d, want %d", result.DiscardedBytes, prefixLen)
	}
}

func TestResyncFailsWhenCapExceeded(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	buf.WriteString(strings.Repeat("x", 100))
	if err := Write(&buf, []byte("abc")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	_, err := ReadResync(&buf, 1024, 16)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	fe, ok := err.(*Error)
	if !ok || fe.Code != CodeInvalidRequest {
		t.Fatalf("got error %v, want invalid_request", err)
	}
}

func TestResyncDoesNotConsumeBeyondCapOnFailure(t *testing.T) {
	t.Parallel()
	// Build a stream that never contains MAGIC, much longer than the cap.
	var buf bytes.Buffer
	buf.WriteString(strings.Repeat("z", 5000))
	remainderBefore := buf.Len()

	_, err := ReadResync(&buf, 1024, 16)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	// The scan must stop at (approximately) the cap; it must not have
	// silently drained the entire 5000-byte stream looking for MAGIC
	// past the limit.
	consumed := remainderBefore - buf.Len()
	if consumed > 16+4+1 {
		t.Fatalf("resync consumed %d bytes, want roughly <= cap", consumed)
	}
}

func TestStrictFramesDisablesResync(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	buf.WriteString("noise")
	if err := Write(&buf, []byte("abc")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_, err := Read(&buf, 1024)
	if err == nil {
		t.Fatal("expected error under strict frames, got nil")
	}
}
