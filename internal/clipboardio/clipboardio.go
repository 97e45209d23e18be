// Package clipboardio defines the contract between the core transfer
// pipeline and the platform clipboard, plus a default text-only
// implementation. Image clipboard access is not implemented:
// SystemAdapter has no image operations at all, and pull refuses an
// image value that has no file or base64 sink.
package clipboardio

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"
)

// ErrImageUnsupported describes the lack of image clipboard access.
// No function in this package returns it: SystemAdapter exposes text
// operations only.
var ErrImageUnsupported = errors.New("clipboardio: image clipboard access is not implemented")

// Adapter reads and writes the platform clipboard's text content.
// push and pull reach the clipboard through SystemAdapter, never
// through a clipboard library directly; peek does not touch the
// clipboard.
type Adapter interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
}

// SystemAdapter is the default Adapter, backed by the OS clipboard
// via github.com/atotto/clipboard. Its methods ignore ctx cancellation
// mid-call: the underlying library offers no interruptible API, and in
// practice a clipboard read/write completes in microseconds.
type SystemAdapter struct{}

// NewSystemAdapter returns the default platform clipboard adapter.
func NewSystemAdapter() *SystemAdapter { return &SystemAdapter{} }

func (SystemAdapter) ReadText(ctx context.Context) (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", err
	}
	return text, nil
}

func (SystemAdapter) WriteText(ctx context.Context, text string) error {
	return clipboard.WriteAll(text)
}

// FakeAdapter is an in-memory Adapter for tests. push and pull do not
// use it: with --stdin, --stdout, --output or --base64 they skip the
// clipboard entirely.
type FakeAdapter struct {
	Text string
	Err  error
}

func (f *FakeAdapter) ReadText(ctx context.Context) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

func (f *FakeAdapter) WriteText(ctx context.Context, text string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Text = text
	return nil
}
