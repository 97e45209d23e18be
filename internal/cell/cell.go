// Package cell implements the daemon's single in-memory clipboard
// slot. Exactly one value exists at any time, or none; setting
// overwrites, there is no history.
package cell

import (
	"sync"

	"github.com/johansigfrids/ssh-clipboard/internal/protocol"
)

// Cell holds the single clipboard value. It is safe for concurrent
// use: Set takes the writer side of a single-writer/multi-reader lock,
// Get and Meta take the reader side. The value is indivisible, so
// finer-grained locking buys nothing — holding time is bounded by the
// size of one clipboard value copy.
type Cell struct {
	mu    sync.RWMutex
	value *protocol.ClipboardValue
}

// New returns an empty cell (never set).
func New() *Cell {
	return &Cell{}
}

// Set overwrites the cell's value. The caller owns v's backing slice
// before the call; Set takes ownership of it for storage.
func (c *Cell) Set(v protocol.ClipboardValue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := v
	c.value = &stored
}

// Get returns the current value and whether one has ever been set.
// The returned ClipboardValue is a copy; callers must not assume it
// aliases the cell's internal storage beyond the returned call.
func (c *Cell) Get() (protocol.ClipboardValue, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.value == nil {
		return protocol.ClipboardValue{}, false
	}
	return *c.value, true
}

// Meta returns the metadata of the current value without copying its
// data bytes, and whether one has ever been set.
func (c *Cell) Meta() (protocol.Meta, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.value == nil {
		return protocol.Meta{}, false
	}
	return protocol.Meta{
		ContentType: c.value.ContentType,
		Size:        uint64(len(c.value.Data)),
		CreatedAt:   c.value.CreatedAt,
	}, true
}
