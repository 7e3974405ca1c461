// Package dedupe coalesces equivalent pending triggers.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper tracks the keys of triggers that are queued but not yet taken by
// the loop.
type Deduper interface {
	// SeenAndRecord atomically checks if key is pending and records it if not.
	// Returns true if key was already pending, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord clears key. The loop calls it when it takes the trigger; the
	// enqueue path calls it when the queue refused the trigger.
	Unrecord(ctx context.Context, key string)

	// Size returns the number of pending keys.
	Size() int64
}

// inMemoryDeduper implements Deduper with a set guarded by a mutex. The set
// never outgrows the trigger queue, so there is no eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	pending map[string]struct{}
	size    atomic.Int64
}

// NewInMemoryDeduper creates an empty deduper.
func NewInMemoryDeduper() Deduper {
	return &inMemoryDeduper{pending: make(map[string]struct{})}
}

// SeenAndRecord implements Deduper.SeenAndRecord.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.pending[key]; exists {
		return true
	}
	d.pending[key] = struct{}{}
	d.size.Add(1)
	return false
}

// Unrecord implements Deduper.Unrecord.
func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.pending[key]; exists {
		delete(d.pending, key)
		d.size.Add(-1)
	}
}

// Size implements Deduper.Size.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
