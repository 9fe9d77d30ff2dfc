// Package dedupe tracks profile update ids so resubmissions are applied once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50_000

// Deduper records seen update IDs.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a rejected submission can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type slot struct {
	id   string
	used bool
}

// ringDeduper remembers ids in insertion order. In bounded mode the ring
// overwrites its oldest slot once full; in unbounded mode only the map is used.
type ringDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // id -> ring slot, -1 in unbounded mode
	ring    []slot
	next    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a deduper. See WithMaxSize for bounding.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &ringDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]slot, d.maxSize)
	}
	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.ring == nil {
		d.seen[id] = -1
		d.size.Add(1)
		return false
	}

	if old := d.ring[d.next]; old.used {
		delete(d.seen, old.id)
		d.size.Add(-1)
	}
	d.ring[d.next] = slot{id: id, used: true}
	d.seen[id] = d.next
	d.next = (d.next + 1) % len(d.ring)
	d.size.Add(1)
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, ok := d.seen[id]
	if !ok {
		return
	}
	delete(d.seen, id)
	if idx >= 0 {
		d.ring[idx] = slot{}
	}
	d.size.Add(-1)
}

func (d *ringDeduper) Size() int64 {
	return d.size.Load()
}
