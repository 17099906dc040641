package sweepmon

import (
	"strings"
	"sync"

	"github.com/sweepmon/go-monitor-sdk/api"
)

// EventBuffer is a bounded, append-only log of stream events. Once full,
// appending evicts the oldest record; eviction never reorders what remains.
// Reads are copies, so filters are projections over a stable history and
// switching a filter back and forth reproduces the same records.
type EventBuffer struct {
	mu       sync.Mutex
	records  []api.EventRecord
	start    int // index of the oldest record
	count    int
	capacity int
}

// NewEventBuffer allocates a buffer retaining at most capacity records.
func NewEventBuffer(capacity int) *EventBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &EventBuffer{
		records:  make([]api.EventRecord, capacity),
		capacity: capacity,
	}
}

// Append adds a record, evicting exactly the oldest one if the buffer is
// full.
func (b *EventBuffer) Append(record api.EventRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count < b.capacity {
		b.records[(b.start+b.count)%b.capacity] = record
		b.count++
		return
	}
	// Full: overwrite the oldest slot and advance the start.
	b.records[b.start] = record
	b.start = (b.start + 1) % b.capacity
}

// Snapshot returns the retained records in arrival order. The returned slice
// is a copy; callers may read it repeatedly without affecting the buffer.
func (b *EventBuffer) Snapshot() []api.EventRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]api.EventRecord, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.records[(b.start+i)%b.capacity]
	}
	return out
}

// Filtered returns the retained records matching predicate, in arrival
// order. The buffer itself is never mutated by a read.
func (b *EventBuffer) Filtered(predicate func(api.EventRecord) bool) []api.EventRecord {
	all := b.Snapshot()
	out := make([]api.EventRecord, 0, len(all))
	for _, record := range all {
		if predicate(record) {
			out = append(out, record)
		}
	}
	return out
}

// FilteredByType matches records whose type equals typePrefix or starts with
// typePrefix + "_", so "operation" selects the operation_* family.
func (b *EventBuffer) FilteredByType(typePrefix string) []api.EventRecord {
	return b.Filtered(func(record api.EventRecord) bool {
		t := string(record.Type)
		return t == typePrefix || strings.HasPrefix(t, typePrefix+"_")
	})
}

// Clear empties the buffer. Only explicit user action should call this;
// reconnects must not, so operators keep history across transient drops.
func (b *EventBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start = 0
	b.count = 0
}

// Len returns the number of retained records.
func (b *EventBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Capacity returns the fixed retention limit.
func (b *EventBuffer) Capacity() int {
	return b.capacity
}
