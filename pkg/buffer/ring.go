// Package buffer provides a generic, thread-safe bounded ring buffer.
//
// The ring always overwrites the oldest entry when full, making it suitable
// for bounded history logs where the most recent entries matter: the fault
// log keeps the last N classified faults this way. Statistics are always
// collected for observability.
package buffer

import (
	"sync"
	"sync/atomic"
)

// Ring is a fixed-capacity buffer that overwrites its oldest entry on
// overflow. All methods are safe for concurrent use.
type Ring[T any] struct {
	mu       sync.RWMutex
	items    []T
	capacity int
	size     int
	head     int // next write position

	// Atomic counters, never reset
	writes     int64
	overwrites int64
}

// NewRing creates a ring buffer with the given capacity.
// Capacities below 1 are raised to 1.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Append adds an item, overwriting the oldest entry when full.
func (r *Ring[T]) Append(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[r.head] = item
	r.head = (r.head + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
	} else {
		atomic.AddInt64(&r.overwrites, 1)
	}
	atomic.AddInt64(&r.writes, 1)
}

// Snapshot returns up to max entries, newest first. A max <= 0 or larger
// than the current size returns everything buffered.
func (r *Ring[T]) Snapshot(max int) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.size
	if max > 0 && max < n {
		n = max
	}

	out := make([]T, 0, n)
	// head-1 is the most recent write
	for i := 1; i <= n; i++ {
		idx := (r.head - i + r.capacity) % r.capacity
		out = append(out, r.items[idx])
	}
	return out
}

// Len returns the current number of buffered entries.
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Capacity returns the fixed capacity of the ring.
func (r *Ring[T]) Capacity() int {
	return r.capacity
}

// Clear removes all entries. Counters are preserved.
func (r *Ring[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.size = 0
	r.head = 0
}

// Stats reports lifetime write and overwrite counts.
func (r *Ring[T]) Stats() (writes, overwrites int64) {
	return atomic.LoadInt64(&r.writes), atomic.LoadInt64(&r.overwrites)
}
