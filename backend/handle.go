package backend

import (
	"sync"

	"github.com/google/uuid"
)

// Handle is an opaque reference to one operation's backend accumulator.
// Handles are allocated by the Adapter, owned exclusively by one
// operation, and worthless outside the Adapter that minted them.
type Handle string

// NilHandle is the zero handle; every Adapter call rejects it
const NilHandle Handle = ""

// entry is the arena slot behind a handle
type entry struct {
	acc Accumulator

	// terminal holds a complete result a build returned straight from the
	// final ProcessChunk; when set, Finalize must not reach the backend.
	terminal Raw

	finalized bool
}

// arena maps handles to accumulators. The Manager only ever sees the
// handle; accumulator internals never cross this boundary.
type arena struct {
	mu      sync.RWMutex
	entries map[Handle]*entry
}

func newArena() *arena {
	return &arena{entries: make(map[Handle]*entry)}
}

func (a *arena) allocate(acc Accumulator) Handle {
	h := Handle(uuid.New().String())
	a.mu.Lock()
	a.entries[h] = &entry{acc: acc}
	a.mu.Unlock()
	return h
}

func (a *arena) lookup(h Handle) (*entry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.entries[h]
	return e, ok
}

func (a *arena) release(h Handle) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.entries[h]; !ok {
		return false
	}
	delete(a.entries, h)
	return true
}

func (a *arena) size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}
