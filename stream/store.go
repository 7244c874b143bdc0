package stream

import "sync"

// Store holds in-flight operations. It is injected at construction so the
// operation table's lifetime is tied to the embedding process, never to
// package load order.
type Store interface {
	// Get returns the operation for id
	Get(id string) (*operation, bool)
	// PutIfAbsent inserts op unless its id already exists
	PutIfAbsent(op *operation) bool
	// Delete removes id, reporting whether it existed
	Delete(id string) bool
	// List returns every stored operation in unspecified order
	List() []*operation
	// Len reports the number of stored operations
	Len() int
}

// MemoryStore is the in-memory Store used by the daemon
type MemoryStore struct {
	mu  sync.RWMutex
	ops map[string]*operation
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ops: make(map[string]*operation)}
}

// Get implements Store
func (s *MemoryStore) Get(id string) (*operation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	op, ok := s.ops[id]
	return op, ok
}

// PutIfAbsent implements Store
func (s *MemoryStore) PutIfAbsent(op *operation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ops[op.id]; exists {
		return false
	}
	s.ops[op.id] = op
	return true
}

// Delete implements Store
func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ops[id]; !exists {
		return false
	}
	delete(s.ops, id)
	return true
}

// List implements Store
func (s *MemoryStore) List() []*operation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*operation, 0, len(s.ops))
	for _, op := range s.ops {
		out = append(out, op)
	}
	return out
}

// Len implements Store
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ops)
}
