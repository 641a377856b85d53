package checkpoint

import "sync"

// InMemorySaver is a volatile Saver keeping the latest checkpoint per
// invocation id in a process local map. It is safe for concurrent access and
// best suited for tests or single-process resume. Stored checkpoints are
// cloned on the way in and out to prevent external mutation.
type InMemorySaver struct {
	mu          sync.RWMutex
	checkpoints map[string]*Checkpoint
}

// NewInMemorySaver constructs an empty in-memory checkpoint saver.
func NewInMemorySaver() *InMemorySaver {
	return &InMemorySaver{checkpoints: make(map[string]*Checkpoint)}
}

// Get returns a clone of the latest checkpoint for the id, or ErrNotFound.
func (s *InMemorySaver) Get(id string) (*Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.checkpoints[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cp.Clone(), nil
}

// Put stores a clone of cp as the latest checkpoint for the id.
func (s *InMemorySaver) Put(id string, cp *Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[id] = cp.Clone()
	return nil
}
