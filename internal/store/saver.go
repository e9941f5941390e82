package store

import "sync"

// Saver serializes writes of versioned snapshots so a slower writer holding
// an older snapshot never overwrites a newer one. Callers take the snapshot
// and its version under their own lock, then call Save outside it.
type Saver struct {
	mu      sync.Mutex
	written uint64
}

// Save runs write unless a snapshot at version or newer was already written.
// It reports whether write ran.
func (s *Saver) Save(version uint64, write func() error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version <= s.written {
		return false, nil
	}
	if err := write(); err != nil {
		return true, err
	}
	s.written = version
	return true, nil
}
