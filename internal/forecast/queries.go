package forecast

import (
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/weatherly/internal/domain"
)

// State returns the fetch state for id. Unknown locations are Idle.
func (s *Service) State(id uuid.UUID) domain.FetchState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		return e.state
	}
	return domain.StateIdle
}

// Snapshot returns the cached weather for id, if any.
// Snapshots are never mutated after being cached.
func (s *Service) Snapshot(id uuid.UUID) (*domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok && e.snapshot != nil {
		return e.snapshot, true
	}
	return nil, false
}

// LastUpdated returns the time of the last successful fetch for id.
func (s *Service) LastUpdated(id uuid.UUID) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok && !e.lastUpdated.IsZero() {
		return e.lastUpdated, true
	}
	return time.Time{}, false
}

// States returns the fetch state of every location that has one.
func (s *Service) States() map[uuid.UUID]domain.FetchState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[uuid.UUID]domain.FetchState, len(s.entries))
	for id, e := range s.entries {
		out[id] = e.state
	}
	return out
}
