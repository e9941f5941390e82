package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/weatherly/internal/domain"
	"github.com/mmcdole/weatherly/internal/store"
	"golang.org/x/sync/errgroup"
)

// Service owns fetch state, cached snapshots and last-updated times for
// every tracked location. All mutations go through s.mu; network calls and
// persistence run outside it.
type Service struct {
	source     domain.WeatherSource
	locations  domain.LocationLookup
	timestamps domain.TimestampStore
	logger     *slog.Logger
	now        func() time.Time

	mu        sync.Mutex
	entries   map[uuid.UUID]*entry
	gen       uint64 // Incremented on every Loading transition
	version   uint64 // Incremented on every timestamp snapshot
	observers map[uint64]domain.StateObserver
	nextObs   uint64

	saver    store.Saver
	inflight sync.WaitGroup
}

// flight is one started fetch.
type flight struct {
	loc  domain.Location
	gen  uint64
	done chan struct{}
}

// NewService creates a Service and restores last-updated times for the
// locations currently in the registry. Timestamps of unknown locations are dropped.
func NewService(
	source domain.WeatherSource,
	locations domain.LocationLookup,
	timestamps domain.TimestampStore,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		source:     source,
		locations:  locations,
		timestamps: timestamps,
		logger:     logger,
		now:        time.Now,
		entries:    make(map[uuid.UUID]*entry),
		observers:  make(map[uint64]domain.StateObserver),
	}

	saved, err := timestamps.LoadLastUpdated()
	if err != nil {
		logger.Error("failed to load last updated timestamps", "error", err)
	}
	dropped := 0
	for id, ts := range saved {
		if _, ok := locations.Get(id); !ok {
			dropped++
			continue
		}
		s.entries[id] = &entry{state: domain.StateIdle, lastUpdated: ts}
	}
	logger.Debug("loaded last updated timestamps", "count", len(s.entries), "dropped", dropped)

	return s
}

// FetchIfNeeded fetches weather for one location if the gate allows it.
// It blocks until the fetch completes; callers wanting fire-and-forget run
// it in a goroutine. Cancelling ctx does not abort a started fetch.
//
// Gated-out calls return a result with Skipped set and no state change.
// A failed fetch returns ErrFetchFailed or ErrFetchEmpty after the state
// has been updated.
func (s *Service) FetchIfNeeded(ctx context.Context, id uuid.UUID) (domain.FetchResult, error) {
	s.mu.Lock()
	loc, ok := s.locations.Get(id)
	if !ok {
		s.mu.Unlock()
		return domain.FetchResult{LocationID: id}, fmt.Errorf("%w: %s", domain.ErrLocationNotFound, id)
	}

	state, lastUpdated := domain.StateIdle, time.Time{}
	if e, ok := s.entries[id]; ok {
		state, lastUpdated = e.state, e.lastUpdated
	}
	if !shouldFetch(state, lastUpdated, s.now()) {
		s.mu.Unlock()
		s.logger.Debug("fetch skipped", "id", id, "name", loc.Name, "state", state)
		return domain.FetchResult{LocationID: id, Skipped: true, State: state}, nil
	}

	f := s.beginLocked(loc)
	s.mu.Unlock()

	return s.run(ctx, f, true)
}

// RefreshAll force-refreshes every tracked location and returns once all
// fetches have resolved. Locations already loading are joined rather than
// fetched twice. Last-updated times are persisted once after the barrier.
func (s *Service) RefreshAll(ctx context.Context) domain.RefreshSummary {
	s.mu.Lock()
	locs := s.locations.List()
	if len(locs) == 0 {
		s.mu.Unlock()
		return domain.RefreshSummary{}
	}

	var flights []*flight
	var joined []chan struct{}
	for _, loc := range locs {
		e := s.entryLocked(loc.ID)
		if e.state.Status == domain.StatusLoading {
			joined = append(joined, e.done)
			continue
		}
		e.state = domain.StateIdle
		e.snapshot = nil
		s.emitLocked(loc.ID, e.state, false)
		flights = append(flights, s.beginLocked(loc))
	}
	s.mu.Unlock()

	s.logger.Info("refreshing all locations", "count", len(locs), "joined", len(joined))

	var g errgroup.Group
	for _, f := range flights {
		g.Go(func() error {
			s.run(ctx, f, false) // Outcome is read from state after the barrier
			return nil
		})
	}
	for _, done := range joined {
		g.Go(func() error {
			<-done
			return nil
		})
	}
	_ = g.Wait() // Always nil; failures are recorded as state

	s.mu.Lock()
	summary := domain.RefreshSummary{Total: len(locs), Fetched: len(flights)}
	for _, loc := range locs {
		e, ok := s.entries[loc.ID]
		if !ok {
			continue // Removed during the refresh
		}
		switch e.state.Status {
		case domain.StatusLoaded:
			summary.Loaded++
		case domain.StatusError:
			summary.Failed++
		}
	}
	ts, version := s.timestampsLocked()
	s.mu.Unlock()

	s.persist(ts, version)
	s.logger.Info("refreshed all locations",
		"total", summary.Total, "loaded", summary.Loaded, "failed", summary.Failed)
	return summary
}

// RefreshStale runs the gate for every location concurrently and waits.
// Fresh locations are skipped; idle, errored and stale ones re-fetch.
func (s *Service) RefreshStale(ctx context.Context) domain.RefreshSummary {
	locs := s.locations.List()
	results := make([]domain.FetchResult, len(locs))
	errs := make([]error, len(locs))

	var g errgroup.Group
	for i, loc := range locs {
		g.Go(func() error {
			results[i], errs[i] = s.FetchIfNeeded(ctx, loc.ID)
			return nil
		})
	}
	_ = g.Wait()

	summary := domain.RefreshSummary{Total: len(locs)}
	for i, res := range results {
		switch {
		case res.Skipped:
			summary.Skipped++
		case errs[i] != nil:
			summary.Failed++
			if res.State.Status == domain.StatusError {
				summary.Fetched++
			}
		default:
			summary.Fetched++
			summary.Loaded++
		}
	}
	return summary
}

// Forget drops all state for a location: fetch state, cached snapshot and
// last-updated time. A fetch still in flight for it completes as a no-op.
func (s *Service) Forget(id uuid.UUID) {
	s.mu.Lock()
	if _, ok := s.entries[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.entries, id)
	s.emitLocked(id, domain.StateIdle, true)
	ts, version := s.timestampsLocked()
	s.mu.Unlock()

	s.logger.Debug("forgot location state", "id", id)
	s.persist(ts, version)
}

// Wait blocks until every started fetch has completed.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// Subscribe registers o for state transitions. Events for one location are
// delivered in order. The returned func unsubscribes.
func (s *Service) Subscribe(o domain.StateObserver) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextObs++
	key := s.nextObs
	s.observers[key] = o
	return func() {
		s.mu.Lock()
		delete(s.observers, key)
		s.mu.Unlock()
	}
}

// --- Private helpers ---

func (s *Service) entryLocked(id uuid.UUID) *entry {
	e, ok := s.entries[id]
	if !ok {
		e = &entry{state: domain.StateIdle}
		s.entries[id] = e
	}
	return e
}

// beginLocked moves a location to Loading and registers the flight.
func (s *Service) beginLocked(loc domain.Location) *flight {
	e := s.entryLocked(loc.ID)
	s.gen++
	e.state = domain.StateLoading
	e.gen = s.gen
	e.done = make(chan struct{})
	s.emitLocked(loc.ID, e.state, false)
	s.inflight.Add(1)
	return &flight{loc: loc, gen: e.gen, done: e.done}
}

func (s *Service) run(ctx context.Context, f *flight, persist bool) (domain.FetchResult, error) {
	defer s.inflight.Done()

	s.logger.Debug("fetching weather", "id", f.loc.ID, "name", f.loc.Name)
	snap, err := s.source.FetchByCoordinates(context.WithoutCancel(ctx), f.loc.Lat, f.loc.Lon)
	return s.complete(f, snap, err, persist)
}

// complete applies a fetch outcome, unless the location was forgotten meanwhile.
func (s *Service) complete(f *flight, snap *domain.Snapshot, fetchErr error, persist bool) (domain.FetchResult, error) {
	defer close(f.done)
	id := f.loc.ID

	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok || e.gen != f.gen || e.state.Status != domain.StatusLoading {
		s.mu.Unlock()
		s.logger.Debug("dropping fetch result for removed location", "id", id, "name", f.loc.Name)
		return domain.FetchResult{LocationID: id}, fmt.Errorf("%w: %s removed while fetching", domain.ErrLocationNotFound, id)
	}

	var result error
	switch {
	case fetchErr != nil:
		e.state = domain.ErrorState(domain.MessageNetworkError)
		e.snapshot = nil
		result = fmt.Errorf("%w: %w", domain.ErrFetchFailed, fetchErr)
	case snap == nil:
		e.state = domain.ErrorState(domain.MessageNoData)
		e.snapshot = nil
		result = domain.ErrFetchEmpty
	default:
		e.state = domain.StateLoaded
		e.snapshot = snap
		e.lastUpdated = s.now()
	}
	e.done = nil
	state := e.state
	s.emitLocked(id, state, false)

	var ts map[uuid.UUID]time.Time
	var version uint64
	if persist && result == nil {
		ts, version = s.timestampsLocked()
	}
	s.mu.Unlock()

	if result != nil {
		s.logger.Warn("weather fetch failed", "id", id, "name", f.loc.Name, "error", result)
	} else {
		s.logger.Debug("weather fetch finished", "id", id, "name", f.loc.Name)
	}
	if ts != nil {
		s.persist(ts, version)
	}
	return domain.FetchResult{LocationID: id, State: state}, result
}

func (s *Service) emitLocked(id uuid.UUID, state domain.FetchState, removed bool) {
	event := domain.StateEvent{LocationID: id, State: state, Removed: removed}
	for _, o := range s.observers {
		o.OnStateChange(event)
	}
}

func (s *Service) timestampsLocked() (map[uuid.UUID]time.Time, uint64) {
	ts := make(map[uuid.UUID]time.Time, len(s.entries))
	for id, e := range s.entries {
		if !e.lastUpdated.IsZero() {
			ts[id] = e.lastUpdated
		}
	}
	s.version++
	return ts, s.version
}

// persist writes outside s.mu so disk I/O never blocks other fetches.
func (s *Service) persist(ts map[uuid.UUID]time.Time, version uint64) {
	_, err := s.saver.Save(version, func() error {
		return s.timestamps.SaveLastUpdated(ts)
	})
	if err != nil {
		s.logger.Error("failed to save last updated timestamps", "error", err, "count", len(ts))
	}
}
