package forecast

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/weatherly/internal/domain"
	"github.com/mmcdole/weatherly/internal/locations"
	"github.com/mmcdole/weatherly/internal/store"
)

// fakeSource answers with fn and counts calls per latitude.
type fakeSource struct {
	fn    func(lat, lon float64) (*domain.Snapshot, error)
	calls atomic.Int32

	mu     sync.Mutex
	perLat map[float64]int
}

func (f *fakeSource) FetchByCoordinates(_ context.Context, lat, lon float64) (*domain.Snapshot, error) {
	f.calls.Add(1)
	f.mu.Lock()
	if f.perLat == nil {
		f.perLat = make(map[float64]int)
	}
	f.perLat[lat]++
	f.mu.Unlock()
	if f.fn == nil {
		return snapshotAt(lat, lon), nil
	}
	return f.fn(lat, lon)
}

func (f *fakeSource) callsFor(lat float64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.perLat[lat]
}

// blocker holds fetches until released and signals when one has started.
type blocker struct {
	started chan struct{}
	release chan struct{}
}

func newBlocker() *blocker {
	return &blocker{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (b *blocker) wait() {
	b.started <- struct{}{}
	<-b.release
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func snapshotAt(lat, lon float64) *domain.Snapshot {
	return &domain.Snapshot{Lat: lat, Lon: lon, Timezone: "UTC", Current: domain.CurrentWeather{Temp: 21.5}}
}

func ptr(f float64) *float64 { return &f }

type fixture struct {
	svc      *Service
	registry *locations.Registry
	adapter  *store.Adapter
	source   *fakeSource
	clock    *clock
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	kv, err := store.Open("")
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adapter := store.NewAdapter(kv)
	registry := locations.NewRegistry(adapter, logger)
	for i, name := range names {
		c := domain.Candidate{Name: name, Country: "US", Lat: ptr(float64(i + 1)), Lon: ptr(float64(i + 1))}
		if _, err := registry.Add(c); err != nil {
			t.Fatalf("Add(%s) error = %v", name, err)
		}
	}

	src := &fakeSource{}
	clk := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(src, registry, adapter, logger)
	svc.now = clk.Now
	return &fixture{svc: svc, registry: registry, adapter: adapter, source: src, clock: clk}
}

func (f *fixture) loc(t *testing.T, i int) domain.Location {
	t.Helper()
	list := f.registry.List()
	if i >= len(list) {
		t.Fatalf("no location at %d", i)
	}
	return list[i]
}

func TestShouldFetch(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		state       domain.FetchState
		lastUpdated time.Time
		want        bool
	}{
		{name: "idle never fetched", state: domain.StateIdle, want: true},
		{name: "idle with timestamp", state: domain.StateIdle, lastUpdated: now.Add(-time.Minute), want: true},
		{name: "loading", state: domain.StateLoading, want: false},
		{name: "loaded fresh", state: domain.StateLoaded, lastUpdated: now.Add(-599 * time.Second), want: false},
		{name: "loaded at threshold", state: domain.StateLoaded, lastUpdated: now.Add(-StaleAfter), want: true},
		{name: "loaded stale", state: domain.StateLoaded, lastUpdated: now.Add(-time.Hour), want: true},
		{name: "loaded without timestamp", state: domain.StateLoaded, want: true},
		{name: "error", state: domain.ErrorState(domain.MessageNetworkError), lastUpdated: now, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldFetch(tt.state, tt.lastUpdated, now); got != tt.want {
				t.Errorf("shouldFetch() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFetchIfNeeded_Success(t *testing.T) {
	f := newFixture(t, "Cupertino")
	loc := f.loc(t, 0)

	res, err := f.svc.FetchIfNeeded(context.Background(), loc.ID)
	if err != nil {
		t.Fatalf("FetchIfNeeded() error = %v", err)
	}
	if res.Skipped || res.State != domain.StateLoaded {
		t.Errorf("result = %+v, want loaded", res)
	}
	if got := f.svc.State(loc.ID); got != domain.StateLoaded {
		t.Errorf("State() = %v, want loaded", got)
	}
	snap, ok := f.svc.Snapshot(loc.ID)
	if !ok || snap.Lat != loc.Lat {
		t.Errorf("Snapshot() = %+v, %v", snap, ok)
	}

	saved, err := f.adapter.LoadLastUpdated()
	if err != nil {
		t.Fatalf("LoadLastUpdated() error = %v", err)
	}
	if !saved[loc.ID].Equal(f.clock.Now()) {
		t.Errorf("persisted last updated = %v, want %v", saved[loc.ID], f.clock.Now())
	}
}

func TestFetchIfNeeded_Staleness(t *testing.T) {
	tests := []struct {
		name      string
		advance   time.Duration
		wantCalls int32
	}{
		{name: "fresh", advance: 0, wantCalls: 1},
		{name: "just under threshold", advance: 599 * time.Second, wantCalls: 1},
		{name: "at threshold", advance: 600 * time.Second, wantCalls: 2},
		{name: "stale", advance: 15 * time.Minute, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "A")
			id := f.loc(t, 0).ID

			if _, err := f.svc.FetchIfNeeded(context.Background(), id); err != nil {
				t.Fatalf("first FetchIfNeeded() error = %v", err)
			}
			f.clock.Advance(tt.advance)

			res, err := f.svc.FetchIfNeeded(context.Background(), id)
			if err != nil {
				t.Fatalf("second FetchIfNeeded() error = %v", err)
			}
			if got := f.source.calls.Load(); got != tt.wantCalls {
				t.Errorf("source calls = %d, want %d", got, tt.wantCalls)
			}
			if res.Skipped != (tt.wantCalls == 1) {
				t.Errorf("Skipped = %v", res.Skipped)
			}
		})
	}
}

func TestFetchIfNeeded_ConcurrentCallsFetchOnce(t *testing.T) {
	f := newFixture(t, "A")
	id := f.loc(t, 0).ID
	b := newBlocker()
	f.source.fn = func(lat, lon float64) (*domain.Snapshot, error) {
		b.wait()
		return snapshotAt(lat, lon), nil
	}

	go f.svc.FetchIfNeeded(context.Background(), id)
	<-b.started

	if got := f.svc.State(id); got != domain.StateLoading {
		t.Fatalf("State() while in flight = %v, want loading", got)
	}
	for i := 0; i < 5; i++ {
		res, err := f.svc.FetchIfNeeded(context.Background(), id)
		if err != nil {
			t.Fatalf("FetchIfNeeded() error = %v", err)
		}
		if !res.Skipped || res.State != domain.StateLoading {
			t.Errorf("result = %+v, want skipped while loading", res)
		}
	}

	close(b.release)
	f.svc.Wait()

	if got := f.source.calls.Load(); got != 1 {
		t.Errorf("source calls = %d, want 1", got)
	}
	if got := f.svc.State(id); got != domain.StateLoaded {
		t.Errorf("State() = %v, want loaded", got)
	}
}

func TestFetchIfNeeded_CancelledContextDoesNotAbort(t *testing.T) {
	f := newFixture(t, "A")
	id := f.loc(t, 0).ID
	f.source.fn = func(lat, lon float64) (*domain.Snapshot, error) {
		return snapshotAt(lat, lon), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.svc.FetchIfNeeded(ctx, id); err != nil {
		t.Fatalf("FetchIfNeeded() error = %v", err)
	}
	if got := f.svc.State(id); got != domain.StateLoaded {
		t.Errorf("State() = %v, want loaded", got)
	}
}

func TestFetchIfNeeded_Failures(t *testing.T) {
	networkErr := errors.New("connection refused")

	tests := []struct {
		name        string
		snap        *domain.Snapshot
		err         error
		wantErr     error
		wantMessage string
	}{
		{name: "network error", err: networkErr, wantErr: domain.ErrFetchFailed, wantMessage: domain.MessageNetworkError},
		{name: "empty result", wantErr: domain.ErrFetchEmpty, wantMessage: domain.MessageNoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "A")
			id := f.loc(t, 0).ID

			// Seed a cached snapshot that the failure must clear.
			if _, err := f.svc.FetchIfNeeded(context.Background(), id); err != nil {
				t.Fatalf("seed FetchIfNeeded() error = %v", err)
			}
			firstUpdate, _ := f.svc.LastUpdated(id)
			f.clock.Advance(StaleAfter)

			f.source.fn = func(float64, float64) (*domain.Snapshot, error) { return tt.snap, tt.err }
			res, err := f.svc.FetchIfNeeded(context.Background(), id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FetchIfNeeded() error = %v, want %v", err, tt.wantErr)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("error %v does not wrap the source error", err)
			}

			want := domain.ErrorState(tt.wantMessage)
			if res.State != want || f.svc.State(id) != want {
				t.Errorf("state = %v, want %v", f.svc.State(id), want)
			}
			if _, ok := f.svc.Snapshot(id); ok {
				t.Error("snapshot still cached after failure")
			}
			if last, _ := f.svc.LastUpdated(id); !last.Equal(firstUpdate) {
				t.Errorf("LastUpdated() = %v, want unchanged %v", last, firstUpdate)
			}

			// Error state is re-fetchable.
			f.source.fn = nil
			if _, err := f.svc.FetchIfNeeded(context.Background(), id); err != nil {
				t.Fatalf("retry FetchIfNeeded() error = %v", err)
			}
			if got := f.svc.State(id); got != domain.StateLoaded {
				t.Errorf("State() after retry = %v, want loaded", got)
			}
		})
	}
}

func TestFetchIfNeeded_UnknownLocation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.FetchIfNeeded(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrLocationNotFound) {
		t.Fatalf("FetchIfNeeded() error = %v, want ErrLocationNotFound", err)
	}
	if got := f.source.calls.Load(); got != 0 {
		t.Errorf("source calls = %d, want 0", got)
	}
}

func TestForget_DuringFetchDropsResult(t *testing.T) {
	f := newFixture(t, "A", "B")
	a := f.loc(t, 0)
	b := newBlocker()
	f.source.fn = func(lat, lon float64) (*domain.Snapshot, error) {
		b.wait()
		return snapshotAt(lat, lon), nil
	}

	errc := make(chan error, 1)
	go func() {
		_, err := f.svc.FetchIfNeeded(context.Background(), a.ID)
		errc <- err
	}()
	<-b.started

	if _, err := f.registry.Remove(a.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	f.svc.Forget(a.ID)
	close(b.release)

	if err := <-errc; !errors.Is(err, domain.ErrLocationNotFound) {
		t.Errorf("FetchIfNeeded() error = %v, want ErrLocationNotFound", err)
	}
	f.svc.Wait()

	if _, ok := f.svc.States()[a.ID]; ok {
		t.Error("removed location has fetch state again")
	}
	if _, ok := f.svc.Snapshot(a.ID); ok {
		t.Error("removed location has a cached snapshot")
	}
	saved, _ := f.adapter.LoadLastUpdated()
	if _, ok := saved[a.ID]; ok {
		t.Error("removed location has a persisted timestamp")
	}
}

func TestForget_ClearsPersistedTimestamp(t *testing.T) {
	f := newFixture(t, "A", "B")
	a, b := f.loc(t, 0), f.loc(t, 1)
	f.svc.FetchIfNeeded(context.Background(), a.ID)
	f.svc.FetchIfNeeded(context.Background(), b.ID)

	f.svc.Forget(a.ID)

	saved, _ := f.adapter.LoadLastUpdated()
	if _, ok := saved[a.ID]; ok {
		t.Error("forgotten timestamp still persisted")
	}
	if _, ok := saved[b.ID]; !ok {
		t.Error("other timestamp was dropped")
	}
	if got := f.svc.State(a.ID); got != domain.StateIdle {
		t.Errorf("State() = %v, want idle", got)
	}
}

func TestRefreshAll(t *testing.T) {
	f := newFixture(t, "A", "B", "C")
	failing := f.loc(t, 1)
	f.source.fn = func(lat, lon float64) (*domain.Snapshot, error) {
		if lat == failing.Lat {
			return nil, errors.New("timeout")
		}
		return snapshotAt(lat, lon), nil
	}

	// Fresh caches are refreshed anyway.
	for _, loc := range f.registry.List() {
		f.svc.FetchIfNeeded(context.Background(), loc.ID)
	}
	f.source.calls.Store(0)
	f.clock.Advance(time.Minute)

	summary := f.svc.RefreshAll(context.Background())

	want := domain.RefreshSummary{Total: 3, Fetched: 3, Loaded: 2, Failed: 1}
	if summary != want {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}
	if got := f.source.calls.Load(); got != 3 {
		t.Errorf("source calls = %d, want 3", got)
	}
	if got := f.svc.State(failing.ID); got != domain.ErrorState(domain.MessageNetworkError) {
		t.Errorf("failing state = %v", got)
	}

	saved, _ := f.adapter.LoadLastUpdated()
	for _, loc := range f.registry.List() {
		if loc.ID == failing.ID {
			if _, ok := saved[loc.ID]; ok {
				t.Errorf("failed location %s has a persisted timestamp", loc.Name)
			}
			continue
		}
		if !saved[loc.ID].Equal(f.clock.Now()) {
			t.Errorf("%s persisted = %v, want %v", loc.Name, saved[loc.ID], f.clock.Now())
		}
	}
}

func TestRefreshAll_Empty(t *testing.T) {
	f := newFixture(t)
	if summary := f.svc.RefreshAll(context.Background()); summary != (domain.RefreshSummary{}) {
		t.Errorf("summary = %+v, want zero", summary)
	}
}

func TestRefreshAll_JoinsInFlightFetch(t *testing.T) {
	f := newFixture(t, "A", "B")
	a, other := f.loc(t, 0), f.loc(t, 1)
	b := newBlocker()
	f.source.fn = func(lat, lon float64) (*domain.Snapshot, error) {
		if lat == a.Lat {
			b.wait()
		}
		return snapshotAt(lat, lon), nil
	}

	go f.svc.FetchIfNeeded(context.Background(), a.ID)
	<-b.started

	done := make(chan domain.RefreshSummary, 1)
	go func() { done <- f.svc.RefreshAll(context.Background()) }()

	select {
	case s := <-done:
		t.Fatalf("RefreshAll returned %+v before the in-flight fetch resolved", s)
	case <-time.After(50 * time.Millisecond):
	}

	close(b.release)
	summary := <-done

	if summary.Loaded != 2 || summary.Fetched != 1 {
		t.Errorf("summary = %+v, want 2 loaded with 1 new fetch", summary)
	}
	if got := f.source.callsFor(a.Lat); got != 1 {
		t.Errorf("calls for in-flight location = %d, want 1", got)
	}
	if got := f.source.callsFor(other.Lat); got != 1 {
		t.Errorf("calls for other location = %d, want 1", got)
	}
}

func TestRefreshStale(t *testing.T) {
	f := newFixture(t, "A", "B")
	a := f.loc(t, 0)
	f.svc.FetchIfNeeded(context.Background(), a.ID)
	f.source.calls.Store(0)

	summary := f.svc.RefreshStale(context.Background())

	want := domain.RefreshSummary{Total: 2, Fetched: 1, Loaded: 1, Skipped: 1}
	if summary != want {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}
	if got := f.source.calls.Load(); got != 1 {
		t.Errorf("source calls = %d, want 1", got)
	}
}

func TestNewService_RestoresTimestamps(t *testing.T) {
	f := newFixture(t, "A")
	a := f.loc(t, 0)
	stamp := time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC)
	orphan := uuid.New()
	if err := f.adapter.SaveLastUpdated(map[uuid.UUID]time.Time{a.ID: stamp, orphan: stamp}); err != nil {
		t.Fatalf("SaveLastUpdated() error = %v", err)
	}

	svc := NewService(f.source, f.registry, f.adapter, nil)

	if last, ok := svc.LastUpdated(a.ID); !ok || !last.Equal(stamp) {
		t.Errorf("LastUpdated() = %v, %v, want %v", last, ok, stamp)
	}
	if _, ok := svc.LastUpdated(orphan); ok {
		t.Error("timestamp of unknown location was restored")
	}
	if got := svc.State(a.ID); got != domain.StateIdle {
		t.Errorf("State() = %v, want idle after restart", got)
	}

	// Restored timestamps do not suppress the first fetch.
	res, err := svc.FetchIfNeeded(context.Background(), a.ID)
	if err != nil || res.Skipped {
		t.Errorf("FetchIfNeeded() = %+v, %v, want a fetch", res, err)
	}
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t, "A")
	id := f.loc(t, 0).ID

	var mu sync.Mutex
	var events []domain.StateEvent
	unsubscribe := f.svc.Subscribe(domain.ObserverFunc(func(e domain.StateEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}))

	f.svc.FetchIfNeeded(context.Background(), id)
	f.svc.Forget(id)

	mu.Lock()
	got := append([]domain.StateEvent(nil), events...)
	mu.Unlock()

	want := []domain.StateEvent{
		{LocationID: id, State: domain.StateLoading},
		{LocationID: id, State: domain.StateLoaded},
		{LocationID: id, State: domain.StateIdle, Removed: true},
	}
	if len(got) != len(want) {
		t.Fatalf("events = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	unsubscribe()
	f.clock.Advance(StaleAfter)
	f.svc.FetchIfNeeded(context.Background(), id)
	mu.Lock()
	defer mu.Unlock()
	if len(events) != len(want) {
		t.Errorf("received %d events after unsubscribe", len(events)-len(want))
	}
}
