package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/weatherly/internal/domain"
	"github.com/mmcdole/weatherly/internal/forecast"
	"github.com/mmcdole/weatherly/internal/locations"
)

// LocationView is a tracked location together with its weather state.
type LocationView struct {
	Location    domain.Location
	State       domain.FetchState
	Snapshot    *domain.Snapshot // nil unless loaded
	LastUpdated time.Time        // zero if never fetched
}

// HomeService is the entry point for the saved-locations screen: it keeps
// the registry and the forecast state in step.
type HomeService struct {
	registry *locations.Registry
	forecast *forecast.Service
	logger   *slog.Logger

	background sync.WaitGroup
}

// NewHomeService creates a new home service
func NewHomeService(registry *locations.Registry, fc *forecast.Service, logger *slog.Logger) *HomeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HomeService{registry: registry, forecast: fc, logger: logger}
}

// Add saves a candidate and starts fetching its weather in the background.
func (h *HomeService) Add(ctx context.Context, c domain.Candidate) (domain.Location, error) {
	loc, err := h.registry.Add(c)
	if err != nil {
		return domain.Location{}, err
	}

	h.background.Add(1)
	go func() {
		defer h.background.Done()
		h.forecast.FetchIfNeeded(context.WithoutCancel(ctx), loc.ID) // Outcome is reported as state
	}()
	return loc, nil
}

// Remove deletes a location along with its cached weather and timestamp.
// The registry entry goes first so no fetch can start for it afterwards.
func (h *HomeService) Remove(id uuid.UUID) (domain.Location, error) {
	loc, err := h.registry.Remove(id)
	if err != nil {
		return domain.Location{}, err
	}
	h.forecast.Forget(id)
	return loc, nil
}

// Move reorders a location so it ends up at index to.
func (h *HomeService) Move(from, to int) error {
	return h.registry.Move(from, to)
}

// Locations returns every tracked location in order with its current state.
func (h *HomeService) Locations() []LocationView {
	locs := h.registry.List()
	views := make([]LocationView, len(locs))
	for i, loc := range locs {
		views[i] = h.view(loc)
	}
	return views
}

// Location returns one tracked location with its current state.
func (h *HomeService) Location(id uuid.UUID) (LocationView, bool) {
	loc, ok := h.registry.Get(id)
	if !ok {
		return LocationView{}, false
	}
	return h.view(loc), true
}

// Find fuzzy-matches tracked locations by name.
func (h *HomeService) Find(query string) []locations.Match {
	return h.registry.Find(query)
}

// Appear is called when a location becomes visible. It fetches only if the
// cached weather is missing, stale or failed.
func (h *HomeService) Appear(ctx context.Context, id uuid.UUID) (domain.FetchResult, error) {
	return h.forecast.FetchIfNeeded(ctx, id)
}

// AppearAll runs Appear for every location and waits.
func (h *HomeService) AppearAll(ctx context.Context) domain.RefreshSummary {
	return h.forecast.RefreshStale(ctx)
}

// Refresh force-refreshes every location and returns once all have resolved.
func (h *HomeService) Refresh(ctx context.Context) domain.RefreshSummary {
	return h.forecast.RefreshAll(ctx)
}

// Subscribe registers o for fetch state transitions.
func (h *HomeService) Subscribe(o domain.StateObserver) func() {
	return h.forecast.Subscribe(o)
}

// Wait blocks until background fetches started by Add have finished.
func (h *HomeService) Wait() {
	h.background.Wait()
	h.forecast.Wait()
}

func (h *HomeService) view(loc domain.Location) LocationView {
	v := LocationView{Location: loc, State: h.forecast.State(loc.ID)}
	if snap, ok := h.forecast.Snapshot(loc.ID); ok {
		v.Snapshot = snap
	}
	if ts, ok := h.forecast.LastUpdated(loc.ID); ok {
		v.LastUpdated = ts
	}
	return v
}
