package locations

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mmcdole/weatherly/internal/domain"
	"github.com/mmcdole/weatherly/internal/store"
)

// DuplicateTolerance is the coordinate distance (degrees, per axis) under
// which two locations are considered the same place.
const DuplicateTolerance = 0.001

var validate = validator.New(validator.WithRequiredStructEnabled())

// Registry is the ordered collection of tracked locations.
// Implements domain.LocationLookup.
type Registry struct {
	store  domain.LocationStore
	logger *slog.Logger

	mu        sync.RWMutex
	locations []domain.Location
	version   uint64

	saver store.Saver
}

// NewRegistry loads the saved list from st. A failed load starts empty.
func NewRegistry(st domain.LocationStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	locations, err := st.LoadLocations()
	if err != nil {
		logger.Error("failed to load saved locations", "error", err)
		locations = nil
	}
	logger.Debug("loaded locations", "count", len(locations))

	return &Registry{store: st, logger: logger, locations: locations}
}

// Validate checks that a candidate carries every field a Location needs.
func Validate(c domain.Candidate) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCandidate, err)
	}
	return nil
}

// Add appends a location built from c and persists the list.
func (r *Registry) Add(c domain.Candidate) (domain.Location, error) {
	if err := Validate(c); err != nil {
		r.logger.Warn("rejected candidate", "name", c.Name, "error", err)
		return domain.Location{}, err
	}

	r.mu.Lock()
	for _, existing := range r.locations {
		if existing.Near(*c.Lat, *c.Lon, DuplicateTolerance) {
			r.mu.Unlock()
			r.logger.Info("location already saved", "name", c.Name, "existing", existing.ID)
			return domain.Location{}, fmt.Errorf("%w: %s", domain.ErrDuplicateLocation, existing.DisplayName())
		}
	}
	loc := domain.NewLocation(c)
	r.locations = append(r.locations, loc)
	snapshot, version := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Info("added location", "id", loc.ID, "name", loc.DisplayName())
	r.persist(snapshot, version)
	return loc, nil
}

// IsSaved reports whether a location near the coordinates is already tracked.
func (r *Registry) IsSaved(lat, lon float64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, existing := range r.locations {
		if existing.Near(lat, lon, DuplicateTolerance) {
			return true
		}
	}
	return false
}

// Remove deletes the location with id and persists the list.
func (r *Registry) Remove(id uuid.UUID) (domain.Location, error) {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return domain.Location{}, fmt.Errorf("%w: %s", domain.ErrLocationNotFound, id)
	}
	removed := r.locations[idx]
	r.locations = slices.Delete(r.locations, idx, idx+1)
	snapshot, version := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Info("removed location", "id", id, "name", removed.DisplayName())
	r.persist(snapshot, version)
	return removed, nil
}

// Move relocates the location at from so that it ends up at index to.
func (r *Registry) Move(from, to int) error {
	r.mu.Lock()
	n := len(r.locations)
	if from < 0 || from >= n || to < 0 || to >= n {
		r.mu.Unlock()
		return fmt.Errorf("%w: move %d -> %d with %d locations", domain.ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		r.mu.Unlock()
		return nil
	}
	loc := r.locations[from]
	r.locations = slices.Delete(r.locations, from, from+1)
	r.locations = slices.Insert(r.locations, to, loc)
	snapshot, version := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debug("moved location", "id", loc.ID, "from", from, "to", to)
	r.persist(snapshot, version)
	return nil
}

// List returns a copy of the tracked locations in order.
func (r *Registry) List() []domain.Location {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.locations)
}

// Get returns the location with id.
func (r *Registry) Get(id uuid.UUID) (domain.Location, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if idx := r.indexLocked(id); idx >= 0 {
		return r.locations[idx], true
	}
	return domain.Location{}, false
}

// Len returns the number of tracked locations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.locations)
}

func (r *Registry) indexLocked(id uuid.UUID) int {
	return slices.IndexFunc(r.locations, func(l domain.Location) bool { return l.ID == id })
}

func (r *Registry) snapshotLocked() ([]domain.Location, uint64) {
	r.version++
	return slices.Clone(r.locations), r.version
}

// persist writes outside r.mu; failures leave memory authoritative.
func (r *Registry) persist(locations []domain.Location, version uint64) {
	_, err := r.saver.Save(version, func() error {
		return r.store.SaveLocations(locations)
	})
	if err != nil {
		r.logger.Error("failed to save locations", "error", err, "count", len(locations))
	}
}
