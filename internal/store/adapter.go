package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/weatherly/internal/domain"
)

// Keys in the key-value store.
const (
	KeyLocations   = "saved_locations"
	KeyLastUpdated = "last_updated"
)

// Adapter maps the location list and timestamp map onto a key-value store.
// Implements domain.LocationStore and domain.TimestampStore.
type Adapter struct {
	kv domain.KeyValueStore
}

// NewAdapter creates an Adapter over kv.
func NewAdapter(kv domain.KeyValueStore) *Adapter {
	return &Adapter{kv: kv}
}

// LoadLocations returns the saved list in order. A missing key is an empty list.
func (a *Adapter) LoadLocations() ([]domain.Location, error) {
	var locations []domain.Location
	ok, err := a.load(KeyLocations, &locations)
	if err != nil || !ok {
		return nil, err
	}
	return locations, nil
}

func (a *Adapter) SaveLocations(locations []domain.Location) error {
	if locations == nil {
		locations = []domain.Location{}
	}
	return a.save(KeyLocations, locations)
}

// LoadLastUpdated returns the timestamp map. Keys that are not valid UUIDs are skipped.
func (a *Adapter) LoadLastUpdated() (map[uuid.UUID]time.Time, error) {
	var raw map[string]time.Time
	ok, err := a.load(KeyLastUpdated, &raw)
	if err != nil || !ok {
		return map[uuid.UUID]time.Time{}, err
	}

	out := make(map[uuid.UUID]time.Time, len(raw))
	for k, v := range raw {
		id, err := uuid.Parse(k)
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out, nil
}

// SaveLastUpdated writes the map with identities serialized as strings.
func (a *Adapter) SaveLastUpdated(lastUpdated map[uuid.UUID]time.Time) error {
	raw := make(map[string]time.Time, len(lastUpdated))
	for id, ts := range lastUpdated {
		raw[id.String()] = ts
	}
	return a.save(KeyLastUpdated, raw)
}

func (a *Adapter) load(key string, dest interface{}) (bool, error) {
	data, ok, err := a.kv.Get(key)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", domain.ErrPersistence, key, err)
	}
	return true, nil
}

func (a *Adapter) save(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrPersistence, key, err)
	}
	if err := a.kv.Set(key, data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}
