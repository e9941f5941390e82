package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WeatherSource fetches weather for a coordinate pair.
// A nil snapshot with a nil error is an explicit empty result.
type WeatherSource interface {
	FetchByCoordinates(ctx context.Context, lat, lon float64) (*Snapshot, error)
}

// Geocoder resolves a city name into location candidates.
type Geocoder interface {
	SearchByName(ctx context.Context, query string) ([]Candidate, error)
}

// KeyValueStore is a synchronous byte-blob store keyed by string.
// Get reports false when the key is absent.
type KeyValueStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// LocationStore persists the ordered location list.
type LocationStore interface {
	LoadLocations() ([]Location, error)
	SaveLocations(locations []Location) error
}

// TimestampStore persists the last successful fetch time per location.
type TimestampStore interface {
	LoadLastUpdated() (map[uuid.UUID]time.Time, error)
	SaveLastUpdated(lastUpdated map[uuid.UUID]time.Time) error
}

// LocationLookup is the read side of the location registry.
type LocationLookup interface {
	Get(id uuid.UUID) (Location, bool)
	List() []Location
}
