package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Location is a user-tracked geographic point with display metadata.
// ID, Lat and Lon never change after creation.
type Location struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	State   string    `json:"state,omitempty"` // Subdivision (state, province), optional
	Country string    `json:"country"`         // ISO 3166 country code
	Lat     float64   `json:"lat"`
	Lon     float64   `json:"lon"`
}

// DisplayName joins name, state and country ("Cupertino, CA, US").
func (l Location) DisplayName() string {
	parts := []string{l.Name}
	if l.State != "" {
		parts = append(parts, l.State)
	}
	parts = append(parts, l.Country)
	return strings.Join(parts, ", ")
}

// Near reports whether the point lies within tolerance degrees of the
// location on both axes.
func (l Location) Near(lat, lon, tolerance float64) bool {
	return abs(l.Lat-lat) < tolerance && abs(l.Lon-lon) < tolerance
}

// Candidate is a geocoder result that can become a Location.
// Coordinates are pointers so a missing value is distinguishable from 0.
type Candidate struct {
	Name    string   `json:"name" validate:"required"`
	State   string   `json:"state,omitempty"`
	Country string   `json:"country" validate:"required"`
	Lat     *float64 `json:"lat" validate:"required,latitude"`
	Lon     *float64 `json:"lon" validate:"required,longitude"`
}

// DisplayName mirrors Location.DisplayName for search results.
func (c Candidate) DisplayName() string {
	parts := []string{c.Name}
	if c.State != "" {
		parts = append(parts, c.State)
	}
	if c.Country != "" {
		parts = append(parts, c.Country)
	}
	return strings.Join(parts, ", ")
}

// NewLocation builds a Location with a fresh identity from a candidate.
// The candidate must already be validated.
func NewLocation(c Candidate) Location {
	return Location{
		ID:      uuid.New(),
		Name:    c.Name,
		State:   c.State,
		Country: c.Country,
		Lat:     *c.Lat,
		Lon:     *c.Lon,
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
