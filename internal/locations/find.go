package locations

import (
	"strings"

	"github.com/mmcdole/weatherly/internal/domain"
	"github.com/sahilm/fuzzy"
)

// nameIndex implements sahilm/fuzzy.Source over display names
type nameIndex struct {
	locations  []domain.Location
	lowerNames []string // Pre-computed lowercase display names
}

func newNameIndex(locations []domain.Location) *nameIndex {
	idx := &nameIndex{locations: locations, lowerNames: make([]string, len(locations))}
	for i, loc := range locations {
		idx.lowerNames[i] = strings.ToLower(loc.DisplayName())
	}
	return idx
}

// String returns the lowercase name at index i (implements fuzzy.Source)
func (idx *nameIndex) String(i int) string { return idx.lowerNames[i] }

// Len returns the number of items (implements fuzzy.Source)
func (idx *nameIndex) Len() int { return len(idx.locations) }

// Match is a tracked location matched by Find.
type Match struct {
	Location       domain.Location
	Index          int   // Position in the registry order
	MatchedIndexes []int // Matched rune positions in the display name
}

// Find fuzzy-matches query against location display names, best match first.
// An empty query returns nil.
func (r *Registry) Find(query string) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	idx := newNameIndex(r.List())
	matches := fuzzy.FindFrom(query, idx)

	results := make([]Match, len(matches))
	for i, m := range matches {
		results[i] = Match{
			Location:       idx.locations[m.Index],
			Index:          m.Index,
			MatchedIndexes: m.MatchedIndexes,
		}
	}
	return results
}
