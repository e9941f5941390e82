package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/weatherly/internal/domain"
)

// SavedChecker reports whether a coordinate pair is already tracked.
type SavedChecker interface {
	IsSaved(lat, lon float64) bool
}

// SearchResult is a geocoder candidate ranked against the query.
type SearchResult struct {
	Candidate domain.Candidate
	Score     int  // Match score (lower is better)
	Saved     bool // Adding it would be rejected as a duplicate
}

// SearchService resolves city names into ranked candidates.
// Nothing is cached between searches.
type SearchService struct {
	geocoder domain.Geocoder
	saved    SavedChecker
	logger   *slog.Logger
}

// NewSearchService creates a new search service
func NewSearchService(geocoder domain.Geocoder, saved SavedChecker, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{geocoder: geocoder, saved: saved, logger: logger}
}

// Search geocodes query and ranks the candidates, best first.
// An empty query returns nil; no matches return an empty slice.
func (s *SearchService) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	s.logger.Debug("searching", "query", query)

	candidates, err := s.geocoder.SearchByName(ctx, query)
	if err != nil {
		s.logger.Warn("city search failed", "query", query, "error", err)
		return nil, err
	}

	results := rankCandidates(candidates, query)
	for i := range results {
		c := results[i].Candidate
		if c.Lat != nil && c.Lon != nil && s.saved != nil {
			results[i].Saved = s.saved.IsSaved(*c.Lat, *c.Lon)
		}
	}

	s.logger.Debug("search complete", "query", query, "results", len(results))
	return results, nil
}

// rankCandidates scores every candidate and sorts them, keeping geocoder
// order among equal scores.
func rankCandidates(candidates []domain.Candidate, query string) []SearchResult {
	query = strings.ToLower(query)

	results := make([]SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = SearchResult{Candidate: c, Score: matchScore(strings.ToLower(c.Name), query)}
	}

	slices.SortStableFunc(results, func(a, b SearchResult) int {
		return a.Score - b.Score
	})
	return results
}

// matchScore calculates a match score for ranking
// Lower score = better match
func matchScore(name, query string) int {
	if name == query {
		return 0
	}
	if strings.HasPrefix(name, query) {
		return 10
	}
	if strings.Contains(name, query) {
		return 50
	}
	// Query letters appear in order ("sfo" in "san francisco")
	if rank := fuzzy.RankMatchFold(query, name); rank >= 0 {
		return 75 + rank
	}
	return 100 + fuzzy.LevenshteinDistance(query, name)
}
