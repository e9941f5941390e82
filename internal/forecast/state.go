package forecast

import (
	"time"

	"github.com/mmcdole/weatherly/internal/domain"
)

// StaleAfter is how long a loaded snapshot stays fresh. Returning to a
// location within this window does not re-fetch.
const StaleAfter = 600 * time.Second

// entry is the per-location record owned by Service.
type entry struct {
	state       domain.FetchState
	snapshot    *domain.Snapshot
	lastUpdated time.Time // zero = never fetched

	// Set while state is Loading
	gen  uint64
	done chan struct{}
}

// shouldFetch is the gate: whether a fetch may start given the current
// state and the last successful fetch time.
func shouldFetch(state domain.FetchState, lastUpdated, now time.Time) bool {
	switch state.Status {
	case domain.StatusLoading:
		return false
	case domain.StatusLoaded:
		if lastUpdated.IsZero() {
			return true
		}
		return now.Sub(lastUpdated) >= StaleAfter
	default: // idle, error
		return true
	}
}
