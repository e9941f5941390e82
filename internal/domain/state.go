package domain

import "github.com/google/uuid"

// FetchStatus is the phase of a location's fetch lifecycle.
type FetchStatus int

const (
	StatusIdle FetchStatus = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s FetchStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Messages carried by StatusError states.
const (
	MessageNoData       = "No data received."
	MessageNetworkError = "Network error"
)

// FetchState is the per-location fetch state. Message is set only for StatusError.
type FetchState struct {
	Status  FetchStatus
	Message string
}

var (
	StateIdle    = FetchState{Status: StatusIdle}
	StateLoading = FetchState{Status: StatusLoading}
	StateLoaded  = FetchState{Status: StatusLoaded}
)

// ErrorState builds a StatusError state with the given message.
func ErrorState(message string) FetchState {
	return FetchState{Status: StatusError, Message: message}
}

func (s FetchState) String() string {
	if s.Status == StatusError {
		return "error: " + s.Message
	}
	return s.Status.String()
}

// StateEvent reports a FetchState transition for one location.
// Removed is set when the location's state was cleared by deletion.
type StateEvent struct {
	LocationID uuid.UUID
	State      FetchState
	Removed    bool
}

// StateObserver receives state transitions. Implementations must not block
// and must not call back into the publisher.
type StateObserver interface {
	OnStateChange(event StateEvent)
}

// ObserverFunc adapts a function to StateObserver.
type ObserverFunc func(StateEvent)

func (f ObserverFunc) OnStateChange(event StateEvent) { f(event) }

// NoOpObserver discards events (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnStateChange(StateEvent) {}

// FetchResult summarizes one FetchIfNeeded call.
type FetchResult struct {
	LocationID uuid.UUID
	Skipped    bool // true if the gate rejected the fetch (fresh cache or already loading)
	State      FetchState
}

// RefreshSummary summarizes a bulk refresh or sweep.
type RefreshSummary struct {
	Total   int // locations considered
	Fetched int // network calls issued
	Loaded  int
	Failed  int
	Skipped int
}
