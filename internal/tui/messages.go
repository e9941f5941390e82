package tui

import "github.com/mmcdole/weatherly/internal/domain"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// StateChangedMsg carries a fetch state transition from the observer channel
type StateChangedMsg struct {
	Event domain.StateEvent
}

// eventsClosedMsg signals that the observer channel was closed
type eventsClosedMsg struct{}

// RefreshDoneMsg signals that a bulk refresh or sweep finished
type RefreshDoneMsg struct {
	Summary domain.RefreshSummary
	Forced  bool // true for RefreshAll, false for the on-appear sweep
}

// FetchDoneMsg signals that a single on-appear fetch finished
type FetchDoneMsg struct {
	Result domain.FetchResult
}

// RemovedMsg signals that a location was deleted
type RemovedMsg struct {
	Location domain.Location
}
