package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/mmcdole/weatherly/internal/domain"
	"github.com/mmcdole/weatherly/internal/service"
)

// listenForStateCmd waits for the next state event
func listenForStateCmd(events <-chan domain.StateEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return StateChangedMsg{Event: event}
	}
}

// AppearAllCmd fetches every location whose weather is missing or stale
func AppearAllCmd(home *service.HomeService) tea.Cmd {
	return func() tea.Msg {
		return RefreshDoneMsg{Summary: home.AppearAll(context.Background())}
	}
}

// RefreshAllCmd force-refreshes every location
func RefreshAllCmd(home *service.HomeService) tea.Cmd {
	return func() tea.Msg {
		return RefreshDoneMsg{Summary: home.Refresh(context.Background()), Forced: true}
	}
}

// AppearCmd fetches one location if needed
func AppearCmd(home *service.HomeService, id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		res, err := home.Appear(context.Background(), id)
		if err != nil {
			return ErrMsg{Err: err, Context: "Fetch failed"}
		}
		return FetchDoneMsg{Result: res}
	}
}

// RemoveCmd deletes a location
func RemoveCmd(home *service.HomeService, id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		loc, err := home.Remove(id)
		if err != nil {
			return ErrMsg{Err: err, Context: "Remove failed"}
		}
		return RemovedMsg{Location: loc}
	}
}
