package tui

import "github.com/mmcdole/weatherly/internal/domain"

// ChannelObserver adapts domain.StateObserver to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan<- domain.StateEvent
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- domain.StateEvent) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnStateChange sends the event to the channel (non-blocking if full).
func (o *ChannelObserver) OnStateChange(event domain.StateEvent) {
	select {
	case o.ch <- event:
	default: // Non-blocking if channel full
	}
}
