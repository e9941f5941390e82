package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mmcdole/weatherly/internal/domain"
	"github.com/mmcdole/weatherly/internal/scheduler"
	"github.com/mmcdole/weatherly/internal/tui"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Live view of saved locations",
		GroupID: GroupWeather,
		Args:    cobra.NoArgs,
		Long: `Open a live view of saved locations.

Stale weather is fetched on open and re-fetched in the background every
refresh.interval (default 15m, 0 disables it).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(cfg); err != nil {
				return err
			}
			a, err := openApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			events := make(chan domain.StateEvent, 256)
			unsubscribe := a.home.Subscribe(tui.NewChannelObserver(events))
			defer unsubscribe()

			sched := scheduler.New(a.forecast, cfg.Refresh.Interval, logger)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start background refresh: %w", err)
			}
			defer sched.Stop()

			p := tea.NewProgram(
				tui.NewModel(a.home, events),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)

			logger.Info("starting TUI")
			if _, err := p.Run(); err != nil {
				logger.Error("TUI error", "error", err)
				return fmt.Errorf("TUI error: %w", err)
			}
			logger.Info("shutting down")
			return nil
		},
	}
	return cmd
}
