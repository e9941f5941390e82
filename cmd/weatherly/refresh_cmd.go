package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "refresh",
		Short:   "Re-fetch weather for every saved location",
		GroupID: GroupWeather,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(cfg); err != nil {
				return err
			}
			a, err := openApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			summary := a.home.Refresh(cmd.Context())
			if summary.Total == 0 {
				fmt.Fprintln(out, "No saved locations.")
				return nil
			}
			fmt.Fprintln(out, renderLocations(a.home.Locations(), timeNow()))
			printSummary(out, summary)
			return nil
		},
	}
	return cmd
}
