package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// timeNow is replaced in tests.
var timeNow = time.Now

func newListCmd() *cobra.Command {
	var fetch bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "Show saved locations and their weather",
		Aliases: []string{"ls"},
		GroupID: GroupWeather,
		Args:    cobra.NoArgs,
		Long: `Show saved locations with their cached weather.

With --fetch, locations whose weather is missing, failed or older than
ten minutes are fetched first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fetch {
				if err := requireAPIKey(cfg); err != nil {
					return err
				}
			}
			a, err := openApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			views := a.home.Locations()
			if len(views) == 0 {
				fmt.Fprintln(out, "No saved locations. Add one with 'weatherly add <city>'.")
				return nil
			}

			if fetch {
				summary := a.home.AppearAll(cmd.Context())
				views = a.home.Locations()
				defer printSummary(out, summary)
			}
			fmt.Fprintln(out, renderLocations(views, timeNow()))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&fetch, "fetch", "f", false, "Fetch stale weather before listing")
	return cmd
}
