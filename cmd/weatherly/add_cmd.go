package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/weatherly/internal/domain"
)

func newAddCmd() *cobra.Command {
	var pick int

	cmd := &cobra.Command{
		Use:     "add <city>",
		Short:   "Search for a city and save it",
		GroupID: GroupLocations,
		Args:    cobra.MinimumNArgs(1),
		Long: `Search for a city by name and save it to your locations.

With several matches you are asked to pick one, unless --pick is given.
The new location's weather is fetched right away.`,
		Example: `  weatherly add Cupertino
  weatherly add "Portland, US" --pick 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(cfg); err != nil {
				return err
			}
			a, err := openApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			results, err := a.search.Search(ctx, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "No cities found.")
				return nil
			}

			idx := 0
			switch {
			case pick > 0:
				if pick > len(results) {
					return fmt.Errorf("%w: --pick %d (have %d results)", domain.ErrIndexOutOfRange, pick, len(results))
				}
				idx = pick - 1
			case len(results) > 1:
				fmt.Fprintln(out, renderSearchResults(results))
				choice, ok, err := promptChoice(cmd.InOrStdin(), out, len(results))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
				idx = choice
			}

			loc, err := a.home.Add(ctx, results[idx].Candidate)
			if errors.Is(err, domain.ErrDuplicateLocation) {
				fmt.Fprintf(out, "%s is already saved.\n", results[idx].Candidate.DisplayName())
				return nil
			}
			if err != nil {
				return err
			}

			a.home.Wait()
			view, _ := a.home.Location(loc.ID)
			fmt.Fprintf(out, "Added %s.\n", loc.DisplayName())
			if view.Snapshot != nil {
				fmt.Fprintf(out, "Currently %.0f°C.\n", view.Snapshot.Current.Temp)
			} else {
				fmt.Fprintf(out, "Weather not available: %s\n", statusText(view.State))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&pick, "pick", "p", 0, "Pick the nth search result without prompting")
	return cmd
}
