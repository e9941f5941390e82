package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <name|#>",
		Short:   "Delete a saved location",
		Aliases: []string{"rm"},
		GroupID: GroupLocations,
		Args:    cobra.ExactArgs(1),
		Long: `Delete a saved location along with its cached weather.

The location can be given by its position in 'weatherly list' or by name.`,
		Example: `  weatherly remove 2
  weatherly rm paris`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			loc, err := resolveLocation(a.home, args[0])
			if err != nil {
				return err
			}
			if _, err := a.home.Remove(loc.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", loc.DisplayName())
			return nil
		},
	}
	return cmd
}
