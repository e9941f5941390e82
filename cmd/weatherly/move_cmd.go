package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "move <from> <to>",
		Short:   "Reorder saved locations",
		Aliases: []string{"mv"},
		GroupID: GroupLocations,
		Args:    cobra.ExactArgs(2),
		Example: `  weatherly move 3 1   # Make the third location the first`,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			to, err := parsePosition(args[1])
			if err != nil {
				return err
			}

			a, err := openApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.home.Move(from, to); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLocations(a.home.Locations(), timeNow()))
			return nil
		},
	}
	return cmd
}
