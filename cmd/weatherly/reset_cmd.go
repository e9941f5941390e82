package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "reset",
		Short:   "Delete all saved locations and cached weather",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if cfg.Store.Path == "" {
				fmt.Fprintln(out, "Nothing to reset: no store path configured.")
				return nil
			}
			if !force && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete everything in %s?", cfg.Store.Path)) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
			if err := cfg.ClearData(); err != nil {
				return err
			}
			logger.Info("cleared data", "path", cfg.Store.Path)
			fmt.Fprintln(out, "All saved data removed.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Do not ask for confirmation")
	return cmd
}
