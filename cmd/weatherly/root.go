package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmcdole/weatherly/internal/adapter"
)

var (
	// Global flags
	configFile string
	verbose    bool

	// Shared state injected into commands
	cfg    *adapter.Config
	logger *slog.Logger
)

// Command group IDs for organizing help output
const (
	GroupLocations = "locations"
	GroupWeather   = "weather"
	GroupUtility   = "utility"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "weatherly",
	Short: "Track the weather for your saved places",
	Long: `weatherly keeps a list of saved locations and their current weather.

Weather is fetched from OpenWeather and cached; a location is only
re-fetched once its data is more than ten minutes old.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
			return nil
		}

		loaded, err := adapter.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if verbose {
			cfg.Logging.Level = "debug"
		}

		// The watch view owns the terminal; stderr logging would corrupt it
		if cmd.Name() == "watch" && cfg.Logging.File == "" {
			logger = adapter.NullLogger()
		} else if logger, err = adapter.SetupLogger(&cfg.Logging); err != nil {
			// Fall back to null logger if file logging fails
			logger = adapter.NullLogger()
		}
		slog.SetDefault(logger)

		logger.Debug("starting weatherly", "version", version, "command", cmd.Name())
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ~/.config/weatherly/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupLocations, Title: "Location Commands:"},
		&cobra.Group{ID: GroupWeather, Title: "Weather Commands:"},
		&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"},
	)

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newMoveCmd())
	rootCmd.AddCommand(newSearchCmd())

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newRefreshCmd())
	rootCmd.AddCommand(newWatchCmd())

	rootCmd.AddCommand(newResetCmd())
}
