// Command tycoon runs the device tycoon simulation and its control API.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/device-tycoon/internal/config"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "tycoon",
		Short: "Consumer-electronics tycoon simulation",
		Long: `Runs a day-by-day simulation of a device company from 1970 onward:
scripted era events, rival companies, a retail store network and product
releases, controlled over an HTTP API and saved to SQLite or Postgres.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults to $TYCOON_CONFIG)")

	root.AddCommand(
		newRunCmd(&configPath),
		newCalendarCmd(),
		newEventsCmd(&configPath),
		newSlotsCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the config and installs the default logger.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	slog.SetDefault(cfg.Log.NewLogger(os.Stdout))
	return cfg, nil
}
