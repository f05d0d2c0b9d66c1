package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nixlim/tripwatch/internal/banner"
	"github.com/nixlim/tripwatch/internal/storage"
	"github.com/nixlim/tripwatch/internal/trip"
)

const statusWidth = 80

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <trip-id>",
		Short: "Print the banner for one trip and exit",
		Long: `status loads persisted trip state and prints the trip's banner once.
Nothing is printed when the trip is not being monitored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg.Logging, os.Stderr)
			if err != nil {
				return err
			}
			defer closeLog()
			slog.SetDefault(logger)

			store, _, err := storage.NewStore(cfg.Storage)
			if err != nil {
				return fmt.Errorf("storage error: %w", err)
			}
			defer store.Close()

			return printStatus(cmd.OutOrStdout(), store, args[0], statusWidth)
		},
	}
}

func printStatus(w io.Writer, store trip.Store, tripID string, width int) error {
	t := store.GetTrip(tripID)
	if t == nil {
		return fmt.Errorf("%w: %s", trip.ErrTripNotFound, tripID)
	}
	out := banner.Render(banner.ForAlerts(t.Alerts, t.Monitoring), width, 0)
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
