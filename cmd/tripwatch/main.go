package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nixlim/tripwatch/internal/config"
)

var version = "dev"

type rootOptions struct {
	configPath string
	debugPath  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "tripwatch",
		Short: "Terminal trip-safety monitor fed by OTLP logs",
		Long: `tripwatch receives trip alerts as OpenTelemetry log records, derives each
trip's safety status and shows it as a live dashboard with a status banner.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ~/.config/tripwatch/config.toml)")
	cmd.Flags().StringVar(&opts.debugPath, "debug", "", "write every received log record (JSONL) to this file")

	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newSetupCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "tripwatch: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config, or the default one,
// and prints any warnings to stderr.
func loadConfig(opts *rootOptions) (config.Config, error) {
	var (
		result *config.LoadResult
		err    error
	)
	if opts.configPath != "" {
		result, err = config.LoadFrom(config.ExpandTilde(opts.configPath))
	} else {
		result, err = config.Load()
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "tripwatch: config warning: %s\n", w)
	}
	return result.Config, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tripwatch %s\n", version)
		},
	}
}

func newSetupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Write a default config file if none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.DefaultPath()
			if opts.configPath != "" {
				path = config.ExpandTilde(opts.configPath)
			}
			created, err := config.WriteDefault(path)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, left unchanged\n", path)
			}
			return nil
		},
	}
}
