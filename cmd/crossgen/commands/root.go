package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crossgen/crossgen/pkg/telemetry"
)

var (
	// Global flags
	verbose       bool
	jsonLogs      bool
	metricsListen string
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crossgen",
		Short: "crossgen - combinatorial test-script generator",
		Long: `crossgen expands a set of base test cases against every combination of
named variant dimensions (driver versions, environment setups, ...) and
materializes each combination as a standalone, runnable Starlark test
script carrying the accumulated settings for that combination.

Features:
  - Deterministic combinatorial expansion (lexicographic branch order)
  - Override-aware setting contexts per combination
  - Static matrix dimensions and Starlark-scripted dimensions
  - CUE suite configuration with validation
  - Atomic artifact writes with overwrite protection`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "log in JSON format")
	rootCmd.PersistentFlags().StringVar(&metricsListen, "metrics-listen", "", "address for the Prometheus metrics endpoint (disabled when empty)")

	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newProvidersCommand())
	rootCmd.AddCommand(newWatchCommand())

	return rootCmd
}

// newTelemetry builds the telemetry stack from the global flags.
func newTelemetry(version string) (*telemetry.Telemetry, error) {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = version

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if jsonLogs {
		cfg.Logging.Format = "json"
	}
	cfg.Metrics.Enabled = metricsListen != ""
	cfg.Metrics.ListenAddress = metricsListen

	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		return nil, err
	}

	if err := tel.Metrics.Serve(); err != nil {
		return nil, err
	}

	return tel, nil
}
