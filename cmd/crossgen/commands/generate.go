package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/crossgen/crossgen/pkg/config"
	"github.com/crossgen/crossgen/pkg/generator"
	"github.com/crossgen/crossgen/pkg/providers"
)

func newGenerateCommand() *cobra.Command {
	var (
		outputDir      string
		overwriteDir   bool
		overwriteFiles bool
		providersDir   string
	)

	cmd := &cobra.Command{
		Use:   "generate <suite.cue> [overlay.cue...]",
		Short: "Generate test-script artifacts for a suite",
		Long: `Generate expands the suite's test cases against every combination of its
variant providers and writes one Starlark artifact per test per
combination under the output directory.

The run aborts on the first error: a failing provider, a pre-existing
output without overwrite permission, or a malformed generated artifact.
Partial output from a failed run is left in place and should be deleted
before retrying.`,
		Example: `  # Generate with the suite's own output settings
  crossgen generate suite.cue

  # Override the destination and allow regenerating over it
  crossgen generate suite.cue --output out/nightly --overwrite-dir --overwrite-files

  # Merge an environment overlay into the suite
  crossgen generate suite.cue overlays/ci.cue`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewParser().Load(args...)
			if err != nil {
				return err
			}

			if outputDir != "" {
				cfg.Output.Dir = outputDir
			}
			if overwriteDir {
				cfg.Output.OverwriteDir = true
			}
			if overwriteFiles {
				cfg.Output.OverwriteFiles = true
			}

			tel, err := newTelemetry(cmd.Root().Version)
			if err != nil {
				return err
			}

			registry := providers.NewRegistry(tel.Logger)
			if providersDir != "" {
				if err := registry.ScanDirectory(providersDir); err != nil {
					return err
				}
			}

			baseDir := filepath.Dir(args[0])
			runner := generator.NewRunner(cfg, baseDir, registry, tel)

			result, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			if result.Artifacts == 0 {
				fmt.Printf("Nothing was produced: every dimension pruned its subtree (run %s)\n", result.RunID)
				return nil
			}

			fmt.Printf("Generated %d artifacts across %d combinations in %s\n",
				result.Artifacts, result.Leaves, result.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "override the output directory")
	cmd.Flags().BoolVar(&overwriteDir, "overwrite-dir", false, "allow generating into an existing output directory")
	cmd.Flags().BoolVar(&overwriteFiles, "overwrite-files", false, "allow replacing existing artifact files")
	cmd.Flags().StringVar(&providersDir, "providers-dir", "", "additional directory scanned for provider bundles")

	return cmd
}
