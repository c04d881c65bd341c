package commands

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crossgen/crossgen/pkg/config"
	"github.com/crossgen/crossgen/pkg/generator"
	"github.com/crossgen/crossgen/pkg/providers"
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <suite.cue> [overlay.cue...]",
		Short: "Regenerate artifacts whenever the suite or its providers change",
		Long: `Watch runs an initial generation, then watches the configuration files
and provider directories and regenerates on every change. Overwrite
permissions are implied: regeneration always replaces the previous
output.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tel, err := newTelemetry(cmd.Root().Version)
			if err != nil {
				return err
			}

			baseDir := filepath.Dir(args[0])

			regenerate := func() error {
				cfg, err := config.NewParser().Load(args...)
				if err != nil {
					return err
				}
				cfg.Output.OverwriteDir = true
				cfg.Output.OverwriteFiles = true

				registry := providers.NewRegistry(tel.Logger)
				runner := generator.NewRunner(cfg, baseDir, registry, tel)
				_, err = runner.Run(cmd.Context())
				return err
			}

			if err := regenerate(); err != nil {
				return err
			}

			// Watch the config files plus any provider directories they name.
			watchPaths := append([]string(nil), args...)
			if cfg, err := config.NewParser().Load(args...); err == nil {
				for _, dir := range cfg.ProviderDirs {
					if !filepath.IsAbs(dir) {
						dir = filepath.Join(baseDir, dir)
					}
					watchPaths = append(watchPaths, dir)
				}
			}

			err = generator.Watch(cmd.Context(), watchPaths, tel.Logger, regenerate)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	return cmd
}
