package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crossgen/crossgen/pkg/providers"
)

func newProvidersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers <dir>",
		Short: "List the provider bundles discovered under a directory",
		Long: `Providers scans a directory for script-provider bundles (subdirectories
containing a manifest.yaml plus a Starlark script) and lists what it
finds. The same discovery runs before generation for every directory in
a suite's provider_dirs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tel, err := newTelemetry(cmd.Root().Version)
			if err != nil {
				return err
			}

			registry := providers.NewRegistry(tel.Logger)
			if err := registry.ScanDirectory(args[0]); err != nil {
				return err
			}

			names := registry.List()
			if len(names) == 0 {
				fmt.Println("No provider bundles found")
				return nil
			}

			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	return cmd
}
