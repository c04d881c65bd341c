package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crossgen/crossgen/pkg/config"
)

func newValidateCommand() *cobra.Command {
	var showConfig bool

	cmd := &cobra.Command{
		Use:   "validate <suite.cue> [overlay.cue...]",
		Short: "Validate a suite configuration without generating anything",
		Example: `  # Validate a suite
  crossgen validate suite.cue

  # Validate and print the effective configuration
  crossgen validate suite.cue --show`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewParser().Load(args...)
			if err != nil {
				return err
			}

			if showConfig {
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("Suite %q is valid: %d tests, %d providers\n",
				cfg.Name, len(cfg.Tests), len(cfg.Providers))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showConfig, "show", false, "print the effective configuration as JSON")

	return cmd
}
