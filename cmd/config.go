package cmd

import (
	"fmt"

	"casetracker/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigCmd creates the 'config' command group
func newConfigCmd(opts *globalOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	configCmd.AddCommand(newConfigShowCmd(opts))
	return configCmd
}

// newConfigShowCmd creates the 'config show' subcommand
func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, config file and environment
overrides are applied. Secrets are redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			redacted := cfg.Redacted()
			out := cmd.OutOrStdout()
			if asJSON {
				return outputAsJSON(out, redacted)
			}

			encoder := yaml.NewEncoder(out)
			encoder.SetIndent(2)
			if err := encoder.Encode(redacted); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return encoder.Close()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")

	return cmd
}
