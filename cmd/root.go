// Package cmd provides the casetracker command-line interface.
package cmd

import (
	"encoding/json"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// defaultTimeout bounds CLI operations that touch the database
const defaultTimeout = 30 * time.Second

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	configFile string
	noColor    bool
	quiet      bool
}

// NewRootCmd builds the casetracker command tree. serve runs the HTTP server
// with the --config path and is invoked when no subcommand is given.
func NewRootCmd(serve func(configFile string) error) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "casetracker",
		Short: "Case definition and examine tracking service",
		Long: `casetracker serves a REST API for case definitions and examines.

Run without a subcommand to start the HTTP server. Configuration is read from
config.yaml in the working directory or ./config, then from CASETRACKER_*
environment variables.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(opts.configFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file path (default: ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&opts.quiet, "quiet", false, "Suppress non-essential output")

	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newDBCmd(opts))

	return rootCmd
}

// outputAsJSON writes data as indented JSON.
func outputAsJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
