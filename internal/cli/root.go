// Package cli implements the dwarfmag command tree.
package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the dwarfmag CLI and returns an error if any command fails
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the root command with all subcommands attached.
//
// Logging defaults to info level on stderr; --verbose lowers it to debug.
// --env selects the .env.<env> file read by the config loader.
func NewRootCommand() *cobra.Command {
	var verbose bool
	var env string

	root := &cobra.Command{
		Use:           "dwarfmag",
		Short:         "Synthetic AB photometry of brown-dwarf model spectra",
		Long:          `dwarfmag integrates model spectra through filter response curves, tabulates AB magnitudes across a temperature grid, and derives survey detection distances.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)

			if env != "" {
				viper.Set("ENVIRONMENT", env)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&env, "env", "", "environment name selecting .env.<env> (default from ENVIRONMENT)")

	root.AddCommand(newMagCmd())
	root.AddCommand(newFiltersCmd())
	root.AddCommand(newGridCmd())
	root.AddCommand(newLimitsCmd())
	root.AddCommand(newPlotCmd())

	return root
}
