package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/RMahshie/dwarfmag/internal/config"
)

func newGridCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Tabulate magnitudes for every filter and temperature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			table, err := a.service.RunGrid(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, table)
			}
			printTitle(out, fmt.Sprintf("AB magnitudes (run %s)", table.RunID))
			fmt.Fprintln(out, renderMagnitudes(table))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the table as JSON")
	return cmd
}

func newLimitsCmd() *cobra.Command {
	var asJSON bool
	var depthsFlag string

	cmd := &cobra.Command{
		Use:   "limits",
		Short: "Derive detection distances from survey depths",
		Long:  `Run the magnitude grid and convert each magnitude into the farthest distance at which the source stays brighter than the survey's limiting magnitude in that filter.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			depths, err := surveyDepths(a.cfg, depthsFlag)
			if err != nil {
				return err
			}

			table, err := a.service.RunGrid(cmd.Context())
			if err != nil {
				return err
			}
			limits := a.service.DetectionLimits(table, depths)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, limits)
			}
			printTitle(out, "Detection limits")
			fmt.Fprintln(out, renderLimits(limits))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the limits as JSON")
	cmd.Flags().StringVar(&depthsFlag, "depths", "", "survey depths as FILTER=MAG,... (default SURVEY_DEPTHS)")
	return cmd
}

// surveyDepths prefers the flag value over the configured depths
func surveyDepths(cfg *config.Config, flag string) (map[string]float64, error) {
	depths := cfg.Survey.Depths
	if flag != "" {
		var err error
		if depths, err = config.ParseDepths(flag); err != nil {
			return nil, err
		}
	}
	if len(depths) == 0 {
		return nil, errors.New("no survey depths configured; set SURVEY_DEPTHS or pass --depths")
	}
	return depths, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
