package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RMahshie/dwarfmag/pkg/models"
)

func newMagCmd() *cobra.Command {
	var filterID, model string
	var teff int

	cmd := &cobra.Command{
		Use:   "mag",
		Short: "Compute one synthetic magnitude",
		Long:  `Compute the AB magnitude of one model spectrum through one filter. The model is either a grid temperature (--teff) or an explicit path (--model).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (teff == 0) == (model == "") {
				return errors.New("exactly one of --teff or --model is required")
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			var m models.Magnitude
			if model != "" {
				m, err = a.service.ModelMagnitude(cmd.Context(), filterID, model)
			} else {
				m, err = a.service.Magnitude(cmd.Context(), filterID, teff)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printKeyValue(out, "filter", m.FilterID)
			if model != "" {
				printKeyValue(out, "model", model)
			} else {
				printKeyValue(out, "teff", strconv.Itoa(m.Teff))
			}
			printKeyValue(out, "magnitude", formatMag(m.Value, true))
			printKeyValue(out, "coverage", fmt.Sprintf("%.1f%%", 100*m.Coverage))
			if m.Coverage < 1 {
				printWarning(out, "model grid does not fully cover the filter response")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filterID, "filter", "f", "", "filter identifier")
	cmd.Flags().IntVarP(&teff, "teff", "t", 0, "grid temperature in K")
	cmd.Flags().StringVarP(&model, "model", "m", "", "path to a model spectrum")
	_ = cmd.MarkFlagRequired("filter")

	return cmd
}
