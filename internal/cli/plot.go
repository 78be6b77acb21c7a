package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RMahshie/dwarfmag/internal/plot"
	"github.com/RMahshie/dwarfmag/internal/storage"
)

const (
	kindMagnitudes = "magnitudes"
	kindLimits     = "limits"
)

type plotOpts struct {
	kind   string
	out    string
	depths string
	width  int
	height int
}

func newPlotCmd() *cobra.Command {
	opts := plotOpts{
		kind:   kindMagnitudes,
		width:  plot.DefaultWidth,
		height: plot.DefaultHeight,
	}

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render grid results to PNG",
		Long:  `Render magnitude vs. temperature (narrow-band filters omitted) or detection distance vs. temperature. Output goes to --out or OUTPUT_DIR/<kind>.png, locally or in a bucket.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.kind != kindMagnitudes && opts.kind != kindLimits {
				return fmt.Errorf("unknown plot kind %q (want %s or %s)", opts.kind, kindMagnitudes, kindLimits)
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			table, err := a.service.RunGrid(ctx)
			if err != nil {
				return err
			}

			var chart plot.Chart
			switch opts.kind {
			case kindMagnitudes:
				refs, err := a.filters.ListFilters(ctx)
				if err != nil {
					return err
				}
				chart = plot.MagnitudeChart(table, refs)
			case kindLimits:
				depths, err := surveyDepths(a.cfg, opts.depths)
				if err != nil {
					return err
				}
				chart = plot.LimitsChart(a.service.DetectionLimits(table, depths))
			}
			chart.Width, chart.Height = opts.width, opts.height

			data, err := chart.RenderPNG()
			if err != nil {
				return err
			}

			dest := opts.out
			if dest == "" {
				dest = outputPath(a.cfg.Output.Dir, opts.kind+".png")
			}
			location, err := a.write(ctx, dest, data, "image/png")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "Rendered %s plot", opts.kind)
			printFile(out, dest)
			if location != dest {
				printLink(out, location)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.kind, "kind", "k", opts.kind, "plot kind: magnitudes or limits")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output path (local or s3://bucket/key)")
	cmd.Flags().StringVar(&opts.depths, "depths", "", "survey depths for limits plots (default SURVEY_DEPTHS)")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "image width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "image height in pixels")

	return cmd
}

// outputPath joins name onto dir, keeping bucket paths slash-separated
func outputPath(dir, name string) string {
	if storage.IsS3(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}
