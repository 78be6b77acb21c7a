package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List discovered filter curves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			refs, err := a.filters.ListFilters(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printTitle(out, fmt.Sprintf("%d filters in %s", len(refs), a.cfg.Filters.Dir))
			fmt.Fprintln(out, renderFilters(refs))
			return nil
		},
	}
}
