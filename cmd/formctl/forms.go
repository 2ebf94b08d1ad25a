package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newFormsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forms",
		Short: "List the forms in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := root.loadCatalog()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FORM\tFLOW\tREGION\tENDPOINT")
			for _, f := range catalog.Forms {
				endpoint := f.Endpoint
				if endpoint == "" {
					endpoint = "(form action)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, f.Flow, catalog.RegionFor(f), endpoint)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			targets := make([]string, 0)
			for _, f := range catalog.Forms {
				for key, id := range f.Targets {
					targets = append(targets, fmt.Sprintf("%s.%s=%s", f.ID, key, id))
				}
			}
			if len(targets) > 0 {
				sort.Strings(targets)
				fmt.Fprintf(cmd.OutOrStdout(), "\ntargets: %s\n", strings.Join(targets, " "))
			}
			return nil
		},
	}
}
