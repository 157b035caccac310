package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newWidgetsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "widgets",
		Short: "List registered widget types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFALLBACK\tCHILDREN\tINTERACTIVE\tTAGS")
			for _, id := range reg.List() {
				r, _ := reg.Lookup(id)
				fallback := r.FallbackWidgetID
				if fallback == "" {
					fallback = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%s\n",
					r.ID, fallback, r.Capabilities.AcceptsChildren, r.Capabilities.Interactive,
					strings.Join(r.Capabilities.Tags, ","),
				)
			}
			return tw.Flush()
		},
	}
}
