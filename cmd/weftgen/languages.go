package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cpcf/weftgen/lang"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported target languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LANGUAGE\tEXTENSION\tTEMPLATES")
			for _, l := range lang.All() {
				e, _ := lang.Lookup(l)
				fmt.Fprintf(w, "%s\t%s\t%s/\n", e.Name, e.Extension, e.Namespace)
			}
			return w.Flush()
		},
	}
}
