package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/san-kum/diffgen/internal/dataset"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [root]",
		Short: "list runs under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := dataset.List(args[0])
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DIR\tSPLIT\tN\tSAMPLES\tCREATED\tRUN")
			for _, ri := range runs {
				if !ri.Complete() {
					fmt.Fprintf(w, "%s\t-\t-\t-\t-\tincomplete\n", ri.Dir)
					continue
				}
				m := ri.Manifest
				split := "-"
				if m.Config != nil {
					split = m.Config.Split
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
					ri.Dir, split, m.N, m.Samples, m.CreatedAt.Format("2006-01-02 15:04:05"), m.RunID)
			}
			return w.Flush()
		},
	}
}
