package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newVersionsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List the registered dataset versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := root.setup(ctx)
			if err != nil {
				return err
			}
			defer e.close(ctx)

			svc, err := e.conversions()
			if err != nil {
				return err
			}
			versions, err := svc.Versions()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tDATASET\tCOMPRESSION\tARCHIVE")
			for _, v := range versions {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID, v.Dataset.Name, v.Compression, v.ArchiveName())
			}
			return tw.Flush()
		},
	}
}
