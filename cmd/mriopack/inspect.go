package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mriopack/internal/datapackage"
)

func newInspectCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "Print the manifest of a data package archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := root.setup(ctx)
			if err != nil {
				return err
			}
			defer e.close(ctx)

			pkg, err := datapackage.Open(args[0], e.logger)
			if err != nil {
				return err
			}
			m := pkg.Manifest()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(m)
			}

			fmt.Fprintf(out, "%s\n", m)
			fmt.Fprintf(out, "name:    %s\n", m.Name)
			fmt.Fprintf(out, "title:   %s\n", m.Title)
			fmt.Fprintf(out, "created: %s\n", m.Created)
			if m.Conversion != nil {
				fmt.Fprintf(out, "registry version: %s  normalized: %t  technosphere: %s\n",
					m.Conversion.RegistryVersion, m.Conversion.Normalized, m.Conversion.TechnosphereOutput)
			}
			fmt.Fprintln(out)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPATH\tMEDIATYPE\tHASH")
			for _, r := range m.Resources {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.Path, r.MediaType, r.Hash)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw manifest")
	return cmd
}
