package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mriopack/internal/datapackage"
)

func newVerifyCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <archive>",
		Short: "Re-hash every resource of an archive against its manifest",
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
			if err := pkg.Verify(ctx); err != nil {
				return err
			}

			e.logger.InfoContext(ctx, "package verified",
				slog.String("archive", args[0]),
				slog.Int("resources", len(pkg.Manifest().Resources)))
			fmt.Fprintf(cmd.OutOrStdout(), "ok  %s  %d resources\n", args[0], len(pkg.Manifest().Resources))
			return nil
		},
	}
}
