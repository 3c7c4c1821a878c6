package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"mriopack/internal/app"
	"mriopack/internal/infrastructure"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		dir  string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the archives of a directory over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := root.setup(ctx)
			if err != nil {
				return err
			}
			if dir != "" {
				e.cfg.Paths.PackagesDir = dir
			}
			if port > 0 {
				e.cfg.Server.Port = port
			}
			paths, err := e.cfg.ResolvePaths(e.paths.BaseDir)
			if err != nil {
				e.close(ctx)
				return err
			}

			application, err := app.NewApplication(e.cfg, paths, e.providers, e.logger)
			if err != nil {
				e.close(ctx)
				return err
			}
			// Stop shuts the providers down
			defer func() { _ = infrastructure.CloseLogFile() }()

			e.logger.InfoContext(ctx, "serving packages",
				slog.String("dir", paths.PackagesDir),
				slog.Int("port", e.cfg.Server.Port))
			return application.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory of package archives (default: configured packages_dir)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default: configured server port)")
	return cmd
}
