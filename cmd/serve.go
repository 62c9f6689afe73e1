package main

import (
	"github.com/UnknownOlympus/compass/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the geocoding HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := newApp(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			srv := server.New(app.dispatcher, app.reg, app.metrics, app.log)

			app.log.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")
			if err = srv.Run(ctx, app.cfg.Port); err != nil {
				app.log.ErrorContext(ctx, "HTTP server failed", "error", err)
				return err
			}

			app.log.InfoContext(ctx, "Application stopped gracefully.")
			return nil
		},
	}
}
