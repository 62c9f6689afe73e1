package main

import (
	"fmt"

	"github.com/UnknownOlympus/compass/internal/repository"
	"github.com/UnknownOlympus/compass/internal/server"
	"github.com/UnknownOlympus/compass/internal/service"
	"github.com/spf13/cobra"
)

func newBackfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Resolve stored addresses that have no coordinates yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := newApp(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			cfg := app.cfg

			// Initialize the database connection.
			dtb, err := repository.NewDatabase(ctx,
				cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
			)
			if err != nil {
				app.log.ErrorContext(ctx, "Failed to connect to DB", "error", err)
				return fmt.Errorf("failed to connect to DB: %w", err)
			}
			defer dtb.Close()

			repo := repository.NewRepository(dtb, app.log)
			if err = repo.CreateSchema(ctx); err != nil {
				return err
			}

			backfill := service.NewBackfillService(app.log, repo, app.dispatcher, app.metrics, service.BackfillConfig{
				Workers:     cfg.Workers,
				Interval:    cfg.Interval,
				BatchSize:   cfg.BatchSize,
				MaxAttempts: cfg.MaxAttempts,
			})

			// Monitoring endpoints only; the geocode API is served by the serve command.
			monitoring := server.New(nil, app.reg, app.metrics, app.log, server.WithPinger(dtb))
			go func() {
				if err := monitoring.Run(ctx, cfg.Port); err != nil {
					app.log.ErrorContext(ctx, "Monitoring server failed", "error", err)
				}
			}()

			app.log.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")
			backfill.Run(ctx)

			// Log that a shutdown signal has been received.
			app.log.InfoContext(ctx, "Shutdown signal received. Stopping application...")
			return nil
		},
	}
}
