package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/emretezel/pyvalue-sub000/internal/app"
	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		port     int
		schedule bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the read-only REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if port > 0 {
					a.Config.Server.Port = port
				}
				common.PrintBanner(a.Config, a.Logger)

				if schedule {
					if err := a.StartScheduler(ctx); err != nil {
						return err
					}
				}

				srv := server.NewServer(a)
				errCh := make(chan error, 1)
				go func() {
					if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						errCh <- err
					}
					close(errCh)
				}()

				select {
				case err := <-errCh:
					if err != nil {
						return err
					}
				case <-ctx.Done():
					a.Logger.Info().Msg("Shutdown signal received")
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
				}
				common.PrintShutdownBanner(a.Logger)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Server port (overrides config)")
	cmd.Flags().BoolVar(&schedule, "schedule", false, "Also run the cron cycle while serving")
	return cmd
}
