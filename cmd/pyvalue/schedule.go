package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emretezel/pyvalue-sub000/internal/app"
)

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the ingest, prices and compute cycle on schedule.cron",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if once {
					summary, err := a.RunCycle(ctx)
					if summary != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "ingested %d, priced %d, failed %d\n", summary.Ingested, summary.Priced, summary.Failed)
					}
					return err
				}

				if err := a.StartScheduler(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				a.Logger.Info().Msg("Shutdown signal received")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Run a single cycle now and exit")
	return cmd
}
