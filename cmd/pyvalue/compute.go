package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emretezel/pyvalue-sub000/internal/app"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
)

func newComputeCmd(opts *rootOptions) *cobra.Command {
	var metricIDs []string
	cmd := &cobra.Command{
		Use:   "compute [SYMBOL...]",
		Short: "Compute metrics for symbols (all stored symbols when none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				summary, err := a.ComputeService.Run(ctx, interfaces.ComputeRequest{
					Symbols:   args,
					MetricIDs: metricIDs,
				})
				if summary != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d symbols, %d computed, %d skipped, %d failed\n",
						summary.RunID, summary.Symbols, summary.Computed, summary.Skipped, summary.Failed)
				}
				return err
			})
		},
	}
	cmd.Flags().StringSliceVarP(&metricIDs, "metric", "m", nil, "Metric id to compute (repeatable, default all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered metric ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(_ context.Context, a *app.App) error {
				for _, id := range a.Registry.IDs() {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	})
	return cmd
}
