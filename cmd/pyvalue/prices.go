package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emretezel/pyvalue-sub000/internal/app"
)

func newPricesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prices SYMBOL...",
		Short: "Refresh the latest price snapshot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				failed := 0
				for _, symbol := range args {
					snap, err := a.MarketDataService.Refresh(ctx, symbol)
					if err != nil {
						failed++
						fmt.Fprintf(out, "%s\terror: %v\n", symbol, err)
						continue
					}
					fmt.Fprintf(out, "%s\t%s\t%.4f %s\tmarket cap %.0f\n", snap.Symbol, snap.AsOf, snap.Price, snap.Currency, snap.MarketCap)
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d symbols failed", failed, len(args))
				}
				return nil
			})
		},
	}
}
