package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emretezel/pyvalue-sub000/internal/app"
)

func newIngestCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Download fundamentals and replace stored facts",
	}

	var cik string
	secCmd := &cobra.Command{
		Use:   "sec SYMBOL...",
		Short: "Ingest SEC companyfacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cik != "" && len(args) > 1 {
				return fmt.Errorf("--cik applies to a single symbol")
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return forEachSymbol(cmd.OutOrStdout(), args, func(symbol string) (int, error) {
					return a.IngestService.IngestSEC(ctx, symbol, cik)
				})
			})
		},
	}
	secCmd.Flags().StringVar(&cik, "cik", "", "SEC CIK, skips the ticker lookup")

	eodhdCmd := &cobra.Command{
		Use:   "eodhd SYMBOL...",
		Short: "Ingest EODHD fundamentals",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return forEachSymbol(cmd.OutOrStdout(), args, func(symbol string) (int, error) {
					return a.IngestService.IngestEODHD(ctx, symbol)
				})
			})
		},
	}

	cmd.AddCommand(secCmd, eodhdCmd)
	return cmd
}

func newNormalizeCmd(opts *rootOptions) *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "normalize SYMBOL...",
		Short: "Rebuild facts from stored raw payloads without downloading",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return forEachSymbol(cmd.OutOrStdout(), args, func(symbol string) (int, error) {
					return a.IngestService.NormalizeStored(ctx, provider, symbol)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&provider, "provider", "p", "SEC", "Payload provider (SEC or EODHD)")
	return cmd
}
