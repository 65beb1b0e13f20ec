package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/emretezel/pyvalue-sub000/internal/app"
	"github.com/emretezel/pyvalue-sub000/internal/common"
)

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "pyvalue",
		Short:         "Fundamentals ingestion, value metrics and stock screening",
		Long:          `pyvalue downloads SEC and EODHD fundamentals, normalizes them into facts, computes value metrics and evaluates screens against the results.`,
		Version:       common.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is normal outside development.
			_ = godotenv.Load(opts.envFile)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path (default $PYVALUE_CONFIG, then pyvalue.toml)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Dotenv file with API keys")

	cmd.AddCommand(
		newIngestCmd(opts),
		newNormalizeCmd(opts),
		newPricesCmd(opts),
		newComputeCmd(opts),
		newScreenCmd(opts),
		newScheduleCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// withApp initializes the App, runs fn with a context cancelled on SIGINT or
// SIGTERM, then closes the App.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	a, err := app.NewApp(o.configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, a)
}

// forEachSymbol runs fn per symbol, printing the fact count or the error.
// Failures do not stop the loop.
func forEachSymbol(out io.Writer, symbols []string, fn func(symbol string) (int, error)) error {
	failed := 0
	for _, symbol := range symbols {
		n, err := fn(symbol)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s\terror: %v\n", symbol, err)
			continue
		}
		fmt.Fprintf(out, "%s\t%d facts\n", symbol, n)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d symbols failed", failed, len(symbols))
	}
	return nil
}
