package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emretezel/pyvalue-sub000/internal/app"
	"github.com/emretezel/pyvalue-sub000/internal/models"
	"github.com/emretezel/pyvalue-sub000/internal/screening"
	"github.com/emretezel/pyvalue-sub000/internal/services/screen"
)

func newScreenCmd(opts *rootOptions) *cobra.Command {
	var (
		verbose bool
		csvPath string
	)
	cmd := &cobra.Command{
		Use:   "screen DEFINITION.yml [SYMBOL...]",
		Short: "Evaluate a screen definition (all stored symbols when none given)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := screening.LoadDefinition(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				results, err := a.ScreenService.Run(ctx, def, args[1:])
				if err != nil {
					return err
				}
				printResults(cmd.OutOrStdout(), def, results, verbose)
				if csvPath != "" {
					return writeCSV(csvPath, def, results)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every criterion outcome")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write passing symbols and their left-hand values to a CSV file")
	return cmd
}

func printResults(out io.Writer, def *screening.Definition, results []models.ScreenResult, verbose bool) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, res := range results {
		status := "FAIL"
		if res.Passed {
			status = "PASS"
		}
		fmt.Fprintf(tw, "%s\t%s\n", status, res.Symbol)
		if !verbose {
			continue
		}
		for i, o := range res.Outcomes {
			op := ""
			if i < len(def.Criteria) {
				op = def.Criteria[i].Operator
			}
			fmt.Fprintf(tw, "\t  %s\t%s %s %s\t%v\n", o.Name, formatValue(o.Left), op, formatValue(o.Right), o.Passed)
		}
	}
	tw.Flush()

	passing := screen.Passing(results)
	fmt.Fprintf(out, "%d of %d passed\n", len(passing), len(results))
}

func formatValue(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", *v)
}

// writeCSV writes one column per passing symbol and one row per criterion
// holding the left-hand value.
func writeCSV(path string, def *screening.Definition, results []models.ScreenResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	var passed []models.ScreenResult
	for _, res := range results {
		if res.Passed {
			passed = append(passed, res)
		}
	}

	w := csv.NewWriter(f)
	header := []string{"Criterion"}
	for _, res := range passed {
		header = append(header, res.Symbol)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, c := range def.Criteria {
		row := []string{c.Name}
		for _, res := range passed {
			value := ""
			if i < len(res.Outcomes) && res.Outcomes[i].Left != nil {
				value = fmt.Sprintf("%.4f", *res.Outcomes[i].Left)
			}
			row = append(row, value)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
