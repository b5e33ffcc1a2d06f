package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

var exportFlags struct {
	start  string
	end    string
	format string
	output string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export entries with metrics as CSV or a text report",
	Long: `Export entries and their derived metrics.

Examples:
  fuelctl export --start 2026-01-01 --output fuel.csv
  fuelctl export --format report`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.start, "start", "", "first day, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportFlags.end, "end", "", "last day, YYYY-MM-DD")
	exportCmd.Flags().StringVarP(&exportFlags.format, "format", "f", "csv", "csv or report")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file, stdout when empty")
}

func runExport(cmd *cobra.Command, _ []string) error {
	if exportFlags.format != "csv" && exportFlags.format != "report" {
		return fmt.Errorf("unknown format %q: want csv or report", exportFlags.format)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var filter entry.ListFilter

	if exportFlags.start != "" {
		t, err := time.ParseInLocation(time.DateOnly, exportFlags.start, a.loc)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}

		filter.StartDate = new(t)
	}

	if exportFlags.end != "" {
		t, err := time.ParseInLocation(time.DateOnly, exportFlags.end, a.loc)
		if err != nil {
			return fmt.Errorf("end: %w", err)
		}

		filter.EndDate = new(t.AddDate(0, 0, 1).Add(-time.Nanosecond))
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	metrics, err := a.export.Export(ctx, filter)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()

	if exportFlags.output != "" {
		f, err := os.Create(exportFlags.output)
		if err != nil {
			return err
		}
		defer f.Close()

		out = f
	}

	if exportFlags.format == "report" {
		_, err = io.WriteString(out, a.export.Report(metrics))
		return err
	}

	return a.export.WriteCSV(out, metrics)
}
