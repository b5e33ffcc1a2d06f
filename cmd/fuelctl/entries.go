package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

var entriesFlags struct {
	limit  int
	period string
}

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List entries with their metrics",
	Long: `List fuel entries newest first, with price per litre, distance since the
previous fill-up, km/L and cost per km. Entries whose odometer does not
advance are flagged with "!".

Examples:
  fuelctl entries
  fuelctl entries --limit 50
  fuelctl entries --period 2026-09-H2`,
	Args: cobra.NoArgs,
	RunE: runEntries,
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := a.entries.Delete(ctx, id); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "deleted", id)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(entriesCmd, deleteCmd)

	entriesCmd.Flags().IntVarP(&entriesFlags.limit, "limit", "n", 20, "number of entries to show, 0 for all")
	entriesCmd.Flags().StringVarP(&entriesFlags.period, "period", "p", "", "only entries of this quinzena")
}

func runEntries(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	var filter entry.ListFilter

	if entriesFlags.period != "" {
		p, err := a.dashboard.Period(entriesFlags.period)
		if err != nil {
			return err
		}

		filter.StartDate = new(p.Start)
		filter.EndDate = new(p.LastInstant())
	}

	// Metrics need the whole window in odometer order, so the limit is
	// applied after computing them.
	metrics, err := a.export.Export(ctx, filter)
	if err != nil {
		return err
	}

	metrics = analytics.NewestFirst(metrics)
	if entriesFlags.limit > 0 && len(metrics) > entriesFlags.limit {
		metrics = metrics[:entriesFlags.limit]
	}

	if len(metrics) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no entries")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), entriesTable(metrics, cfg.Budget.VendorName))

	return nil
}
