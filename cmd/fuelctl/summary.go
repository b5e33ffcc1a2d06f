package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

var summaryFlags struct {
	period string
	noAck  bool
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the budget and metrics of a quinzena",
	Long: `Show spending against the primary vendor limit, per-entry metrics and
daily spend for a quinzena (the current one by default).

When the current quinzena crossed a threshold that was not shown yet, the
alert is printed once and recorded so it is not shown again.

Examples:
  fuelctl summary
  fuelctl summary --period 2026-10-H1`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringVarP(&summaryFlags.period, "period", "p", "", "quinzena label such as 2026-10-H1")
	summaryCmd.Flags().BoolVar(&summaryFlags.noAck, "no-ack", false, "show a pending alert without recording it")
}

func runSummary(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	now := time.Now()
	p := a.dashboard.Current(now)

	if summaryFlags.period != "" {
		if p, err = a.dashboard.Period(summaryFlags.period); err != nil {
			return err
		}
	}

	summary, err := a.dashboard.SummaryFor(ctx, p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSummary(out, p, summary)

	// Alerts only fire for the quinzena in progress.
	if p.Label != a.dashboard.Current(now).Label {
		return nil
	}

	deliver := a.dashboard.Deliver
	if summaryFlags.noAck {
		deliver = a.dashboard.Pending
	}

	shown, err := deliver(ctx, summary)
	if err != nil || shown == nil {
		return err
	}

	fmt.Fprintf(out, "\n%s %s\n", renderBand(shown.Band), shown.Message)

	return nil
}

func printSummary(out io.Writer, p period.Period, s analytics.Summary) {
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Quinzena %s  (%s)", p.Label, p.DisplayName())))
	fmt.Fprintln(out)

	if s.Enabled() {
		fmt.Fprintf(out, "%s  %s  %.1f%%\n", progressBar(s.PercentUsed, 30), renderBand(s.Band), s.PercentUsed)
		fmt.Fprintf(out, "%s: %s of %s, %s remaining\n",
			vendorName(entry.VendorPrimary, cfg.Budget.VendorName), money(s.VendorSpend), money(s.Limit), money(s.Remaining))
	} else {
		fmt.Fprintln(out, mutedStyle.Render("No budget limit configured"))
	}

	fmt.Fprintf(out, "Total spent: %s   Volume: %s   Avg price: %s\n",
		money(s.TotalSpend), liters(s.TotalVolume), optional(s.AveragePricePerUnit, "R$ %.3f/L"))

	if len(s.RecentEntries) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("\nNo entries in this quinzena"))
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, entriesTable(s.RecentEntries, cfg.Budget.VendorName))

	fmt.Fprintln(out, headerStyle.Render("Daily spend"))

	for _, d := range s.DailySpend {
		if d.Amount == 0 {
			continue
		}

		fmt.Fprintf(out, "  %s  %s\n", d.Day.Format("02/01"), money(d.Amount))
	}
}
