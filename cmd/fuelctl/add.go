package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

var addFlags struct {
	vendor   string
	amount   string
	volume   string
	odometer int64
	note     string
	when     string
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a fill-up",
	Long: `Log a fuel purchase. Amount and volume accept either decimal separator.
Without --odometer the last known reading is reused.

Examples:
  fuelctl add --vendor primary --amount 150,00 --volume 30,5 --odometer 12345
  fuelctl add -V other -a 80 -l 16.2 --when "2026-10-03 18:30"`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addFlags.vendor, "vendor", "V", string(entry.VendorPrimary), "primary or other")
	addCmd.Flags().StringVarP(&addFlags.amount, "amount", "a", "", "amount paid")
	addCmd.Flags().StringVarP(&addFlags.volume, "volume", "l", "", "litres")
	addCmd.Flags().Int64VarP(&addFlags.odometer, "odometer", "o", -1, "odometer reading in km")
	addCmd.Flags().StringVar(&addFlags.note, "note", "", "free text note")
	addCmd.Flags().StringVar(&addFlags.when, "when", "", "purchase time as YYYY-MM-DD HH:MM, defaults to now")

	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("volume")
}

func runAdd(cmd *cobra.Command, _ []string) error {
	vendor, err := entry.ParseVendor(addFlags.vendor)
	if err != nil {
		return err
	}

	amount, err := entry.ParseAmount(addFlags.amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	volume, err := entry.ParseVolume(addFlags.volume)
	if err != nil {
		return fmt.Errorf("volume: %w", err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	params := entry.CreateParams{
		Vendor:   vendor,
		Amount:   amount,
		Volume:   volume,
		Odometer: addFlags.odometer,
		Note:     addFlags.note,
	}

	if addFlags.when != "" {
		ts, err := time.ParseInLocation("2006-01-02 15:04", addFlags.when, a.loc)
		if err != nil {
			return fmt.Errorf("when: %w", err)
		}

		params.Timestamp = ts
	}

	if params.Odometer < 0 {
		last, ok, err := a.entries.LastOdometer(ctx)
		if err != nil {
			return err
		}

		if !ok {
			return errors.New("--odometer is required for the first entry")
		}

		params.Odometer = last
	}

	e, err := a.entries.Create(ctx, params)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "logged %s %s at %d km (%s)\n",
		money(e.Amount), liters(e.Volume), e.Odometer, e.ID)

	summary, err := a.dashboard.Summary(ctx, time.Now())
	if err != nil {
		return err
	}

	delivered, err := a.dashboard.Deliver(ctx, summary)
	if err != nil || delivered == nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", renderBand(delivered.Band), delivered.Message)

	return nil
}
