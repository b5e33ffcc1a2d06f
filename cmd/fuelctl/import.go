package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/fuelctl/internal/importer"
)

var importFlags struct {
	format string
	force  bool
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import entries from a spreadsheet export",
	Long: `Import fuel entries from a CSV file. Both the Portuguese layout
(Data;Valor;Litros;KM) and the English one (Date,Amount,Volume,Odometer) are
recognised, in UTF-8 or Latin-1.

Rows matching an existing entry (same day, amount, volume and odometer)
stop the import and are listed. Re-run with --force to import the new rows
only.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFlags.format, "format", "f", string(importer.FormatSpreadsheet), "file format")
	importCmd.Flags().BoolVar(&importFlags.force, "force", false, "skip rows that already exist and import the rest")
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	params, err := a.importer.Import(ctx, importer.Format(importFlags.format), f)
	if err != nil {
		return err
	}

	result, err := a.entries.ImportBatch(ctx, params)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(result.Conflicts) == 0 {
		fmt.Fprintf(out, "imported %d entries\n", len(result.Imported))
		return nil
	}

	for _, c := range result.Conflicts {
		fmt.Fprintf(out, "%s %s %s %d km (%s)\n",
			mutedStyle.Render("exists"),
			c.Incoming.Timestamp.Format("2006-01-02"), money(c.Incoming.Amount), c.Incoming.Odometer, c.Existing.ID)
	}

	if !importFlags.force {
		return fmt.Errorf("%d of %d rows already exist, nothing imported (use --force to import the other %d)",
			len(result.Conflicts), len(params), len(result.New))
	}

	created, err := a.entries.CreateBatch(ctx, result.New)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "imported %d entries, skipped %d\n", len(created), len(result.Conflicts))

	return nil
}
