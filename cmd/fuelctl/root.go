package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	alertStore "github.com/MrJamesThe3rd/fuelctl/internal/alert/store"
	"github.com/MrJamesThe3rd/fuelctl/internal/config"
	"github.com/MrJamesThe3rd/fuelctl/internal/dashboard"
	"github.com/MrJamesThe3rd/fuelctl/internal/database"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	entryStore "github.com/MrJamesThe3rd/fuelctl/internal/entry/store"
	"github.com/MrJamesThe3rd/fuelctl/internal/export"
	"github.com/MrJamesThe3rd/fuelctl/internal/importer"
	"github.com/MrJamesThe3rd/fuelctl/internal/importer/fuelcsv"
	"github.com/MrJamesThe3rd/fuelctl/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/fuelctl/internal/matching/store"
)

var (
	envFile string
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fuelctl",
	Short: "Fuel log with a per-quinzena vendor budget",
	Long: `fuelctl records fuel purchases and tracks spending at the primary vendor
against a limit that resets on the 1st and the 16th of every month.

Configuration is read from the environment (and from a .env file when
present). See BUDGET_VENDOR_LIMIT, BUDGET_VENDOR_NAME and PERIOD_TIMEZONE.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		loaded, err := config.Load()
		if err != nil {
			return err
		}

		cfg = loaded

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// app wires the services a command needs on top of one database handle.
type app struct {
	db  *sql.DB
	loc *time.Location

	entries   *entry.Service
	matching  *matching.Service
	importer  *importer.Service
	export    *export.Service
	dashboard *dashboard.Service
}

func openApp() (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	var suppressions alert.Store = alertStore.New(db)
	if cfg.Alert.Store == "memory" {
		suppressions = alert.NewMemoryStore()
	}

	a := &app{db: db, loc: loc}

	a.entries = entry.NewService(entryStore.New(db))
	a.matching = matching.NewService(matchingStore.New(db), cfg.Budget.VendorName)
	a.importer = importer.NewService(a.matching, map[importer.Format]importer.Importer{
		importer.FormatSpreadsheet: fuelcsv.NewParser(loc),
	})
	a.export = export.NewService(a.entries, cfg.Budget.VendorName)
	a.dashboard = dashboard.NewService(a.entries, alert.NewGate(suppressions, slog.Default()), dashboard.Settings{
		Limit:       cfg.Budget.VendorLimit.Cents(),
		Location:    loc,
		RecentLimit: cfg.Dashboard.RecentLimit,
	}, slog.Default())

	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}
