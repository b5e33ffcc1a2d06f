package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	alertStore "github.com/MrJamesThe3rd/fuelctl/internal/alert/store"
	"github.com/MrJamesThe3rd/fuelctl/internal/auth"
	"github.com/MrJamesThe3rd/fuelctl/internal/config"
	"github.com/MrJamesThe3rd/fuelctl/internal/dashboard"
	"github.com/MrJamesThe3rd/fuelctl/internal/database"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	entryStore "github.com/MrJamesThe3rd/fuelctl/internal/entry/store"
	"github.com/MrJamesThe3rd/fuelctl/internal/export"
	fuelHttp "github.com/MrJamesThe3rd/fuelctl/internal/http"
	dashboardHandler "github.com/MrJamesThe3rd/fuelctl/internal/http/dashboard"
	entryHandler "github.com/MrJamesThe3rd/fuelctl/internal/http/entry"
	exportHandler "github.com/MrJamesThe3rd/fuelctl/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/fuelctl/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/fuelctl/internal/http/matching"
	"github.com/MrJamesThe3rd/fuelctl/internal/importer"
	"github.com/MrJamesThe3rd/fuelctl/internal/importer/fuelcsv"
	"github.com/MrJamesThe3rd/fuelctl/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/fuelctl/internal/matching/store"
	"github.com/MrJamesThe3rd/fuelctl/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load timezone", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	metrics := telemetry.NewMetrics()

	var suppressions alert.Store = alertStore.New(db)
	if cfg.Alert.Store == "memory" {
		suppressions = alert.NewMemoryStore()
	}

	gate := alert.NewGate(suppressions, slog.Default())
	gate.OnFire = metrics.AlertRecorded

	var (
		entryService    = entry.NewService(entryStore.New(db))
		matchingService = matching.NewService(matchingStore.New(db), cfg.Budget.VendorName)
		importService   = importer.NewService(matchingService, map[importer.Format]importer.Importer{
			importer.FormatSpreadsheet: fuelcsv.NewParser(loc),
		})
		exportService    = export.NewService(entryService, cfg.Budget.VendorName)
		dashboardService = dashboard.NewService(entryService, gate, dashboard.Settings{
			Limit:       cfg.Budget.VendorLimit.Cents(),
			Location:    loc,
			RecentLimit: cfg.Dashboard.RecentLimit,
			Observer:    metrics,
		}, slog.Default())
	)

	var (
		entryH     = entryHandler.NewHandler(entryService, loc)
		dashboardH = dashboardHandler.NewHandler(dashboardService)
		importH    = importHandler.NewHandler(importService, entryService, metrics)
		matchingH  = matchingHandler.NewHandler(matchingService)
		exportH    = exportHandler.NewHandler(exportService, loc)
	)

	opts := fuelHttp.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        metrics,
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if tokens.Enabled() {
		opts.Verifier = tokens
	} else {
		slog.Warn("AUTH_JWT_SECRET not set, API is unauthenticated")
	}

	router := fuelHttp.New(entryH, dashboardH, importH, matchingH, exportH, opts)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("starting server", "addr", srv.Addr, "budget_limit", cfg.Budget.VendorLimit.Cents(), "timezone", loc.String())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
