package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/fuelctl/cmd/tui/internal/view"
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
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).PaddingLeft(1)
	helpStyle  = lipgloss.NewStyle().Faint(true).PaddingLeft(1)
)

type model struct {
	entryService     *entry.Service
	importService    *importer.Service
	exportService    *export.Service
	dashboardService *dashboard.Service
	settings         view.Settings

	width, height int

	currentView View

	dashboardView  view.DashboardModel
	quickEntryView view.QuickEntryModel
	listView       view.ListModel
	importView     view.ImportModel
	exportView     view.ExportModel
}

type View int

const (
	ViewMenu       View = 0
	ViewDashboard  View = 1
	ViewQuickEntry View = 2
	ViewList       View = 3
	ViewImport     View = 4
	ViewExport     View = 5
)

// app holds what main has to release once the program exits.
type app struct {
	closers []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			slog.Error("failed to close resource", "error", err)
		}
	}
}

func initialModel(a *app) model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load period timezone", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	a.closers = append(a.closers, db)

	suppressions, err := alertStore.OpenLocal(cfg.Local.StatePath)
	if err != nil {
		slog.Error("failed to open local state", "path", cfg.Local.StatePath, "error", err)
		os.Exit(1)
	}

	a.closers = append(a.closers, suppressions)

	// The screen belongs to bubbletea, so logs go next to the state file.
	if logFile, err := tea.LogToFile(filepath.Join(filepath.Dir(cfg.Local.StatePath), "tui.log"), "fuelctl"); err == nil {
		a.closers = append(a.closers, logFile)
	}

	entrySvc := entry.NewService(entryStore.New(db))
	matchSvc := matching.NewService(matchingStore.New(db), cfg.Budget.VendorName)
	impSvc := importer.NewService(matchSvc, map[importer.Format]importer.Importer{
		importer.FormatSpreadsheet: fuelcsv.NewParser(loc),
	})
	expSvc := export.NewService(entrySvc, cfg.Budget.VendorName)
	dashSvc := dashboard.NewService(entrySvc, alert.NewGate(suppressions, slog.Default()), dashboard.Settings{
		Limit:       cfg.Budget.VendorLimit.Cents(),
		Location:    loc,
		RecentLimit: cfg.Dashboard.RecentLimit,
	}, slog.Default())

	settings := view.Settings{PrimaryName: cfg.Budget.VendorName, Location: loc}

	return model{
		entryService:     entrySvc,
		importService:    impSvc,
		exportService:    expSvc,
		dashboardService: dashSvc,
		settings:         settings,
		currentView:      ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewQuickEntry:
		var newModel tea.Model
		newModel, cmd = m.quickEntryView.Update(msg)
		m.quickEntryView = newModel.(view.QuickEntryModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	size := func() tea.Msg { return tea.WindowSizeMsg{Width: m.width, Height: m.height} }

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewDashboard
		m.dashboardView = view.NewDashboardModel(m.dashboardService, m.settings)

		return m, tea.Batch(m.dashboardView.Init(), size)
	case "2":
		m.currentView = ViewQuickEntry
		m.quickEntryView = view.NewQuickEntryModel(m.entryService, m.dashboardService, m.settings)

		return m, tea.Batch(m.quickEntryView.Init(), size)
	case "3":
		m.currentView = ViewList
		m.listView = view.NewListModel(m.entryService, m.exportService, m.settings)

		return m, tea.Batch(m.listView.Init(), size)
	case "4":
		m.currentView = ViewImport
		m.importView = view.NewImportModel(m.entryService, m.importService, m.settings)

		return m, tea.Batch(m.importView.Init(), size)
	case "5":
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(m.exportService, m.settings)

		return m, tea.Batch(m.exportView.Init(), size)
	}

	return m, nil
}

func (m model) active() view.View {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboardView
	case ViewQuickEntry:
		return m.quickEntryView
	case ViewList:
		return m.listView
	case ViewImport:
		return m.importView
	case ViewExport:
		return m.exportView
	}

	return nil
}

func (m model) View() string {
	v := m.active()
	if v == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			"Fuel Control\n\n" +
				"1. Dashboard\n" +
				"2. Quick Entry\n" +
				"3. Entries\n" +
				"4. Import Entries\n" +
				"5. Export Entries\n\n" +
				"q. Quit",
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Fuel Control › "+v.Title()),
		v.View(),
		helpStyle.Render(v.ShortHelp()),
	)
}

func main() {
	a := &app{}

	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())
	_, err := p.Run()

	a.Close()

	if err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
