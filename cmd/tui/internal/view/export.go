package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/export"
)

type exportState int

const (
	exportStateTimeframe exportState = iota
	exportStateOptions
	exportStateExporting
	exportStateResult
)

const (
	exportFormatCSV    = "csv"
	exportFormatReport = "report"
)

// exportOptions holds the form bindings behind a pointer so they survive
// model copies.
type exportOptions struct {
	format string
	path   string
}

type ExportModel struct {
	CommonModel
	exportService *export.Service

	state           exportState
	err             error
	timeframePicker TimeframePicker

	startDate time.Time
	endDate   time.Time
	allTime   bool

	form    *huh.Form
	options *exportOptions
	spinner spinner.Model
	written string
	preview string
}

func NewExportModel(svc *export.Service, settings Settings) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		CommonModel:     CommonModel{Settings: settings},
		exportService:   svc,
		state:           exportStateTimeframe,
		timeframePicker: NewTimeframePicker(settings.Location),
		options:         &exportOptions{format: exportFormatCSV, path: "./exports/fuel.csv"},
		spinner:         s,
	}
}

func (m ExportModel) Title() string { return "Export Entries" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tfMsg, ok := msg.(TimeframeSelectedMsg); ok {
		m.startDate = tfMsg.Start
		m.endDate = tfMsg.End
		m.allTime = tfMsg.All
		m.form = m.buildOptionsForm()
		m.state = exportStateOptions

		return m, m.form.Init()
	}

	switch m.state {
	case exportStateTimeframe:
		return m.updateTimeframe(msg)
	case exportStateOptions:
		return m.updateOptions(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ExportModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m ExportModel) updateOptions(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = exportStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(m.startDate, m.endDate, *m.options))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.written = result.path
		m.preview = result.preview

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ExportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) buildOptionsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Format").
				Options(
					huh.NewOption("CSV with metrics", exportFormatCSV),
					huh.NewOption("Text report", exportFormatReport),
				).
				Value(&m.options.format),

			huh.NewInput().
				Title("Output File").
				Description("Parent directories are created if missing").
				Placeholder("./exports/fuel.csv").
				Value(&m.options.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case exportStateOptions:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Exporting entries...", m.spinner.View()),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		Render("Export Complete!")

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			faintStyle.Render("Written to "+m.written),
			"",
			m.preview,
		),
	)
}

type exportResultMsg struct {
	path    string
	preview string
	err     error
}

const exportTimeout = 2 * time.Minute

func (m ExportModel) runExportCmd(start, end time.Time, opts exportOptions) tea.Cmd {
	allTime := m.allTime

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		filter := entry.ListFilter{}
		if !allTime {
			filter.StartDate = &start
			filter.EndDate = &end
		}

		metrics, err := m.exportService.Export(ctx, filter)
		if err != nil {
			return exportResultMsg{err: err}
		}

		if err := os.MkdirAll(filepath.Dir(opts.path), 0o755); err != nil {
			return exportResultMsg{err: fmt.Errorf("creating output directory: %w", err)}
		}

		f, err := os.Create(opts.path)
		if err != nil {
			return exportResultMsg{err: fmt.Errorf("creating output file: %w", err)}
		}
		defer f.Close()

		report := m.exportService.Report(metrics)

		if opts.format == exportFormatReport {
			_, err = f.WriteString(report)
		} else {
			err = m.exportService.WriteCSV(f, metrics)
		}

		if err != nil {
			return exportResultMsg{err: fmt.Errorf("writing %s: %w", opts.path, err)}
		}

		return exportResultMsg{path: opts.path, preview: report}
	}
}
