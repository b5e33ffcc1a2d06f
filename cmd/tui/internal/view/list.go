package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/export"
	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
	listStateConfirmDelete
)

var periodFilterLabels = []string{"All Time", "This Quinzena", "Last Quinzena"}

type ListModel struct {
	CommonModel
	entries *entry.Service
	export  *export.Service

	state   listState
	table   table.Model
	metrics []analytics.EntryMetrics
	form    *huh.Form
	fields  *entryFields

	periodFilterIdx int

	filter  entry.ListFilter
	loading bool
	err     error
	status  string
}

func NewListModel(entries *entry.Service, exportSvc *export.Service, settings Settings) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Vendor", Width: 12},
		{Title: "Amount", Width: 11},
		{Title: "Volume", Width: 10},
		{Title: "Odometer", Width: 9},
		{Title: "R$/L", Width: 7},
		{Title: "km", Width: 6},
		{Title: "km/L", Width: 6},
		{Title: "R$/km", Width: 6},
		{Title: "", Width: 2},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		CommonModel: CommonModel{Settings: settings},
		entries:     entries,
		export:      exportSvc,
		table:       t,
		loading:     true,
	}
}

func (m ListModel) Title() string { return "Entries" }

func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateEdit:
		return "Navigate form | Esc: cancel"
	case listStateConfirmDelete:
		return "y: delete | any other key: cancel"
	}

	return "Esc: back | e: edit | x: delete | p: period filter | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.metrics = msg.metrics
		m.refreshTable()

		return m, nil

	case listSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(5, msg.Height-10))

		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	case listStateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			return m.enterEditMode()
		case "x":
			if _, ok := m.selected(); ok {
				m.state = listStateConfirmDelete
			}

			return m, nil
		case "p":
			m.periodFilterIdx = (m.periodFilterIdx + 1) % len(periodFilterLabels)
			m.applyFilter(time.Now())
			m.loading = true

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) selected() (analytics.EntryMetrics, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.metrics) {
		return analytics.EntryMetrics{}, false
	}

	return m.metrics[idx], true
}

func (m ListModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.state = listStateBrowse

	if keyMsg.String() != "y" {
		return m, nil
	}

	return m, m.deleteCmd()
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	sel, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.fields = &entryFields{
		vendor:   sel.Vendor,
		amount:   strconv.FormatFloat(sel.Money(), 'f', 2, 64),
		volume:   strconv.FormatFloat(sel.Liters(), 'f', 3, 64),
		odometer: strconv.FormatInt(sel.Odometer, 10),
		note:     sel.Note,
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[entry.Vendor]().
				Title("Vendor").
				Options(
					huh.NewOption(VendorLabel(entry.VendorPrimary, m.Settings.PrimaryName), entry.VendorPrimary),
					huh.NewOption("Other", entry.VendorOther),
				).
				Value(&m.fields.vendor),

			huh.NewInput().
				Title("Amount (R$)").
				Value(&m.fields.amount).
				Validate(positive(entry.ParseAmount)),

			huh.NewInput().
				Title("Volume (L)").
				Value(&m.fields.volume).
				Validate(positive(entry.ParseVolume)),

			huh.NewInput().
				Title("Odometer (km)").
				Value(&m.fields.odometer).
				Validate(func(s string) error {
					if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
						return errors.New("enter the odometer reading in km")
					}

					return nil
				}),

			huh.NewInput().
				Title("Note").
				Value(&m.fields.note),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()

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

	return m, m.saveCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading entries...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("Filter: [p] Period: %s   %s",
		activeStyle(periodFilterLabels[m.periodFilterIdx]),
		faintStyle.Render("! = odometer did not advance"),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	switch m.state {
	case listStateEdit:
		if m.form != nil {
			panel := lipgloss.NewStyle().
				Padding(1, 2).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Width(48).
				Render("Edit Entry\n\n" + m.form.View())

			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
		}
	case listStateConfirmDelete:
		if sel, ok := m.selected(); ok {
			content += "\n" + errorStyle.Render(fmt.Sprintf("Delete %s %s at %d km? (y/N)",
				sel.Timestamp.In(m.location()).Format("2006-01-02 15:04"), FormatAmount(sel.Amount), sel.Odometer))
		}
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *ListModel) applyFilter(now time.Time) {
	current := period.Resolve(now.In(m.location()))

	switch m.periodFilterIdx {
	case 1:
		m.filter.StartDate = new(current.Start)
		m.filter.EndDate = new(current.LastInstant())
	case 2:
		prev := current.Previous()
		m.filter.StartDate = new(prev.Start)
		m.filter.EndDate = new(prev.LastInstant())
	default:
		m.filter.StartDate = nil
		m.filter.EndDate = nil
	}
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.metrics))

	for _, em := range m.metrics {
		distance := "-"
		if em.DistanceSinceLast != nil {
			distance = strconv.FormatInt(*em.DistanceSinceLast, 10)
		}

		flag := ""
		if em.Anomalous {
			flag = "!"
		}

		rows = append(rows, table.Row{
			em.Timestamp.In(m.location()).Format("2006-01-02 15:04"),
			VendorLabel(em.Vendor, m.Settings.PrimaryName),
			FormatAmount(em.Amount),
			FormatVolume(em.Volume),
			strconv.FormatInt(em.Odometer, 10),
			FormatOptional(em.PricePerUnit, "%.3f"),
			distance,
			FormatOptional(em.Efficiency, "%.2f"),
			FormatOptional(em.CostPerDistance, "%.3f"),
			flag,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	metrics []analytics.EntryMetrics
	err     error
}

func (m ListModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		metrics, err := m.export.Export(ctx, filter)
		if err != nil {
			return loadListMsg{err: err}
		}

		return loadListMsg{metrics: analytics.NewestFirst(metrics)}
	}
}

type listSaveMsg struct {
	status string
	err    error
}

func (m ListModel) saveCmd() tea.Cmd {
	sel, ok := m.selected()
	if !ok {
		return nil
	}

	fields := *m.fields
	updated := *sel.Entry

	return func() tea.Msg {
		params, err := fields.params()
		if err != nil {
			return listSaveMsg{err: err}
		}

		updated.Vendor = params.Vendor
		updated.Amount = params.Amount
		updated.Volume = params.Volume
		updated.Odometer = params.Odometer
		updated.Note = params.Note

		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.entries.Update(ctx, &updated); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: "Entry updated"}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	sel, ok := m.selected()
	if !ok {
		return nil
	}

	id := sel.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.entries.Delete(ctx, id); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: "Entry deleted"}
	}
}
