package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFormatSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStateResult
)

type ImportModel struct {
	CommonModel
	entries       *entry.Service
	importService *importer.Service

	state          importState
	filePicker     filepicker.Model
	spinner        spinner.Model
	selectedFormat importer.Format
	formatOptions  []importer.Format
	formatCursor   int

	newParams    []entry.CreateParams
	conflicts    []entry.Conflict
	conflictList list.Model
	selected     map[int]bool

	status string
	err    error
}

func NewImportModel(entries *entry.Service, impSvc *importer.Service, settings Settings) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return ImportModel{
		CommonModel:   CommonModel{Settings: settings},
		entries:       entries,
		importService: impSvc,
		filePicker:    fp,
		spinner:       sp,
		formatOptions: []importer.Format{importer.FormatSpreadsheet},
		selected:      make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Entries" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateConflicts {
		return "Space: toggle | a: all | n: none | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateFormatSelect:
			return m.updateFormatSelect(msg)
		case importStateConflicts:
			return m.updateConflicts(msg)
		case importStateImporting:
			return m, nil
		}

	case spinner.TickMsg:
		if m.state != importStateImporting {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case importResultMsg:
		return m.handleImportResult(msg)

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d entries.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, tea.Batch(m.spinner.Tick, m.importCmd(path))
	}

	return m, cmd
}

func (m ImportModel) handleImportResult(msg importResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = importStateResult
		m.err = msg.err
		m.status = fmt.Sprintf("Error: %v", msg.err)

		return m, nil
	}

	if len(msg.result.Conflicts) == 0 {
		m.state = importStateResult
		m.status = fmt.Sprintf("Imported %d entries.", len(msg.result.Imported))

		return m, nil
	}

	m.newParams = msg.result.New
	m.conflicts = msg.result.Conflicts
	m.selected = make(map[int]bool)
	m.state = importStateConflicts

	items := make([]list.Item, len(m.conflicts))
	for i, c := range m.conflicts {
		items[i] = conflictItem{conflict: c, index: i}
	}

	delegate := conflictDelegate{selected: m.selected, loc: m.location()}
	m.conflictList = list.New(items, delegate, 80, 20)
	m.conflictList.Title = fmt.Sprintf("%d possible duplicates, %d new", len(m.conflicts), len(m.newParams))
	m.conflictList.SetShowStatusBar(false)
	m.conflictList.SetFilteringEnabled(false)
	m.conflictList.SetShowHelp(false)

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateFormatSelect
		return m, nil
	case importStateResult:
		m.state = importStateFormatSelect
		m.err = nil
		m.status = ""

		return m, nil
	case importStateConflicts:
		m.state = importStateFormatSelect
		m.conflicts = nil
		m.newParams = nil
		m.selected = make(map[int]bool)

		return m, nil
	case importStateImporting:
		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateFormatSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.formatCursor > 0 {
			m.formatCursor--
		}
	case tea.KeyDown:
		if m.formatCursor < len(m.formatOptions)-1 {
			m.formatCursor++
		}
	case tea.KeyEnter:
		m.selectedFormat = m.formatOptions[m.formatCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.conflicts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.conflicts {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		m.state = importStateImporting
		m.status = "Saving entries..."

		return m, tea.Batch(m.spinner.Tick, m.confirmCmd())
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFormatSelect:
		return m.viewFormatSelect()
	case importStateFilePick:
		return m.viewFilePick()
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.spinner.View() + " " + m.status)
	case importStateConflicts:
		hint := faintStyle.Render("Checked rows are imported anyway. Unchecked duplicates are skipped.")
		return lipgloss.NewStyle().Padding(1).Render(m.conflictList.View() + "\n" + hint)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewFormatSelect() string {
	s := "Select file format:\n\n"

	for i, format := range m.formatOptions {
		cursor := " "
		if i == m.formatCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, string(format))
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewFilePick() string {
	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select file to import (%s):\n\n%s", m.selectedFormat, m.filePicker.View()),
	)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(successStyle.Render(m.status) + "\n\n(Esc to go back)")
}

// Messages

type importResultMsg struct {
	result *entry.ImportResult
	err    error
}

type confirmResultMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	format := m.selectedFormat

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		params, err := m.importService.Import(ctx, format, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		result, err := m.entries.ImportBatch(ctx, params)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	newParams := m.newParams
	conflicts := m.conflicts
	selected := m.selected

	return func() tea.Msg {
		var allParams []entry.CreateParams
		allParams = append(allParams, newParams...)

		for i, c := range conflicts {
			if !selected[i] {
				continue
			}

			allParams = append(allParams, c.Incoming)
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		created, err := m.entries.CreateBatch(ctx, allParams)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(created)}
	}
}

// Conflict list item

type conflictItem struct {
	conflict entry.Conflict
	index    int
}

func (i conflictItem) Title() string       { return "" }
func (i conflictItem) Description() string { return "" }
func (i conflictItem) FilterValue() string { return "" }

// Conflict list delegate

type conflictDelegate struct {
	selected map[int]bool
	loc      *time.Location
}

func (d conflictDelegate) Height() int                             { return 3 }
func (d conflictDelegate) Spacing() int                            { return 0 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if d.selected[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.conflict.Incoming
	existing := item.conflict.Existing

	line1 := fmt.Sprintf("%s%s %s  %s  %s  %d km",
		cursor, checkbox,
		FormatDate(incoming.Timestamp.In(d.loc)),
		FormatAmount(incoming.Amount),
		FormatVolume(incoming.Volume),
		incoming.Odometer,
	)

	line2 := fmt.Sprintf("      Existing: %s  %s  %s  %d km",
		FormatDate(existing.Timestamp.In(d.loc)),
		FormatAmount(existing.Amount),
		FormatVolume(existing.Volume),
		existing.Odometer,
	)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
