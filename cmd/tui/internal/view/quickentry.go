package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	"github.com/MrJamesThe3rd/fuelctl/internal/dashboard"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

// entryFields holds the form bindings. It lives behind a pointer so the
// bindings survive the model being copied on every Update.
type entryFields struct {
	vendor   entry.Vendor
	amount   string
	volume   string
	odometer string
	note     string
}

type QuickEntryModel struct {
	CommonModel
	entries   *entry.Service
	dashboard *dashboard.Service

	fields  *entryFields
	form    *huh.Form
	saving  bool
	status  string
	alert   *alert.Alert
	err     error
	lastOdo string
}

func NewQuickEntryModel(entries *entry.Service, dash *dashboard.Service, settings Settings) QuickEntryModel {
	return QuickEntryModel{
		CommonModel: CommonModel{Settings: settings},
		entries:     entries,
		dashboard:   dash,
		fields:      &entryFields{vendor: entry.VendorPrimary},
	}
}

func (m QuickEntryModel) Title() string { return "Quick Entry" }

func (m QuickEntryModel) ShortHelp() string {
	return "Enter: next field | Esc: back"
}

func (m QuickEntryModel) Init() tea.Cmd {
	return m.loadOdometerCmd()
}

func (m QuickEntryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case odometerLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
		}

		if msg.ok {
			m.lastOdo = strconv.FormatInt(msg.odometer, 10)
		}

		return m.resetForm()

	case entrySavedMsg:
		m.saving = false
		m.alert = msg.alert
		m.err = msg.err

		if msg.entry == nil {
			// Nothing was stored; let the user fix the same values.
			m.status = ""
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		m.status = fmt.Sprintf("Saved %s, %s at %d km",
			FormatAmount(msg.entry.Amount), FormatVolume(msg.entry.Volume), msg.entry.Odometer)
		m.lastOdo = strconv.FormatInt(msg.entry.Odometer, 10)

		return m.resetForm()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.form == nil || m.saving {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.saving = true

	return m, m.saveCmd()
}

// resetForm starts a new entry, keeping the vendor and prefilling the
// odometer with the last known reading.
func (m QuickEntryModel) resetForm() (tea.Model, tea.Cmd) {
	m.fields = &entryFields{vendor: m.fields.vendor, odometer: m.lastOdo}
	m.form = m.buildForm()

	return m, m.form.Init()
}

func (m QuickEntryModel) buildForm() *huh.Form {
	return huh.NewForm(
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
				Placeholder("150,00").
				Value(&m.fields.amount).
				Validate(positive(entry.ParseAmount)),

			huh.NewInput().
				Title("Volume (L)").
				Placeholder("30,5").
				Value(&m.fields.volume).
				Validate(positive(entry.ParseVolume)),

			huh.NewInput().
				Title("Odometer (km)").
				Value(&m.fields.odometer).
				Validate(func(s string) error {
					n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
					if err != nil || n < 0 {
						return errors.New("enter the odometer reading in km")
					}

					return nil
				}),

			huh.NewInput().
				Title("Note").
				Value(&m.fields.note),
		),
	).WithWidth(45).WithShowHelp(false)
}

func positive(parse func(string) (int64, error)) func(string) error {
	return func(s string) error {
		n, err := parse(s)
		if err != nil || n <= 0 {
			return errors.New("enter a positive number")
		}

		return nil
	}
}

func (m QuickEntryModel) View() string {
	sections := []string{}

	if banner := alertBanner(m.alert); banner != "" {
		sections = append(sections, banner)
	}

	if m.status != "" {
		sections = append(sections, successStyle.Render(m.status))
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	switch {
	case m.saving:
		sections = append(sections, "Saving...")
	case m.form != nil:
		sections = append(sections, m.form.View())
	default:
		sections = append(sections, "Loading...")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// Messages

type odometerLoadedMsg struct {
	odometer int64
	ok       bool
	err      error
}

type entrySavedMsg struct {
	entry *entry.Entry
	alert *alert.Alert
	err   error
}

func (m QuickEntryModel) loadOdometerCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		odometer, ok, err := m.entries.LastOdometer(ctx)

		return odometerLoadedMsg{odometer: odometer, ok: ok, err: err}
	}
}

// saveCmd stores the entry and delivers the budget alert it may trigger.
func (m QuickEntryModel) saveCmd() tea.Cmd {
	fields := *m.fields

	return func() tea.Msg {
		params, err := fields.params()
		if err != nil {
			return entrySavedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.entries.Create(ctx, params)
		if err != nil {
			return entrySavedMsg{err: err}
		}

		summary, err := m.dashboard.Summary(ctx, time.Now())
		if err != nil {
			return entrySavedMsg{entry: e, err: err}
		}

		delivered, err := m.dashboard.Deliver(ctx, summary)

		return entrySavedMsg{entry: e, alert: delivered, err: err}
	}
}

func (f entryFields) params() (entry.CreateParams, error) {
	amount, err := entry.ParseAmount(f.amount)
	if err != nil {
		return entry.CreateParams{}, err
	}

	volume, err := entry.ParseVolume(f.volume)
	if err != nil {
		return entry.CreateParams{}, err
	}

	odometer, err := strconv.ParseInt(strings.TrimSpace(f.odometer), 10, 64)
	if err != nil {
		return entry.CreateParams{}, fmt.Errorf("odometer: %w", err)
	}

	return entry.CreateParams{
		Vendor:   f.vendor,
		Amount:   amount,
		Volume:   volume,
		Odometer: odometer,
		Note:     strings.TrimSpace(f.note),
	}, nil
}
