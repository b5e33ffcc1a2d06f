package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/dashboard"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

const budgetBarWidth = 40

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

type DashboardModel struct {
	CommonModel
	svc *dashboard.Service

	period  period.Period
	summary *analytics.Summary
	alert   *alert.Alert
	loading bool
	err     error
}

func NewDashboardModel(svc *dashboard.Service, settings Settings) DashboardModel {
	m := DashboardModel{
		CommonModel: CommonModel{Settings: settings},
		svc:         svc,
		loading:     true,
	}
	m.period = svc.Current(time.Now())

	return m
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	return "Esc: back | ←/→: quinzena | r: refresh"
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.summary = &msg.summary
			m.alert = msg.alert
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "left", "h":
			m.period = m.period.Previous()
		case "right", "l":
			m.period = m.period.Next()
		case "r":
		default:
			return m, nil
		}

		m.loading = true
		m.alert = nil

		return m, m.loadCmd()
	}

	return m, nil
}

func (m DashboardModel) View() string {
	style := lipgloss.NewStyle().Padding(1, 2)

	header := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("Quinzena %s  %s", m.period.Label, faintStyle.Render(m.period.DisplayName())),
	)

	if m.loading {
		return style.Render(header + "\n\nLoading...")
	}

	if m.err != nil {
		return style.Render(header + "\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	s := m.summary
	sections := []string{}

	if banner := alertBanner(m.alert); banner != "" {
		sections = append(sections, banner)
	}

	sections = append(sections, header, "", m.viewBudget(s), "", m.viewDaily(s), "", m.viewRecent(s))

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m DashboardModel) viewBudget(s *analytics.Summary) string {
	totals := fmt.Sprintf("Total spent %s   Volume %s   Avg %s",
		FormatAmount(s.TotalSpend),
		FormatVolume(s.TotalVolume),
		FormatOptional(s.AveragePricePerUnit, "R$ %.3f/L"),
	)

	if !s.Enabled() {
		return faintStyle.Render("No budget limit configured") + "\n" + totals
	}

	remaining := FormatAmount(s.Remaining) + " left"
	if s.Remaining < 0 {
		remaining = errorStyle.Render(FormatAmount(-s.Remaining) + " over")
	}

	return fmt.Sprintf("%s  %s %.1f%%\n%s %s of %s, %s\n%s",
		BudgetBar(s.PercentUsed, s.Band, budgetBarWidth),
		bandBadge(s.Band),
		s.PercentUsed,
		VendorLabel(entry.VendorPrimary, m.Settings.PrimaryName),
		FormatAmount(s.VendorSpend),
		FormatAmount(s.Limit),
		remaining,
		totals,
	)
}

func (m DashboardModel) viewDaily(s *analytics.Summary) string {
	amounts := make([]int64, len(s.DailySpend))
	for i, d := range s.DailySpend {
		amounts[i] = d.Amount
	}

	first, last := "", ""
	if len(s.DailySpend) > 0 {
		first = s.DailySpend[0].Day.Format("02")
		last = s.DailySpend[len(s.DailySpend)-1].Day.Format("02")
	}

	return fmt.Sprintf("Daily spend\n%s\n%s%s%s",
		Sparkline(amounts),
		first,
		strings.Repeat(" ", max(0, len(amounts)-len(first)-len(last))),
		last,
	)
}

func (m DashboardModel) viewRecent(s *analytics.Summary) string {
	if len(s.RecentEntries) == 0 {
		return faintStyle.Render("No entries in this quinzena")
	}

	lines := []string{"Recent entries"}

	for _, e := range s.RecentEntries {
		line := fmt.Sprintf("%s  %-10s %10s  %9s  %7d km  %s km/L",
			e.Timestamp.In(m.location()).Format("02/01 15:04"),
			VendorLabel(e.Vendor, m.Settings.PrimaryName),
			FormatAmount(e.Amount),
			FormatVolume(e.Volume),
			e.Odometer,
			FormatOptional(e.Efficiency, "%.2f"),
		)

		if e.Anomalous {
			line += errorStyle.Render("  odometer did not advance")
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// Sparkline renders one bar per value scaled to the largest one. Zero values
// render as blanks.
func Sparkline(values []int64) string {
	var peak int64
	for _, v := range values {
		peak = max(peak, v)
	}

	var b strings.Builder

	for _, v := range values {
		if v <= 0 || peak == 0 {
			b.WriteRune(' ')
			continue
		}

		i := int(v * int64(len(sparkTicks)-1) / peak)
		b.WriteRune(sparkTicks[i])
	}

	return b.String()
}

type dashboardLoadedMsg struct {
	summary analytics.Summary
	alert   *alert.Alert
	err     error
}

// loadCmd assembles the summary of the shown quinzena. A pending alert of the
// current quinzena is acknowledged as soon as it is loaded for display.
func (m DashboardModel) loadCmd() tea.Cmd {
	p := m.period

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		summary, err := m.svc.SummaryFor(ctx, p)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}

		if p.Label != m.svc.Current(time.Now()).Label {
			return dashboardLoadedMsg{summary: summary}
		}

		delivered, err := m.svc.Deliver(ctx, summary)

		return dashboardLoadedMsg{summary: summary, alert: delivered, err: err}
	}
}
