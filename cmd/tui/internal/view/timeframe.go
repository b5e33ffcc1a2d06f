package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

// Timeframe represents a predefined or custom date range selection.
type Timeframe int

const (
	TimeframeThisPeriod Timeframe = 0
	TimeframeLastPeriod Timeframe = 1
	TimeframeThisMonth  Timeframe = 2
	TimeframeLastMonth  Timeframe = 3
	TimeframeAll        Timeframe = 4
	TimeframeCustom     Timeframe = 5
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisPeriod:
		return "This Quinzena"
	case TimeframeLastPeriod:
		return "Last Quinzena"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// timeframeToDateRange returns the first and last instant of tf relative to
// now. now's location decides where days start.
func timeframeToDateRange(tf Timeframe, now time.Time) (time.Time, time.Time) {
	switch tf {
	case TimeframeThisPeriod:
		p := period.Resolve(now)
		return p.Start, p.LastInstant()
	case TimeframeLastPeriod:
		p := period.Resolve(now).Previous()
		return p.Start, p.LastInstant()
	case TimeframeThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	case TimeframeLastMonth:
		start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	}

	return time.Time{}, time.Time{}
}

// normalizeDateRange widens a custom range to whole days in loc.
func normalizeDateRange(start, end time.Time, loc *time.Location) (time.Time, time.Time) {
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc),
		time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// TimeframeSelectedMsg is emitted when the user has selected a valid date range.
// Start and End are zero values when All is true.
type TimeframeSelectedMsg struct {
	Start time.Time
	End   time.Time
	All   bool
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker is a reusable component for selecting a date range.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe
	loc      *time.Location
	now      func() time.Time

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

// NewTimeframePicker creates a picker resolving ranges in loc.
func NewTimeframePicker(loc *time.Location) TimeframePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "End Date:   "

	if loc == nil {
		loc = time.UTC
	}

	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   TimeframeThisPeriod,
		loc:        loc,
		now:        time.Now,
		startInput: si,
		endInput:   ei,
	}
}

// Init returns the initial command for the picker.
func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

// Update handles messages for the timeframe picker.
func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(msg)
		case timeframeStateCustom:
			return m.updateCustom(msg)
		}
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > TimeframeThisPeriod {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.startInput.Focus()
			m.focusIndex = 0

			return m, textinput.Blink
		}

		if m.selected == TimeframeAll {
			return m, func() tea.Msg {
				return TimeframeSelectedMsg{All: true}
			}
		}

		start, end := timeframeToDateRange(m.selected, m.now().In(m.loc))

		return m, func() tea.Msg {
			return TimeframeSelectedMsg{Start: start, End: end}
		}
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
			return m, textinput.Blink
		}

		m.endInput.Focus()

		return m, textinput.Blink

	case "enter":
		start, err := time.ParseInLocation(time.DateOnly, m.startInput.Value(), m.loc)
		if err != nil {
			m.err = errors.New("invalid start date (YYYY-MM-DD)")
			return m, nil
		}

		end, err := time.ParseInLocation(time.DateOnly, m.endInput.Value(), m.loc)
		if err != nil {
			m.err = errors.New("invalid end date (YYYY-MM-DD)")
			return m, nil
		}

		if end.Before(start) {
			m.err = errors.New("end date is before start date")
			return m, nil
		}

		m.err = nil
		start, end = normalizeDateRange(start, end, m.loc)

		return m, func() tea.Msg {
			return TimeframeSelectedMsg{Start: start, End: end}
		}

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil
	}

	return m.updateInputs(msg)
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var cmds []tea.Cmd

	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

// View renders the timeframe picker.
func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	s := "Select Timeframe:\n\n"

	for i := TimeframeThisPeriod; i <= TimeframeCustom; i++ {
		cursor := " "
		line := i.String()

		if m.selected == i {
			cursor = ">"
			line = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(line)
		}

		s += fmt.Sprintf("%s %s\n", cursor, line)
	}

	s += "\n(Enter to select, Esc to back)"

	return s + errStr
}

// IsSelecting returns true if the picker is in the selection state (not custom input).
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

// Reset returns the picker to its initial selection state.
func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.selected = TimeframeThisPeriod
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
