package view

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
)

// Settings are the configured values the views display.
type Settings struct {
	PrimaryName string
	Location    *time.Location
}

type CommonModel struct {
	Width    int
	Height   int
	Settings Settings
}

func (c CommonModel) location() *time.Location {
	if c.Settings.Location == nil {
		return time.UTC
	}

	return c.Settings.Location
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// alertBanner renders a delivered budget alert, or nothing.
func alertBanner(a *alert.Alert) string {
	if a == nil {
		return ""
	}

	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 2).
		MarginBottom(1).
		Foreground(lipgloss.Color("0")).
		Background(bandColors[a.Band]).
		Render("⚠ " + a.Message)
}
