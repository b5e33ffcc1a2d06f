package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

const dbTimeout = 5 * time.Second

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	faintStyle   = lipgloss.NewStyle().Faint(true)

	bandColors = map[alert.Band]lipgloss.Color{
		alert.OK:     lipgloss.Color("42"),
		alert.Warn70: lipgloss.Color("214"),
		alert.Warn90: lipgloss.Color("208"),
		alert.Over:   lipgloss.Color("196"),
	}
)

// FormatAmount formats an amount stored as cents into a human-readable string.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("R$ %.2f", float64(cents)/100.0)
}

// FormatVolume formats millilitres as litres.
func FormatVolume(ml int64) string {
	return fmt.Sprintf("%.3f L", float64(ml)/1000.0)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatOptional renders v with format, or "-" when v is undefined.
func FormatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}

	return fmt.Sprintf(format, *v)
}

// VendorLabel shows the configured name of the primary vendor.
func VendorLabel(v entry.Vendor, primaryName string) string {
	if v == entry.VendorPrimary && primaryName != "" {
		return primaryName
	}

	return string(v)
}

// BudgetBar draws percent of width cells in the band's color, clamped to a
// full bar.
func BudgetBar(percent float64, band alert.Band, width int) string {
	filled := max(0, min(int(percent/100*float64(width)), width))

	return lipgloss.NewStyle().Foreground(bandColors[band]).Render(strings.Repeat("█", filled)) +
		faintStyle.Render(strings.Repeat("░", width-filled))
}

func bandBadge(b alert.Band) string {
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color("0")).
		Background(bandColors[b]).
		Render(b.String())
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
