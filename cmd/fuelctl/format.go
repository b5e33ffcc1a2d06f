package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	bandStyles = map[alert.Band]lipgloss.Style{
		alert.OK:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		alert.Warn70: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		alert.Warn90: lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		alert.Over:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

func money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return fmt.Sprintf("%sR$ %d.%02d", sign, cents/100, cents%100)
}

func liters(ml int64) string {
	return fmt.Sprintf("%.3f L", float64(ml)/1000.0)
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}

	return fmt.Sprintf(format, *v)
}

func vendorName(v entry.Vendor, primaryName string) string {
	if v == entry.VendorPrimary && primaryName != "" {
		return primaryName
	}

	return string(v)
}

func renderBand(b alert.Band) string {
	return bandStyles[b].Render(b.String())
}

// progressBar draws percent of width cells, clamped to a full bar.
func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))

	return strings.Repeat("█", filled) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func entriesTable(metrics []analytics.EntryMetrics, primaryName string) string {
	rows := make([][]string, 0, len(metrics))

	for _, m := range metrics {
		distance := "-"
		if m.DistanceSinceLast != nil {
			distance = fmt.Sprintf("%d km", *m.DistanceSinceLast)
		}

		flag := ""
		if m.Anomalous {
			flag = "!"
		}

		rows = append(rows, []string{
			m.Timestamp.Format("2006-01-02 15:04"),
			vendorName(m.Vendor, primaryName),
			money(m.Amount),
			liters(m.Volume),
			fmt.Sprintf("%d", m.Odometer),
			optional(m.PricePerUnit, "%.3f"),
			distance,
			optional(m.Efficiency, "%.2f"),
			optional(m.CostPerDistance, "%.3f"),
			flag,
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("When", "Vendor", "Amount", "Volume", "Odometer", "R$/L", "Distance", "km/L", "R$/km", "").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}

			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Rows(rows...).
		String()
}
