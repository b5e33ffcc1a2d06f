package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

// EntryLister is the part of entry.Service the export needs.
type EntryLister interface {
	List(ctx context.Context, filter entry.ListFilter) ([]*entry.Entry, error)
	Latest(ctx context.Context, before time.Time) (*entry.Entry, error)
}

// Service exports entries together with their derived metrics.
type Service struct {
	entries     EntryLister
	primaryName string
}

func NewService(entries EntryLister, primaryName string) *Service {
	return &Service{entries: entries, primaryName: primaryName}
}

// Export returns the entries matching filter with metrics, in odometer
// order. When the filter has a start date the entry before it is used as
// the predecessor of the first one.
func (s *Service) Export(ctx context.Context, filter entry.ListFilter) ([]analytics.EntryMetrics, error) {
	filter.Limit = 0

	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	var predecessor *entry.Entry

	if filter.StartDate != nil {
		predecessor, err = s.entries.Latest(ctx, *filter.StartDate)
		if err != nil {
			return nil, fmt.Errorf("loading predecessor: %w", err)
		}
	}

	return analytics.ComputeMetricsAfter(predecessor, entries), nil
}

var csvHeader = []string{
	"id", "timestamp", "vendor", "amount", "volume_l", "odometer_km", "note",
	"price_per_l", "distance_km", "km_per_l", "cost_per_km", "anomalous",
}

// WriteCSV writes metrics as CSV with a header row. Undefined metrics are
// empty cells.
func (s *Service) WriteCSV(w io.Writer, metrics []analytics.EntryMetrics) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, m := range metrics {
		record := []string{
			m.ID.String(),
			m.Timestamp.Format(time.RFC3339),
			string(m.Vendor),
			strconv.FormatFloat(m.Money(), 'f', 2, 64),
			strconv.FormatFloat(m.Liters(), 'f', 3, 64),
			strconv.FormatInt(m.Odometer, 10),
			m.Note,
			formatFloat(m.PricePerUnit, 3),
			formatInt(m.DistanceSinceLast),
			formatFloat(m.Efficiency, 2),
			formatFloat(m.CostPerDistance, 3),
			strconv.FormatBool(m.Anomalous),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing entry %s: %w", m.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Report renders metrics as one line per entry, newest first.
func (s *Service) Report(metrics []analytics.EntryMetrics) string {
	var sb strings.Builder

	for _, m := range analytics.NewestFirst(metrics) {
		vendor := "Outro"
		if m.Vendor == entry.VendorPrimary {
			vendor = s.primaryName
		}

		efficiency := "-"
		if m.Efficiency != nil {
			efficiency = fmt.Sprintf("%.2f km/L", *m.Efficiency)
		}

		if m.Anomalous {
			efficiency = "odômetro inválido"
		}

		fmt.Fprintf(&sb, "* %s | %s | R$ %.2f | %.3f L | %d km | %s\n",
			m.Timestamp.Format(time.DateOnly), vendor, m.Money(), m.Liters(), m.Odometer, efficiency)
	}

	return sb.String()
}

func formatFloat(v *float64, prec int) string {
	if v == nil {
		return ""
	}

	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}

	return strconv.FormatInt(*v, 10)
}
