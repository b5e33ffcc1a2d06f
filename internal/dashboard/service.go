// Package dashboard loads a period's entries and turns them into the
// summary and alert the presentation layer shows.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

const (
	defaultMonths = 6
	maxMonths     = 24
)

type EntryLister interface {
	List(ctx context.Context, filter entry.ListFilter) ([]*entry.Entry, error)
	Latest(ctx context.Context, before time.Time) (*entry.Entry, error)
}

// BudgetObserver is told about every summary that was assembled.
type BudgetObserver interface {
	ObserveBudget(label period.Label, percentUsed float64)
}

type Settings struct {
	// Limit is the primary vendor limit per period in cents. Zero disables
	// the budget.
	Limit       int64
	Location    *time.Location
	RecentLimit int
	Observer    BudgetObserver
}

type Service struct {
	entries  EntryLister
	gate     *alert.Gate
	settings Settings
	logger   *slog.Logger
}

func NewService(entries EntryLister, gate *alert.Gate, settings Settings, logger *slog.Logger) *Service {
	if settings.Location == nil {
		settings.Location = time.UTC
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		entries:  entries,
		gate:     gate,
		settings: settings,
		logger:   logger.With("component", "dashboard"),
	}
}

// Current is the period enclosing now.
func (s *Service) Current(now time.Time) period.Period {
	return period.Resolve(now.In(s.settings.Location))
}

// Period parses a label in the configured location.
func (s *Service) Period(label string) (period.Period, error) {
	return period.Parse(label, s.settings.Location)
}

// Summary assembles the summary of the period enclosing now.
func (s *Service) Summary(ctx context.Context, now time.Time) (analytics.Summary, error) {
	return s.SummaryFor(ctx, s.Current(now))
}

// SummaryFor assembles the summary of p. Nothing is assembled when the
// entries cannot be loaded.
func (s *Service) SummaryFor(ctx context.Context, p period.Period) (analytics.Summary, error) {
	start, end := p.Start, p.LastInstant()

	entries, err := s.entries.List(ctx, entry.ListFilter{
		StartDate: &start,
		EndDate:   &end,
		Order:     entry.OrderAsc,
	})
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("loading entries of %s: %w", p.Label, err)
	}

	predecessor, err := s.entries.Latest(ctx, p.Start)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("loading entry before %s: %w", p.Label, err)
	}

	summary := analytics.Assemble(analytics.AssembleInput{
		Period:      p,
		Limit:       s.settings.Limit,
		Entries:     entries,
		Predecessor: predecessor,
		RecentLimit: s.settings.RecentLimit,
	})

	if s.settings.Observer != nil {
		s.settings.Observer.ObserveBudget(p.Label, summary.PercentUsed)
	}

	s.logger.Debug("summary assembled",
		"period", p.Label,
		"entries", len(entries),
		"percent_used", summary.PercentUsed,
		"band", summary.Band,
	)

	return summary, nil
}

// PendingAlert returns the alert to show for the period enclosing now, or
// nil. It records nothing; call Acknowledge once the alert was displayed.
func (s *Service) PendingAlert(ctx context.Context, now time.Time) (*alert.Alert, error) {
	summary, err := s.Summary(ctx, now)
	if err != nil {
		return nil, err
	}

	return s.Pending(ctx, summary)
}

// Pending is PendingAlert for a summary the caller already assembled.
func (s *Service) Pending(ctx context.Context, summary analytics.Summary) (*alert.Alert, error) {
	return s.gate.Pending(ctx, summary.Usage())
}

// Deliver returns the alert summary warrants and records it in the same
// step, so concurrent callers deliver it at most once.
func (s *Service) Deliver(ctx context.Context, summary analytics.Summary) (*alert.Alert, error) {
	return s.gate.Deliver(ctx, summary.Usage())
}

// Acknowledge records that band was shown for label.
func (s *Service) Acknowledge(ctx context.Context, label period.Label, band alert.Band) error {
	return s.gate.MarkAlerted(ctx, label, band)
}

// MonthlyTotal is the spend of one calendar month.
type MonthlyTotal struct {
	Month       time.Time
	TotalSpend  int64
	VendorSpend int64
	TotalVolume int64
	Entries     int
}

// Monthly totals the last months calendar months up to the one enclosing
// now, oldest first. Months without entries are included with zeros.
func (s *Service) Monthly(ctx context.Context, now time.Time, months int) ([]MonthlyTotal, error) {
	if months <= 0 {
		months = defaultMonths
	}

	months = min(months, maxMonths)

	now = now.In(s.settings.Location)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.settings.Location)
	first := current.AddDate(0, -(months - 1), 0)
	end := current.AddDate(0, 1, 0).Add(-time.Nanosecond)

	entries, err := s.entries.List(ctx, entry.ListFilter{
		StartDate: &first,
		EndDate:   &end,
		Order:     entry.OrderAsc,
	})
	if err != nil {
		return nil, fmt.Errorf("loading entries since %s: %w", first.Format(time.DateOnly), err)
	}

	totals := make([]MonthlyTotal, months)
	for i := range totals {
		totals[i].Month = first.AddDate(0, i, 0)
	}

	for _, e := range entries {
		ts := e.Timestamp.In(s.settings.Location)
		i := (ts.Year()-first.Year())*12 + int(ts.Month()) - int(first.Month())

		if i < 0 || i >= months {
			continue
		}

		totals[i].TotalSpend += e.Amount
		totals[i].TotalVolume += e.Volume
		totals[i].Entries++

		if e.Vendor == entry.VendorPrimary {
			totals[i].VendorSpend += e.Amount
		}
	}

	return totals, nil
}
