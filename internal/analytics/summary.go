package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

type AssembleInput struct {
	Period period.Period
	Limit  int64

	// Entries are the purchases inside Period, in any order.
	Entries []*entry.Entry

	// Predecessor is the entry with the latest timestamp before
	// Period.Start, if any. It takes part in the odometer ordering like any
	// other entry and is not reported, so a mistyped reading places it
	// wherever its odometer sorts rather than in front of the period.
	Predecessor *entry.Entry

	// RecentLimit caps RecentEntries; zero or less keeps all of them.
	RecentLimit int
}

// DailySpend is the total amount bought on one calendar day.
type DailySpend struct {
	Day    time.Time
	Amount int64
}

// SeriesPoint is one value of a per-entry series. Value is nil when the
// metric is undefined for that entry.
type SeriesPoint struct {
	EntryID   uuid.UUID
	Timestamp time.Time
	Value     *float64
}

// Summary is everything the presentation layer needs for one period.
type Summary struct {
	BudgetSnapshot

	PeriodStart time.Time
	PeriodEnd   time.Time
	Band        alert.Band

	// RecentEntries are newest first.
	RecentEntries []EntryMetrics

	// DailySpend has one bucket per day of the period, zero-filled.
	DailySpend []DailySpend

	// The series are index-aligned with the period's entries in odometer
	// order.
	PricePerUnitSeries []SeriesPoint
	EfficiencySeries   []SeriesPoint
}

// Assemble composes the budget snapshot, per-entry metrics and series of a
// period. It reports the band but leaves alert state alone.
func Assemble(in AssembleInput) Summary {
	snap := Aggregate(in.Period.Label, in.Entries, in.Limit)

	band := alert.OK
	if snap.Enabled() {
		band = alert.BandFor(snap.PercentUsed)
	}

	metrics := ComputeMetricsAfter(in.Predecessor, in.Entries)

	recent := NewestFirst(metrics)
	if in.RecentLimit > 0 && len(recent) > in.RecentLimit {
		recent = recent[:in.RecentLimit]
	}

	s := Summary{
		BudgetSnapshot:     snap,
		PeriodStart:        in.Period.Start,
		PeriodEnd:          in.Period.End,
		Band:               band,
		RecentEntries:      recent,
		DailySpend:         dailySpend(in.Period, in.Entries),
		PricePerUnitSeries: make([]SeriesPoint, len(metrics)),
		EfficiencySeries:   make([]SeriesPoint, len(metrics)),
	}

	for i, m := range metrics {
		s.PricePerUnitSeries[i] = SeriesPoint{EntryID: m.ID, Timestamp: m.Timestamp, Value: m.PricePerUnit}
		s.EfficiencySeries[i] = SeriesPoint{EntryID: m.ID, Timestamp: m.Timestamp, Value: m.Efficiency}
	}

	return s
}

func dailySpend(p period.Period, entries []*entry.Entry) []DailySpend {
	days := p.Days()
	buckets := make([]DailySpend, len(days))
	index := make(map[string]int, len(days))

	for i, d := range days {
		buckets[i] = DailySpend{Day: d}
		index[d.Format(time.DateOnly)] = i
	}

	loc := p.Start.Location()

	for _, e := range entries {
		i, ok := index[e.Timestamp.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}

		buckets[i].Amount += e.Amount
	}

	return buckets
}
