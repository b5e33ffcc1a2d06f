// Package analytics derives budget and efficiency figures from fuel entries.
// Every function here is pure: inputs are never mutated and identical inputs
// give identical outputs.
package analytics

import (
	"bytes"
	"slices"

	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

// EntryMetrics is an entry with its derived values. Nil pointers mean the
// value is undefined for that entry.
type EntryMetrics struct {
	*entry.Entry

	PricePerUnit      *float64 // currency per litre
	DistanceSinceLast *int64   // km
	Efficiency        *float64 // km per litre
	CostPerDistance   *float64 // currency per km

	// Anomalous is set when the odometer did not increase since the
	// previous entry.
	Anomalous bool
}

// SortByOdometer returns a copy of entries ordered by odometer, then
// timestamp, then ID.
func SortByOdometer(entries []*entry.Entry) []*entry.Entry {
	sorted := slices.Clone(entries)

	slices.SortStableFunc(sorted, func(a, b *entry.Entry) int {
		if a.Odometer != b.Odometer {
			if a.Odometer < b.Odometer {
				return -1
			}

			return 1
		}

		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}

		return bytes.Compare(a.ID[:], b.ID[:])
	})

	return sorted
}

// ComputeMetrics derives per-entry metrics in odometer order. Each entry is
// compared with its predecessor in that order; a non-increasing odometer
// flags the entry and leaves its distance based metrics undefined without
// affecting the rest of the sequence.
func ComputeMetrics(entries []*entry.Entry) []EntryMetrics {
	sorted := SortByOdometer(entries)
	out := make([]EntryMetrics, len(sorted))

	for i, e := range sorted {
		m := EntryMetrics{Entry: e}

		if e.Volume > 0 {
			m.PricePerUnit = new(e.Money() / e.Liters())
		}

		if i > 0 {
			distance := e.Odometer - sorted[i-1].Odometer
			m.DistanceSinceLast = &distance

			if distance > 0 {
				if e.Volume > 0 {
					m.Efficiency = new(float64(distance) / e.Liters())
				}

				m.CostPerDistance = new(e.Money() / float64(distance))
			} else {
				m.Anomalous = true
			}
		}

		out[i] = m
	}

	return out
}

// ComputeMetricsAfter is ComputeMetrics with predecessor taking part in the
// sequence but left out of the result. A nil predecessor is ignored.
func ComputeMetricsAfter(predecessor *entry.Entry, entries []*entry.Entry) []EntryMetrics {
	if predecessor == nil {
		return ComputeMetrics(entries)
	}

	all := make([]*entry.Entry, 0, len(entries)+1)
	all = append(all, predecessor)
	all = append(all, entries...)

	metrics := ComputeMetrics(all)
	out := make([]EntryMetrics, 0, len(entries))

	for _, m := range metrics {
		if m.Entry != predecessor {
			out = append(out, m)
		}
	}

	return out
}

// NewestFirst returns a copy of metrics ordered by timestamp descending, for
// display. It never feeds back into ComputeMetrics.
func NewestFirst(metrics []EntryMetrics) []EntryMetrics {
	sorted := slices.Clone(metrics)

	slices.SortStableFunc(sorted, func(a, b EntryMetrics) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}

		if a.Odometer != b.Odometer {
			if b.Odometer < a.Odometer {
				return -1
			}

			return 1
		}

		return 0
	})

	return sorted
}
