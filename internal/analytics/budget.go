package analytics

import (
	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

// BudgetSnapshot is the spend of one period against the primary vendor
// limit. Money is in cents, volume in millilitres.
type BudgetSnapshot struct {
	PeriodLabel period.Label
	Limit       int64
	VendorSpend int64
	TotalSpend  int64
	TotalVolume int64

	// Remaining goes negative when the limit is exceeded.
	Remaining int64

	// PercentUsed is 0 when no limit is configured.
	PercentUsed float64

	// AveragePricePerUnit is currency per litre, nil without volume.
	AveragePricePerUnit *float64
}

// Enabled reports whether a budget limit is configured.
func (b BudgetSnapshot) Enabled() bool {
	return b.Limit > 0
}

// Aggregate sums the entries of a period. Only VendorPrimary spend counts
// against limit.
func Aggregate(label period.Label, entries []*entry.Entry, limit int64) BudgetSnapshot {
	snap := BudgetSnapshot{
		PeriodLabel: label,
		Limit:       limit,
	}

	for _, e := range entries {
		snap.TotalSpend += e.Amount
		snap.TotalVolume += e.Volume

		if e.Vendor == entry.VendorPrimary {
			snap.VendorSpend += e.Amount
		}
	}

	snap.Remaining = limit - snap.VendorSpend

	if limit > 0 {
		snap.PercentUsed = 100 * float64(snap.VendorSpend) / float64(limit)
	}

	if snap.TotalVolume > 0 {
		snap.AveragePricePerUnit = new((float64(snap.TotalSpend) / 100) / (float64(snap.TotalVolume) / 1000))
	}

	return snap
}

// Usage is the part of the snapshot the alert gate evaluates.
func (b BudgetSnapshot) Usage() alert.Usage {
	return alert.Usage{
		Period:      b.PeriodLabel,
		Limit:       b.Limit,
		PercentUsed: b.PercentUsed,
	}
}
