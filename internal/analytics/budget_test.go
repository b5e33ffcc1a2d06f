package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

func TestAggregate(t *testing.T) {
	type testCase struct {
		name          string
		entries       []*entry.Entry
		limit         int64
		wantVendor    int64
		wantTotal     int64
		wantVolume    int64
		wantRemaining int64
		wantPercent   float64
	}

	tests := []testCase{
		{
			name: "OnlyPrimaryCountsAgainstLimit",
			entries: []*entry.Entry{
				fill(entry.VendorPrimary, 20000, 35000, 1000, base),
				fill(entry.VendorOther, 10000, 18000, 1300, base),
				fill(entry.VendorPrimary, 15000, 27000, 1600, base),
			},
			limit:         50000,
			wantVendor:    35000,
			wantTotal:     45000,
			wantVolume:    80000,
			wantRemaining: 15000,
			wantPercent:   70,
		},
		{
			name: "OverageIsNegativeRemaining",
			entries: []*entry.Entry{
				fill(entry.VendorPrimary, 60000, 100000, 1000, base),
			},
			limit:         50000,
			wantVendor:    60000,
			wantTotal:     60000,
			wantVolume:    100000,
			wantRemaining: -10000,
			wantPercent:   120,
		},
		{
			name: "ZeroLimitDisablesPercent",
			entries: []*entry.Entry{
				fill(entry.VendorPrimary, 99999, 100000, 1000, base),
			},
			limit:         0,
			wantVendor:    99999,
			wantTotal:     99999,
			wantVolume:    100000,
			wantRemaining: -99999,
			wantPercent:   0,
		},
		{
			name:          "NoEntries",
			limit:         50000,
			wantRemaining: 50000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analytics.Aggregate("2026-10-H2", tt.entries, tt.limit)

			assert.Equal(t, period.Label("2026-10-H2"), got.PeriodLabel)
			assert.Equal(t, tt.limit, got.Limit)
			assert.Equal(t, tt.wantVendor, got.VendorSpend)
			assert.Equal(t, tt.wantTotal, got.TotalSpend)
			assert.Equal(t, tt.wantVolume, got.TotalVolume)
			assert.Equal(t, tt.wantRemaining, got.Remaining)
			assert.InDelta(t, tt.wantPercent, got.PercentUsed, 1e-9)
		})
	}
}

func TestAggregate_AveragePrice(t *testing.T) {
	got := analytics.Aggregate("2026-10-H1", []*entry.Entry{
		fill(entry.VendorPrimary, 30000, 50000, 1000, base),
		fill(entry.VendorOther, 12000, 20000, 1400, base),
	}, 100000)

	require.NotNil(t, got.AveragePricePerUnit)
	assert.InDelta(t, 6.0, *got.AveragePricePerUnit, 1e-9)

	empty := analytics.Aggregate("2026-10-H1", nil, 100000)
	assert.Nil(t, empty.AveragePricePerUnit)
}

func TestBudgetSnapshot_Usage(t *testing.T) {
	snap := analytics.Aggregate("2026-10-H1", []*entry.Entry{
		fill(entry.VendorPrimary, 35000, 50000, 1000, base),
	}, 50000)

	u := snap.Usage()
	assert.Equal(t, snap.PeriodLabel, u.Period)
	assert.Equal(t, int64(50000), u.Limit)
	assert.InDelta(t, 70.0, u.PercentUsed, 1e-9)
	assert.True(t, snap.Enabled())
}
