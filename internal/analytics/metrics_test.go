package analytics_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

var base = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

func fill(vendor entry.Vendor, amount, volume, odometer int64, ts time.Time) *entry.Entry {
	return &entry.Entry{
		ID:        uuid.New(),
		Vendor:    vendor,
		Amount:    amount,
		Volume:    volume,
		Odometer:  odometer,
		Timestamp: ts,
	}
}

func TestComputeMetrics_OdometerSequence(t *testing.T) {
	entries := []*entry.Entry{
		fill(entry.VendorPrimary, 5000, 10000, 1000, base),
		fill(entry.VendorPrimary, 5000, 10000, 1000, base.Add(time.Hour)),
		fill(entry.VendorOther, 12000, 20000, 1200, base.Add(2*time.Hour)),
	}

	got := analytics.ComputeMetrics(entries)
	require.Len(t, got, 3)

	first := got[0]
	assert.Nil(t, first.DistanceSinceLast)
	assert.Nil(t, first.Efficiency)
	assert.Nil(t, first.CostPerDistance)
	assert.False(t, first.Anomalous)

	second := got[1]
	require.NotNil(t, second.DistanceSinceLast)
	assert.Equal(t, int64(0), *second.DistanceSinceLast)
	assert.Nil(t, second.Efficiency)
	assert.Nil(t, second.CostPerDistance)
	assert.True(t, second.Anomalous)

	third := got[2]
	require.NotNil(t, third.DistanceSinceLast)
	assert.Equal(t, int64(200), *third.DistanceSinceLast)
	require.NotNil(t, third.Efficiency)
	assert.InDelta(t, 10.0, *third.Efficiency, 1e-9)
	require.NotNil(t, third.CostPerDistance)
	assert.InDelta(t, 0.6, *third.CostPerDistance, 1e-9)
	assert.False(t, third.Anomalous)
}

func TestComputeMetrics_PricePerUnit(t *testing.T) {
	type testCase struct {
		name   string
		amount int64
		volume int64
		want   float64
	}

	tests := []testCase{
		{name: "Round", amount: 15000, volume: 25000, want: 6.0},
		{name: "Fractional", amount: 15000, volume: 28500, want: 5.263157},
		{name: "SmallVolume", amount: 599, volume: 1, want: 5990.0},
		{name: "ThirdDecimal", amount: 1000, volume: 3000, want: 3.333333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analytics.ComputeMetrics([]*entry.Entry{fill(entry.VendorPrimary, tt.amount, tt.volume, 0, base)})

			require.NotNil(t, got[0].PricePerUnit)
			assert.InDelta(t, tt.want, *got[0].PricePerUnit, 0.0005)
		})
	}
}

func TestComputeMetrics_SortsByOdometerNotTimestamp(t *testing.T) {
	// Entered out of order: the 1100 km fill-up was recorded last.
	a := fill(entry.VendorPrimary, 5000, 10000, 1000, base)
	b := fill(entry.VendorPrimary, 5000, 10000, 1200, base.Add(time.Hour))
	c := fill(entry.VendorPrimary, 5000, 10000, 1100, base.Add(2*time.Hour))

	got := analytics.ComputeMetrics([]*entry.Entry{b, c, a})
	require.Len(t, got, 3)

	assert.Equal(t, []int64{1000, 1100, 1200}, []int64{got[0].Odometer, got[1].Odometer, got[2].Odometer})
	assert.Equal(t, int64(100), *got[1].DistanceSinceLast)
	assert.Equal(t, int64(100), *got[2].DistanceSinceLast)

	for _, m := range got {
		assert.False(t, m.Anomalous)
	}
}

func TestComputeMetrics_TiesBrokenByTimestamp(t *testing.T) {
	later := fill(entry.VendorPrimary, 100, 1000, 500, base.Add(time.Hour))
	earlier := fill(entry.VendorPrimary, 100, 1000, 500, base)

	got := analytics.ComputeMetrics([]*entry.Entry{later, earlier})

	assert.Same(t, earlier, got[0].Entry)
	assert.Same(t, later, got[1].Entry)
}

func TestComputeMetrics_PureAndDeterministic(t *testing.T) {
	input := []*entry.Entry{
		fill(entry.VendorPrimary, 5000, 10000, 1300, base),
		fill(entry.VendorOther, 5000, 10000, 1000, base.Add(time.Hour)),
		fill(entry.VendorPrimary, 5000, 10000, 1150, base.Add(2*time.Hour)),
	}
	snapshot := append([]*entry.Entry(nil), input...)

	first := analytics.ComputeMetrics(input)
	second := analytics.ComputeMetrics(input)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, input)
}

func TestComputeMetrics_Empty(t *testing.T) {
	assert.Empty(t, analytics.ComputeMetrics(nil))
}

func TestNewestFirst(t *testing.T) {
	a := fill(entry.VendorPrimary, 100, 1000, 100, base)
	b := fill(entry.VendorPrimary, 100, 1000, 200, base.Add(time.Hour))
	c := fill(entry.VendorPrimary, 100, 1000, 300, base.Add(2*time.Hour))

	metrics := analytics.ComputeMetrics([]*entry.Entry{a, b, c})
	display := analytics.NewestFirst(metrics)

	assert.Same(t, c, display[0].Entry)
	assert.Same(t, a, display[2].Entry)

	// Display order keeps the metrics computed in odometer order.
	assert.Equal(t, int64(100), *display[0].DistanceSinceLast)
	assert.Same(t, a, metrics[0].Entry)
}
