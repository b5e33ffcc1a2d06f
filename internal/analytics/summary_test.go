package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

func TestAssemble(t *testing.T) {
	p := period.Resolve(base)

	prev := fill(entry.VendorPrimary, 10000, 20000, 900, p.Start.Add(-48*time.Hour))
	e1 := fill(entry.VendorPrimary, 20000, 40000, 1300, p.Start.Add(10*time.Hour))
	e2 := fill(entry.VendorOther, 10000, 20000, 1500, p.Start.Add(3*24*time.Hour))
	e3 := fill(entry.VendorPrimary, 15000, 30000, 1800, p.Start.Add(3*24*time.Hour+time.Hour))

	s := analytics.Assemble(analytics.AssembleInput{
		Period:      p,
		Limit:       50000,
		Entries:     []*entry.Entry{e3, e1, e2},
		Predecessor: prev,
		RecentLimit: 2,
	})

	assert.Equal(t, p.Label, s.PeriodLabel)
	assert.Equal(t, p.Start, s.PeriodStart)
	assert.Equal(t, p.End, s.PeriodEnd)
	assert.Equal(t, int64(35000), s.VendorSpend)
	assert.Equal(t, int64(45000), s.TotalSpend)
	assert.InDelta(t, 70.0, s.PercentUsed, 1e-9)
	assert.Equal(t, alert.Warn70, s.Band)

	require.Len(t, s.RecentEntries, 2)
	assert.Same(t, e3, s.RecentEntries[0].Entry)
	assert.Same(t, e2, s.RecentEntries[1].Entry)

	require.Len(t, s.EfficiencySeries, 3)
	assert.Equal(t, e1.ID, s.EfficiencySeries[0].EntryID)
	require.NotNil(t, s.EfficiencySeries[0].Value, "predecessor gives the first entry a distance")
	assert.InDelta(t, 10.0, *s.EfficiencySeries[0].Value, 1e-9)
	assert.Equal(t, e3.ID, s.PricePerUnitSeries[2].EntryID)
	assert.InDelta(t, 5.0, *s.PricePerUnitSeries[2].Value, 1e-9)

	require.Len(t, s.DailySpend, 16)
	assert.Equal(t, p.Start, s.DailySpend[0].Day)
	assert.Equal(t, int64(20000), s.DailySpend[0].Amount)
	assert.Equal(t, int64(0), s.DailySpend[1].Amount)
	assert.Equal(t, int64(25000), s.DailySpend[3].Amount)
}

func TestAssemble_PredecessorSortsByOdometer(t *testing.T) {
	p := period.Resolve(base)

	// Latest by time, but its reading was typed too high.
	prev := fill(entry.VendorPrimary, 10000, 20000, 1400, p.Start.Add(-time.Hour))
	e1 := fill(entry.VendorPrimary, 10000, 20000, 1300, p.Start.Add(time.Hour))
	e2 := fill(entry.VendorPrimary, 10000, 20000, 1500, p.Start.Add(24*time.Hour))

	s := analytics.Assemble(analytics.AssembleInput{
		Period:      p,
		Limit:       50000,
		Entries:     []*entry.Entry{e1, e2},
		Predecessor: prev,
	})

	require.Len(t, s.EfficiencySeries, 2)
	assert.Equal(t, e1.ID, s.EfficiencySeries[0].EntryID)
	assert.Nil(t, s.EfficiencySeries[0].Value)
	assert.Equal(t, e2.ID, s.EfficiencySeries[1].EntryID)
	require.NotNil(t, s.EfficiencySeries[1].Value)
	assert.InDelta(t, 5.0, *s.EfficiencySeries[1].Value, 1e-9)

	require.Len(t, s.RecentEntries, 2)
	assert.Equal(t, int64(20000), s.VendorSpend)
}

func TestAssemble_NoPredecessor(t *testing.T) {
	p := period.Resolve(base)
	only := fill(entry.VendorPrimary, 5000, 10000, 1000, base)

	s := analytics.Assemble(analytics.AssembleInput{Period: p, Limit: 50000, Entries: []*entry.Entry{only}})

	require.Len(t, s.EfficiencySeries, 1)
	assert.Nil(t, s.EfficiencySeries[0].Value)
	require.Len(t, s.RecentEntries, 1)
	assert.Nil(t, s.RecentEntries[0].DistanceSinceLast)
}

func TestAssemble_EmptyPeriod(t *testing.T) {
	p := period.Resolve(base)

	s := analytics.Assemble(analytics.AssembleInput{Period: p, Limit: 50000})

	assert.Equal(t, alert.OK, s.Band)
	assert.Equal(t, int64(50000), s.Remaining)
	assert.Nil(t, s.AveragePricePerUnit)
	assert.Empty(t, s.RecentEntries)
	assert.Len(t, s.DailySpend, len(p.Days()))
}

func TestScenario_SeventyPercentAlertsOnce(t *testing.T) {
	ctx := context.Background()
	p := period.Resolve(base)
	gate := alert.NewGate(alert.NewMemoryStore(), nil)

	s := analytics.Assemble(analytics.AssembleInput{
		Period: p,
		Limit:  50000,
		Entries: []*entry.Entry{
			fill(entry.VendorPrimary, 20000, 40000, 1000, base),
			fill(entry.VendorPrimary, 15000, 30000, 1400, base.Add(time.Hour)),
		},
	})

	assert.InDelta(t, 70.0, s.PercentUsed, 1e-9)
	assert.Equal(t, alert.Warn70, s.Band)

	should, err := gate.ShouldAlert(ctx, s.PeriodLabel, s.Band)
	require.NoError(t, err)
	assert.True(t, should)
}

func TestScenario_ZeroLimitNeverAlerts(t *testing.T) {
	ctx := context.Background()
	p := period.Resolve(base)
	gate := alert.NewGate(alert.NewMemoryStore(), nil)

	for _, amount := range []int64{100, 50000, 10000000} {
		s := analytics.Assemble(analytics.AssembleInput{
			Period:  p,
			Entries: []*entry.Entry{fill(entry.VendorPrimary, amount, 10000, 1000, base)},
		})

		assert.Zero(t, s.PercentUsed)
		assert.Equal(t, alert.OK, s.Band)

		a, err := gate.Deliver(ctx, s.Usage())
		require.NoError(t, err)
		assert.Nil(t, a)
	}
}

func TestScenario_DeletedEntryDoesNotResetAlert(t *testing.T) {
	ctx := context.Background()
	p := period.Resolve(base)
	gate := alert.NewGate(alert.NewMemoryStore(), nil)

	keep := fill(entry.VendorPrimary, 60000, 100000, 1000, base)
	spike := fill(entry.VendorPrimary, 35000, 60000, 1500, base.Add(time.Hour))
	again := fill(entry.VendorPrimary, 35000, 60000, 1600, base.Add(2*time.Hour))

	summarize := func(entries ...*entry.Entry) analytics.Summary {
		return analytics.Assemble(analytics.AssembleInput{Period: p, Limit: 100000, Entries: entries})
	}

	s := summarize(keep, spike)
	require.Equal(t, alert.Warn90, s.Band)

	a, err := gate.Deliver(ctx, s.Usage())
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Contains(t, a.Message, "95.00%")

	// spike is deleted
	s = summarize(keep)
	assert.InDelta(t, 60.0, s.PercentUsed, 1e-9)

	a, err = gate.Deliver(ctx, s.Usage())
	require.NoError(t, err)
	assert.Nil(t, a)

	s = summarize(keep, again)
	require.Equal(t, alert.Warn90, s.Band)

	a, err = gate.Deliver(ctx, s.Usage())
	require.NoError(t, err)
	assert.Nil(t, a)

	should, err := gate.ShouldAlert(ctx, p.Label, alert.Warn90)
	require.NoError(t, err)
	assert.False(t, should)
}
