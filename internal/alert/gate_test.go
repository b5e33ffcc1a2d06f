package alert_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

const label = period.Label("2026-10-H2")

func TestBandFor(t *testing.T) {
	type testCase struct {
		name    string
		percent float64
		want    alert.Band
	}

	tests := []testCase{
		{name: "Zero", percent: 0, want: alert.OK},
		{name: "JustBelowSeventy", percent: 69.999, want: alert.OK},
		{name: "ExactlySeventy", percent: 70.00, want: alert.Warn70},
		{name: "JustBelowNinety", percent: 89.99, want: alert.Warn70},
		{name: "ExactlyNinety", percent: 90, want: alert.Warn90},
		{name: "NinetyFive", percent: 95, want: alert.Warn90},
		{name: "ExactlyHundred", percent: 100.00, want: alert.Over},
		{name: "WayOver", percent: 250, want: alert.Over},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, alert.BandFor(tt.percent))
		})
	}
}

func TestParseBand(t *testing.T) {
	b, err := alert.ParseBand("warn_90")
	require.NoError(t, err)
	assert.Equal(t, alert.Warn90, b)

	_, err = alert.ParseBand("WARN_80")
	assert.Error(t, err)
}

func TestGate_MonotonicSuppression(t *testing.T) {
	ctx := context.Background()
	gate := alert.NewGate(alert.NewMemoryStore(), nil)

	for _, band := range []alert.Band{alert.Warn70, alert.Warn90, alert.Over} {
		first, err := gate.ShouldAlert(ctx, label, band)
		require.NoError(t, err)
		assert.True(t, first, band)

		require.NoError(t, gate.MarkAlerted(ctx, label, band))

		second, err := gate.ShouldAlert(ctx, label, band)
		require.NoError(t, err)
		assert.False(t, second, band)

		// Marking twice is idempotent.
		require.NoError(t, gate.MarkAlerted(ctx, label, band))
	}
}

func TestGate_OKNeverAlerts(t *testing.T) {
	ctx := context.Background()
	store := alert.NewMemoryStore()
	gate := alert.NewGate(store, nil)

	should, err := gate.ShouldAlert(ctx, label, alert.OK)
	require.NoError(t, err)
	assert.False(t, should)

	require.NoError(t, gate.MarkAlerted(ctx, label, alert.OK))

	recorded, err := store.Has(ctx, alert.Key{Period: label, Band: alert.OK})
	require.NoError(t, err)
	assert.False(t, recorded)
}

func TestGate_BandsAreIndependent(t *testing.T) {
	ctx := context.Background()
	gate := alert.NewGate(alert.NewMemoryStore(), nil)

	require.NoError(t, gate.MarkAlerted(ctx, label, alert.Warn90))

	warn70, err := gate.ShouldAlert(ctx, label, alert.Warn70)
	require.NoError(t, err)
	assert.True(t, warn70)

	other, err := gate.ShouldAlert(ctx, "2026-11-H1", alert.Warn90)
	require.NoError(t, err)
	assert.True(t, other)
}

func TestGate_Pending(t *testing.T) {
	type testCase struct {
		name     string
		usage    alert.Usage
		wantBand alert.Band
		wantNil  bool
	}

	tests := []testCase{
		{
			name:     "SeventyPercentAlerts",
			usage:    alert.Usage{Period: label, Limit: 50000, PercentUsed: 70},
			wantBand: alert.Warn70,
		},
		{
			name:    "BelowThreshold",
			usage:   alert.Usage{Period: label, Limit: 50000, PercentUsed: 42},
			wantNil: true,
		},
		{
			name:    "DisabledBudget",
			usage:   alert.Usage{Period: label, Limit: 0, PercentUsed: 150},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := alert.NewGate(alert.NewMemoryStore(), nil)

			got, err := gate.Pending(context.Background(), tt.usage)
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.wantBand, got.Band)
			assert.Equal(t, label, got.Period)
		})
	}
}

func TestGate_PendingDoesNotRecord(t *testing.T) {
	ctx := context.Background()
	gate := alert.NewGate(alert.NewMemoryStore(), nil)
	u := alert.Usage{Period: label, Limit: 100000, PercentUsed: 95}

	for range 3 {
		got, err := gate.Pending(ctx, u)
		require.NoError(t, err)
		require.NotNil(t, got)
	}
}

func TestGate_Deliver(t *testing.T) {
	ctx := context.Background()
	gate := alert.NewGate(alert.NewMemoryStore(), nil)

	var fired []alert.Key
	gate.OnFire = func(k alert.Key) { fired = append(fired, k) }

	u := alert.Usage{Period: label, Limit: 100000, PercentUsed: 95}

	got, err := gate.Deliver(ctx, u)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "WARN_90: 95.00% of the 2026-10-H2 vendor budget used", got.Message)

	again, err := gate.Deliver(ctx, u)
	require.NoError(t, err)
	assert.Nil(t, again)

	assert.Equal(t, []alert.Key{{Period: label, Band: alert.Warn90}}, fired)
}

func TestGate_ReCrossingStaysSuppressed(t *testing.T) {
	ctx := context.Background()
	gate := alert.NewGate(alert.NewMemoryStore(), nil)

	readings := []float64{95, 60, 95}
	var alerts []*alert.Alert

	for _, pct := range readings {
		a, err := gate.Deliver(ctx, alert.Usage{Period: label, Limit: 100000, PercentUsed: pct})
		require.NoError(t, err)

		if a != nil {
			alerts = append(alerts, a)
		}
	}

	require.Len(t, alerts, 1)
	assert.Equal(t, alert.Warn90, alerts[0].Band)

	should, err := gate.ShouldAlert(ctx, label, alert.Warn90)
	require.NoError(t, err)
	assert.False(t, should)
}

func TestGate_ConcurrentDeliverFiresOnce(t *testing.T) {
	ctx := context.Background()
	gate := alert.NewGate(alert.NewMemoryStore(), nil)
	u := alert.Usage{Period: label, Limit: 100000, PercentUsed: 100}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		count int
	)

	for range 20 {
		wg.Go(func() {
			a, err := gate.Deliver(ctx, u)
			if err != nil || a == nil {
				return
			}

			mu.Lock()
			count++
			mu.Unlock()
		})
	}

	wg.Wait()
	assert.Equal(t, 1, count)
}

type failingStore struct{}

func (failingStore) Has(context.Context, alert.Key) (bool, error) {
	return false, errors.New("store down")
}

func (failingStore) Put(context.Context, alert.Key) error {
	return errors.New("store down")
}

func TestGate_StoreErrors(t *testing.T) {
	ctx := context.Background()
	gate := alert.NewGate(failingStore{}, nil)

	_, err := gate.ShouldAlert(ctx, label, alert.Warn70)
	assert.Error(t, err)

	assert.Error(t, gate.MarkAlerted(ctx, label, alert.Warn70))

	got, err := gate.Pending(ctx, alert.Usage{Period: label, Limit: 100, PercentUsed: 80})
	assert.Error(t, err)
	assert.Nil(t, got)
}
