package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

type mockLister struct {
	listFunc   func(ctx context.Context, filter entry.ListFilter) ([]*entry.Entry, error)
	latestFunc func(ctx context.Context, before time.Time) (*entry.Entry, error)
}

func (m *mockLister) List(ctx context.Context, filter entry.ListFilter) ([]*entry.Entry, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}

	return nil, nil
}

func (m *mockLister) Latest(ctx context.Context, before time.Time) (*entry.Entry, error) {
	if m.latestFunc != nil {
		return m.latestFunc(ctx, before)
	}

	return nil, nil
}

func fill(vendor entry.Vendor, amount, volume, odometer int64, day int) *entry.Entry {
	return &entry.Entry{
		ID:        uuid.New(),
		Vendor:    vendor,
		Amount:    amount,
		Volume:    volume,
		Odometer:  odometer,
		Timestamp: time.Date(2026, 10, day, 9, 0, 0, 0, time.UTC),
	}
}

func TestExportService_Export(t *testing.T) {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	before := fill(entry.VendorOther, 10000, 20000, 1000, 1)
	before.Timestamp = start.AddDate(0, 0, -3)

	e1 := fill(entry.VendorPrimary, 15000, 30000, 1450, 2)
	e2 := fill(entry.VendorPrimary, 12000, 20000, 1450, 6)

	var gotFilter entry.ListFilter

	svc := NewService(&mockLister{
		listFunc: func(_ context.Context, f entry.ListFilter) ([]*entry.Entry, error) {
			gotFilter = f
			return []*entry.Entry{e2, e1}, nil
		},
		latestFunc: func(_ context.Context, at time.Time) (*entry.Entry, error) {
			assert.Equal(t, start, at)
			return before, nil
		},
	}, "Ipiranga")

	metrics, err := svc.Export(context.Background(), entry.ListFilter{StartDate: &start, Limit: 5})
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	assert.Zero(t, gotFilter.Limit)

	assert.Same(t, e1, metrics[0].Entry)
	require.NotNil(t, metrics[0].Efficiency)
	assert.InDelta(t, 15.0, *metrics[0].Efficiency, 1e-9)

	assert.Same(t, e2, metrics[1].Entry)
	assert.True(t, metrics[1].Anomalous)
}

func TestExportService_Export_ListError(t *testing.T) {
	svc := NewService(&mockLister{
		listFunc: func(context.Context, entry.ListFilter) ([]*entry.Entry, error) {
			return nil, errors.New("db down")
		},
	}, "Ipiranga")

	_, err := svc.Export(context.Background(), entry.ListFilter{})
	assert.Error(t, err)
}

func TestExportService_WriteCSV(t *testing.T) {
	e1 := fill(entry.VendorPrimary, 15000, 30000, 1000, 2)
	e2 := fill(entry.VendorOther, 12000, 20000, 1300, 6)
	e2.Note = "viagem, serra"

	svc := NewService(&mockLister{
		listFunc: func(context.Context, entry.ListFilter) ([]*entry.Entry, error) {
			return []*entry.Entry{e1, e2}, nil
		},
	}, "Ipiranga")

	metrics, err := svc.Export(context.Background(), entry.ListFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, metrics))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{
		e1.ID.String(), "2026-10-02T09:00:00Z", "primary", "150.00", "30.000", "1000", "",
		"5.000", "", "", "", "false",
	}, records[1])
	assert.Equal(t, []string{
		e2.ID.String(), "2026-10-06T09:00:00Z", "other", "120.00", "20.000", "1300", "viagem, serra",
		"6.000", "300", "15.00", "0.400", "false",
	}, records[2])
}

func TestExportService_Report(t *testing.T) {
	e1 := fill(entry.VendorPrimary, 15000, 30000, 1000, 2)
	e2 := fill(entry.VendorOther, 12000, 20000, 1300, 6)

	svc := NewService(&mockLister{}, "Ipiranga")
	report := svc.Report(analytics.ComputeMetrics([]*entry.Entry{e1, e2}))

	lines := strings.Split(strings.TrimSpace(report), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t, "* 2026-10-06 | Outro | R$ 120.00 | 20.000 L | 1300 km | 15.00 km/L", lines[0])
	assert.Equal(t, "* 2026-10-02 | Ipiranga | R$ 150.00 | 30.000 L | 1000 km | -", lines[1])
}
