package dashboard

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/dashboard"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

type budgetResponse struct {
	Enabled             bool     `json:"enabled"`
	Limit               int64    `json:"limit"`
	VendorSpend         int64    `json:"vendor_spend"`
	TotalSpend          int64    `json:"total_spend"`
	TotalVolume         int64    `json:"total_volume"`
	Remaining           int64    `json:"remaining"`
	PercentUsed         float64  `json:"percent_used"`
	AveragePricePerUnit *float64 `json:"average_price_per_unit"`
}

type recentEntryResponse struct {
	ID                uuid.UUID    `json:"id"`
	Vendor            entry.Vendor `json:"vendor"`
	Amount            int64        `json:"amount"`
	Volume            int64        `json:"volume"`
	Odometer          int64        `json:"odometer"`
	Note              string       `json:"note,omitempty"`
	Timestamp         time.Time    `json:"timestamp"`
	PricePerUnit      *float64     `json:"price_per_unit"`
	DistanceSinceLast *int64       `json:"distance_since_last"`
	Efficiency        *float64     `json:"efficiency"`
	CostPerDistance   *float64     `json:"cost_per_distance"`
	Anomalous         bool         `json:"anomalous"`
}

type dailySpendResponse struct {
	Day    string `json:"day"`
	Amount int64  `json:"amount"`
}

type seriesPointResponse struct {
	EntryID   uuid.UUID `json:"entry_id"`
	Timestamp time.Time `json:"timestamp"`
	Value     *float64  `json:"value"`
}

type summaryResponse struct {
	Period             period.Label          `json:"period"`
	PeriodName         string                `json:"period_name"`
	PeriodStart        time.Time             `json:"period_start"`
	PeriodEnd          time.Time             `json:"period_end"`
	Band               alert.Band            `json:"band"`
	Budget             budgetResponse        `json:"budget"`
	RecentEntries      []recentEntryResponse `json:"recent_entries"`
	DailySpend         []dailySpendResponse  `json:"daily_spend"`
	PricePerUnitSeries []seriesPointResponse `json:"price_per_unit_series"`
	EfficiencySeries   []seriesPointResponse `json:"efficiency_series"`
}

type alertResponse struct {
	Band        alert.Band   `json:"band"`
	Period      period.Label `json:"period"`
	PercentUsed float64      `json:"percent_used"`
	Message     string       `json:"message"`
}

type pendingAlertResponse struct {
	Alert *alertResponse `json:"alert"`
}

type monthlyResponse struct {
	Month       string `json:"month"`
	TotalSpend  int64  `json:"total_spend"`
	VendorSpend int64  `json:"vendor_spend"`
	TotalVolume int64  `json:"total_volume"`
	Entries     int    `json:"entries"`
}

func toSummaryResponse(p period.Period, s analytics.Summary) summaryResponse {
	resp := summaryResponse{
		Period:      s.PeriodLabel,
		PeriodName:  p.DisplayName(),
		PeriodStart: s.PeriodStart,
		PeriodEnd:   s.PeriodEnd,
		Band:        s.Band,
		Budget: budgetResponse{
			Enabled:             s.Enabled(),
			Limit:               s.Limit,
			VendorSpend:         s.VendorSpend,
			TotalSpend:          s.TotalSpend,
			TotalVolume:         s.TotalVolume,
			Remaining:           s.Remaining,
			PercentUsed:         s.PercentUsed,
			AveragePricePerUnit: s.AveragePricePerUnit,
		},
		RecentEntries:      make([]recentEntryResponse, 0, len(s.RecentEntries)),
		DailySpend:         make([]dailySpendResponse, 0, len(s.DailySpend)),
		PricePerUnitSeries: toSeriesResponse(s.PricePerUnitSeries),
		EfficiencySeries:   toSeriesResponse(s.EfficiencySeries),
	}

	for _, m := range s.RecentEntries {
		resp.RecentEntries = append(resp.RecentEntries, recentEntryResponse{
			ID:                m.ID,
			Vendor:            m.Vendor,
			Amount:            m.Amount,
			Volume:            m.Volume,
			Odometer:          m.Odometer,
			Note:              m.Note,
			Timestamp:         m.Timestamp,
			PricePerUnit:      m.PricePerUnit,
			DistanceSinceLast: m.DistanceSinceLast,
			Efficiency:        m.Efficiency,
			CostPerDistance:   m.CostPerDistance,
			Anomalous:         m.Anomalous,
		})
	}

	for _, d := range s.DailySpend {
		resp.DailySpend = append(resp.DailySpend, dailySpendResponse{
			Day:    d.Day.Format(time.DateOnly),
			Amount: d.Amount,
		})
	}

	return resp
}

func toSeriesResponse(points []analytics.SeriesPoint) []seriesPointResponse {
	resp := make([]seriesPointResponse, len(points))
	for i, p := range points {
		resp[i] = seriesPointResponse{EntryID: p.EntryID, Timestamp: p.Timestamp, Value: p.Value}
	}

	return resp
}

func toAlertResponse(a *alert.Alert) *alertResponse {
	if a == nil {
		return nil
	}

	return &alertResponse{
		Band:        a.Band,
		Period:      a.Period,
		PercentUsed: a.PercentUsed,
		Message:     a.Message,
	}
}

func toMonthlyResponse(totals []dashboard.MonthlyTotal) []monthlyResponse {
	resp := make([]monthlyResponse, len(totals))
	for i, m := range totals {
		resp[i] = monthlyResponse{
			Month:       m.Month.Format("2006-01"),
			TotalSpend:  m.TotalSpend,
			VendorSpend: m.VendorSpend,
			TotalVolume: m.TotalVolume,
			Entries:     m.Entries,
		}
	}

	return resp
}
