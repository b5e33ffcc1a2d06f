package entry

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

type entryResponse struct {
	ID        uuid.UUID    `json:"id"`
	Vendor    entry.Vendor `json:"vendor"`
	Amount    int64        `json:"amount"`
	Volume    int64        `json:"volume"`
	Odometer  int64        `json:"odometer"`
	Note      string       `json:"note,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`

	Metrics *metricsResponse `json:"metrics,omitempty"`
}

type metricsResponse struct {
	PricePerUnit      *float64 `json:"price_per_unit"`
	DistanceSinceLast *int64   `json:"distance_since_last"`
	Efficiency        *float64 `json:"efficiency"`
	CostPerDistance   *float64 `json:"cost_per_distance"`
	Anomalous         bool     `json:"anomalous"`
}

type lastOdometerResponse struct {
	Odometer *int64 `json:"odometer"`
}

func toResponse(e *entry.Entry) entryResponse {
	return entryResponse{
		ID:        e.ID,
		Vendor:    e.Vendor,
		Amount:    e.Amount,
		Volume:    e.Volume,
		Odometer:  e.Odometer,
		Note:      e.Note,
		Timestamp: e.Timestamp,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toResponseList(entries []*entry.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toResponse(e)
	}

	return resp
}

func toMetricsResponseList(metrics []analytics.EntryMetrics) []entryResponse {
	resp := make([]entryResponse, len(metrics))
	for i, m := range metrics {
		resp[i] = toResponse(m.Entry)
		resp[i].Metrics = &metricsResponse{
			PricePerUnit:      m.PricePerUnit,
			DistanceSinceLast: m.DistanceSinceLast,
			Efficiency:        m.Efficiency,
			CostPerDistance:   m.CostPerDistance,
			Anomalous:         m.Anomalous,
		}
	}

	return resp
}
