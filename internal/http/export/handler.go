package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/export"
)

type Handler struct {
	svc *export.Service
	loc *time.Location
}

func NewHandler(svc *export.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}

	return &Handler{svc: svc, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.export)
	r.Get("/report", h.report)
}

type exportedEntryResponse struct {
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

func toExportedResponse(metrics []analytics.EntryMetrics) []exportedEntryResponse {
	resp := make([]exportedEntryResponse, len(metrics))
	for i, m := range metrics {
		resp[i] = exportedEntryResponse{
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
		}
	}

	return resp
}

func (h *Handler) filter(r *http.Request) (entry.ListFilter, error) {
	var filter entry.ListFilter

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, h.loc)
		if err != nil {
			return filter, fmt.Errorf("invalid start_date: %w", err)
		}

		filter.StartDate = new(t)
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, h.loc)
		if err != nil {
			return filter, fmt.Errorf("invalid end_date: %w", err)
		}

		filter.EndDate = new(t.AddDate(0, 0, 1).Add(-time.Nanosecond))
	}

	return filter, nil
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "json" {
		http.Error(w, "format must be csv or json", http.StatusBadRequest)
		return
	}

	metrics, err := h.svc.Export(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if format == "json" {
		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(toExportedResponse(metrics)); err != nil {
			slog.Error("failed to encode response", "error", err)
		}

		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"fuel_%s.csv\"", time.Now().Format("20060102")))

	if err := h.svc.WriteCSV(w, metrics); err != nil {
		slog.Error("failed to write csv", "error", err)
	}
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	metrics, err := h.svc.Export(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := fmt.Fprint(w, h.svc.Report(metrics)); err != nil {
		slog.Error("failed to write report", "error", err)
	}
}
