package entry

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fuelctl/internal/analytics"
	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

type Handler struct {
	svc *entry.Service
	loc *time.Location
}

func NewHandler(svc *entry.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}

	return &Handler{svc: svc, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/last-odometer", h.lastOdometer)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}", h.update)
}

// Amount and volume are decimal strings so both "150.00" and "150,00" work.
type createEntryRequest struct {
	Vendor    string     `json:"vendor"`
	Amount    string     `json:"amount"`
	Volume    string     `json:"volume"`
	Odometer  int64      `json:"odometer"`
	Note      string     `json:"note"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

func (req createEntryRequest) toParams() (entry.CreateParams, error) {
	vendor, err := entry.ParseVendor(req.Vendor)
	if err != nil {
		return entry.CreateParams{}, err
	}

	amount, err := entry.ParseAmount(req.Amount)
	if err != nil {
		return entry.CreateParams{}, errors.Join(entry.ErrInvalidEntry, err)
	}

	volume, err := entry.ParseVolume(req.Volume)
	if err != nil {
		return entry.CreateParams{}, errors.Join(entry.ErrInvalidEntry, err)
	}

	params := entry.CreateParams{
		Vendor:   vendor,
		Amount:   amount,
		Volume:   volume,
		Odometer: req.Odometer,
		Note:     req.Note,
	}

	if req.Timestamp != nil {
		params.Timestamp = *req.Timestamp
	}

	return params, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params, err := req.toParams()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.svc.Create(r.Context(), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(e)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entry.ListFilter{Order: entry.OrderAsc}

	if s := q.Get("period"); s != "" {
		p, err := period.Parse(s, h.loc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		filter.StartDate = new(p.Start)
		filter.EndDate = new(p.LastInstant())
	}

	if s := q.Get("start_date"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, h.loc)
		if err != nil {
			http.Error(w, "invalid start_date", http.StatusBadRequest)
			return
		}

		filter.StartDate = new(t)
	}

	if s := q.Get("end_date"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, h.loc)
		if err != nil {
			http.Error(w, "invalid end_date", http.StatusBadRequest)
			return
		}

		// end_date is inclusive of the whole day.
		filter.EndDate = new(t.AddDate(0, 0, 1).Add(-time.Nanosecond))
	}

	if s := q.Get("vendor"); s != "" {
		v, err := entry.ParseVendor(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		filter.Vendor = new(v)
	}

	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		filter.Limit = n
	}

	switch entry.Order(q.Get("order")) {
	case "", entry.OrderAsc:
	case entry.OrderDesc:
		filter.Order = entry.OrderDesc
	default:
		http.Error(w, "order must be asc or desc", http.StatusBadRequest)
		return
	}

	entries, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := toResponseList(entries)

	if q.Get("metrics") == "true" {
		metrics, err := h.withMetrics(r, filter, entries)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		resp = toMetricsResponseList(metrics)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// withMetrics derives per-entry metrics for a listing. A dated window
// borrows the entry right before it so its first row still gets a distance.
// Vendor-filtered or limited listings are not contiguous, so metrics come from
// the whole window and are then narrowed to the listed entries.
func (h *Handler) withMetrics(r *http.Request, filter entry.ListFilter, entries []*entry.Entry) ([]analytics.EntryMetrics, error) {
	var predecessor *entry.Entry

	if filter.StartDate != nil {
		var err error
		if predecessor, err = h.svc.Latest(r.Context(), *filter.StartDate); err != nil {
			return nil, err
		}
	}

	if filter.Vendor == nil && filter.Limit == 0 {
		metrics := analytics.ComputeMetricsAfter(predecessor, entries)
		if filter.Order == entry.OrderDesc {
			metrics = analytics.NewestFirst(metrics)
		}

		return metrics, nil
	}

	window, err := h.svc.List(r.Context(), entry.ListFilter{
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]analytics.EntryMetrics, len(window))
	for _, m := range analytics.ComputeMetricsAfter(predecessor, window) {
		byID[m.ID] = m
	}

	metrics := make([]analytics.EntryMetrics, 0, len(entries))
	for _, e := range entries {
		metrics = append(metrics, byID[e.ID])
	}

	return metrics, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(e)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateEntryRequest struct {
	Vendor    *string    `json:"vendor,omitempty"`
	Amount    *string    `json:"amount,omitempty"`
	Volume    *string    `json:"volume,omitempty"`
	Odometer  *int64     `json:"odometer,omitempty"`
	Note      *string    `json:"note,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

func (req updateEntryRequest) apply(e *entry.Entry) error {
	if req.Vendor != nil {
		v, err := entry.ParseVendor(*req.Vendor)
		if err != nil {
			return err
		}

		e.Vendor = v
	}

	if req.Amount != nil {
		amount, err := entry.ParseAmount(*req.Amount)
		if err != nil {
			return errors.Join(entry.ErrInvalidEntry, err)
		}

		e.Amount = amount
	}

	if req.Volume != nil {
		volume, err := entry.ParseVolume(*req.Volume)
		if err != nil {
			return errors.Join(entry.ErrInvalidEntry, err)
		}

		e.Volume = volume
	}

	if req.Odometer != nil {
		e.Odometer = *req.Odometer
	}

	if req.Note != nil {
		e.Note = *req.Note
	}

	if req.Timestamp != nil {
		e.Timestamp = *req.Timestamp
	}

	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := req.apply(e); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Update(r.Context(), e); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(e)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) lastOdometer(w http.ResponseWriter, r *http.Request) {
	var resp lastOdometerResponse

	odometer, ok, err := h.svc.LastOdometer(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if ok {
		resp.Odometer = new(odometer)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entry.ErrNotFound):
		http.Error(w, "entry not found", http.StatusNotFound)
	case errors.Is(err, entry.ErrInvalidEntry):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("entry request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
