package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	"github.com/MrJamesThe3rd/fuelctl/internal/dashboard"
)

type Handler struct {
	svc *dashboard.Service
	now func() time.Time
}

func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/alert", h.pendingAlert)
	r.Post("/alert/ack", h.acknowledge)
	r.Get("/monthly", h.monthly)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	p := h.svc.Current(h.now())

	if s := r.URL.Query().Get("period"); s != "" {
		var err error
		if p, err = h.svc.Period(s); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	summary, err := h.svc.SummaryFor(r.Context(), p)
	if err != nil {
		slog.Error("failed to assemble summary", "period", p.Label, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toSummaryResponse(p, summary)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) pendingAlert(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.PendingAlert(r.Context(), h.now())
	if err != nil {
		slog.Error("failed to evaluate alert", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(pendingAlertResponse{Alert: toAlertResponse(a)}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type acknowledgeRequest struct {
	Period string `json:"period"`
	Band   string `json:"band"`
}

func (h *Handler) acknowledge(w http.ResponseWriter, r *http.Request) {
	var req acknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.svc.Period(req.Period)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	band, err := alert.ParseBand(req.Band)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !band.Alerting() {
		http.Error(w, "band "+band.String()+" is never alerted", http.StatusBadRequest)
		return
	}

	if err := h.svc.Acknowledge(r.Context(), p.Label, band); err != nil {
		slog.Error("failed to acknowledge alert", "period", p.Label, "band", band, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	months := 0

	if s := r.URL.Query().Get("months"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			http.Error(w, "months must be a positive number", http.StatusBadRequest)
			return
		}

		months = n
	}

	totals, err := h.svc.Monthly(r.Context(), h.now(), months)
	if err != nil {
		slog.Error("failed to load monthly totals", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toMonthlyResponse(totals)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
