package telemetry_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	"github.com/MrJamesThe3rd/fuelctl/internal/telemetry"
)

func scrape(t *testing.T, m *telemetry.Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	return string(body)
}

func TestMetrics_Middleware(t *testing.T) {
	m := telemetry.NewMetrics()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/entries/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/entries/123", nil))

	body := scrape(t, m)
	assert.Contains(t, body, `fuelctl_http_requests_total{method="GET",route="/entries/{id}",status="404"} 1`)
}

func TestMetrics_Domain(t *testing.T) {
	m := telemetry.NewMetrics()

	m.ObserveBudget("2026-10-H2", 72.5)
	m.AlertRecorded(alert.Key{Period: "2026-10-H2", Band: alert.Warn70})
	m.EntriesImported(3)

	body := scrape(t, m)
	assert.Contains(t, body, `fuelctl_budget_usage_percent{period="2026-10-H2"} 72.5`)
	assert.Contains(t, body, `fuelctl_budget_alerts_total{band="WARN_70"} 1`)
	assert.Contains(t, body, `fuelctl_entries_imported_total 3`)
}
