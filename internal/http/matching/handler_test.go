package matching

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/matching"
)

type memoryRepo struct {
	mappings map[string]entry.Vendor
}

func (m *memoryRepo) FindMatch(_ context.Context, rawStation string) (entry.Vendor, bool, error) {
	for pattern, v := range m.mappings {
		if strings.Contains(strings.ToLower(rawStation), strings.ToLower(pattern)) {
			return v, true, nil
		}
	}

	return "", false, nil
}

func (m *memoryRepo) SaveMapping(_ context.Context, rawPattern string, vendor entry.Vendor) error {
	m.mappings[rawPattern] = vendor
	return nil
}

func newTestRouter() (http.Handler, *memoryRepo) {
	repo := &memoryRepo{mappings: make(map[string]entry.Vendor)}

	r := chi.NewRouter()
	NewHandler(matching.NewService(repo, "Ipiranga")).Routes(r)

	return r, repo
}

func suggest(t *testing.T, router http.Handler, station string) suggestResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/suggest?station="+station, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp suggestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}

func TestHandler_LearnThenSuggest(t *testing.T) {
	router, repo := newTestRouter()

	before := suggest(t, router, "POSTO+BR+KM12")
	assert.Equal(t, entry.VendorOther, before.Vendor)
	assert.False(t, before.Learned)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"raw_pattern":" posto br ","vendor":"PRIMARY"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, entry.VendorPrimary, repo.mappings["posto br"])

	after := suggest(t, router, "POSTO+BR+KM12")
	assert.Equal(t, entry.VendorPrimary, after.Vendor)
	assert.True(t, after.Learned)
	assert.Equal(t, "POSTO BR KM12", after.Station)
}

func TestHandler_SuggestFallsBackToVendorName(t *testing.T) {
	router, _ := newTestRouter()

	resp := suggest(t, router, "AUTO+POSTO+IPIRANGA")
	assert.Equal(t, entry.VendorPrimary, resp.Vendor)
	assert.False(t, resp.Learned)
}

func TestHandler_BadRequests(t *testing.T) {
	type testCase struct {
		name   string
		method string
		target string
		body   string
	}

	tests := []testCase{
		{name: "SuggestWithoutStation", method: http.MethodGet, target: "/suggest"},
		{name: "LearnEmptyPattern", method: http.MethodPost, target: "/", body: `{"raw_pattern":"  ","vendor":"other"}`},
		{name: "LearnUnknownVendor", method: http.MethodPost, target: "/", body: `{"raw_pattern":"shell","vendor":"shell"}`},
		{name: "LearnMalformedBody", method: http.MethodPost, target: "/", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter()

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
