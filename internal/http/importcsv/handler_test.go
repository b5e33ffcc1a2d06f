package importcsv

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/importer"
	"github.com/MrJamesThe3rd/fuelctl/internal/importer/fuelcsv"
)

const sheet = `Date,Station,Amount,Volume,Odometer,Note
2026-10-02,Ipiranga Rodovia,150.00,28.5,125430,
`

type otherVendor struct{}

func (otherVendor) Classify(context.Context, string) (entry.Vendor, error) {
	return entry.VendorOther, nil
}

type countingObserver struct {
	total int
}

func (o *countingObserver) EntriesImported(n int) {
	o.total += n
}

type fixture struct {
	router   http.Handler
	repo     *entry.MockRepository
	itx      *entry.MockImportTx
	observer *countingObserver
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := entry.NewMockRepository(ctrl)
	itx := entry.NewMockImportTx(ctrl)
	observer := &countingObserver{}

	importSvc := importer.NewService(otherVendor{}, map[importer.Format]importer.Importer{
		importer.FormatSpreadsheet: fuelcsv.NewParser(time.UTC),
	})

	r := chi.NewRouter()
	NewHandler(importSvc, entry.NewService(repo), observer).Routes(r)

	return fixture{router: r, repo: repo, itx: itx, observer: observer}
}

func uploadRequest(t *testing.T, format, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	if format != "" {
		require.NoError(t, mw.WriteField("format", format))
	}

	if content != "" {
		part, err := mw.CreateFormFile("file", "fuel.csv")
		require.NoError(t, err)

		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func TestHandler_Import(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(f.itx, nil)
	f.itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return(nil, nil)
	f.itx.EXPECT().CreateEntries(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entries []*entry.Entry) error {
			require.Len(t, entries, 1)
			assert.Equal(t, entry.VendorOther, entries[0].Vendor)
			assert.Equal(t, int64(15000), entries[0].Amount)
			assert.Equal(t, int64(28500), entries[0].Volume)

			entries[0].ID = uuid.New()

			return nil
		})
	f.itx.EXPECT().Commit().Return(nil)
	f.itx.EXPECT().Rollback().Return(nil)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, uploadRequest(t, "", sheet))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp importSuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, int64(125430), resp.Entries[0].Odometer)
	assert.Equal(t, 1, f.observer.total)
}

func TestHandler_Import_Conflicts(t *testing.T) {
	f := newFixture(t)

	existing := &entry.Entry{
		ID:        uuid.New(),
		Vendor:    entry.VendorPrimary,
		Amount:    15000,
		Volume:    28500,
		Odometer:  125430,
		Timestamp: time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC),
	}

	f.repo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(f.itx, nil)
	f.itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return([]*entry.Entry{existing}, nil)
	f.itx.EXPECT().Rollback().Return(nil)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, uploadRequest(t, string(importer.FormatSpreadsheet), sheet))

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp importConflictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.New)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, existing.ID, resp.Conflicts[0].Existing.ID)
	assert.Equal(t, int64(15000), resp.Conflicts[0].Incoming.Amount)
	assert.Zero(t, f.observer.total)
}

func TestHandler_Import_BadRequest(t *testing.T) {
	type testCase struct {
		name    string
		format  string
		content string
	}

	tests := []testCase{
		{name: "MissingFile", format: "spreadsheet"},
		{name: "UnknownFormat", format: "bank", content: sheet},
		{name: "UnparseableFile", content: "nothing,useful\n1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, uploadRequest(t, tt.format, tt.content))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_Confirm(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(f.itx, nil)
	f.itx.EXPECT().CreateEntries(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entries []*entry.Entry) error {
			require.Len(t, entries, 2)

			return nil
		})
	f.itx.EXPECT().Commit().Return(nil)
	f.itx.EXPECT().Rollback().Return(nil)

	body := `{"params":[
		{"vendor":"primary","amount":15000,"volume":28500,"odometer":125430,"timestamp":"2026-10-02T00:00:00Z"},
		{"vendor":"other","amount":8000,"volume":14000,"odometer":125700,"timestamp":"2026-10-05T00:00:00Z"}
	]}`

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/confirm", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, f.observer.total)
}

func TestHandler_Confirm_InvalidEntry(t *testing.T) {
	f := newFixture(t)

	body := `{"params":[{"vendor":"primary","amount":0,"volume":28500,"odometer":1,"timestamp":"2026-10-02T00:00:00Z"}]}`

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/confirm", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
