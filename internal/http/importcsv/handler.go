package importcsv

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/importer"
)

// ImportObserver is told how many entries each import stored.
type ImportObserver interface {
	EntriesImported(n int)
}

type Handler struct {
	importSvc *importer.Service
	entrySvc  *entry.Service
	observer  ImportObserver
}

func NewHandler(importSvc *importer.Service, entrySvc *entry.Service, observer ImportObserver) *Handler {
	return &Handler{
		importSvc: importSvc,
		entrySvc:  entrySvc,
		observer:  observer,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importFile)
	r.Post("/confirm", h.confirmImport)
}

type entryResponse struct {
	ID        uuid.UUID    `json:"id"`
	Vendor    entry.Vendor `json:"vendor"`
	Amount    int64        `json:"amount"`
	Volume    int64        `json:"volume"`
	Odometer  int64        `json:"odometer"`
	Note      string       `json:"note,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	CreatedAt time.Time    `json:"created_at"`
}

type importSuccessResponse struct {
	Imported int             `json:"imported"`
	Entries  []entryResponse `json:"entries"`
}

type createParamsDTO struct {
	Vendor    entry.Vendor `json:"vendor"`
	Amount    int64        `json:"amount"`
	Volume    int64        `json:"volume"`
	Odometer  int64        `json:"odometer"`
	Note      string       `json:"note"`
	Timestamp time.Time    `json:"timestamp"`
}

type conflictDTO struct {
	Incoming createParamsDTO `json:"incoming"`
	Existing entryResponse   `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	format := importer.Format(r.FormValue("format"))
	if format == "" {
		format = importer.FormatSpreadsheet
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(r.Context(), format, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.entrySvc.ImportBatch(r.Context(), params)
	if err != nil {
		writeImportError(w, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toEntryResponse(c.Existing),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to encode response", "error", err)
		}

		return
	}

	h.imported(len(result.Imported))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toSuccessResponse(result.Imported)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]entry.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, entry.CreateParams{
			Vendor:    p.Vendor,
			Amount:    p.Amount,
			Volume:    p.Volume,
			Odometer:  p.Odometer,
			Note:      p.Note,
			Timestamp: p.Timestamp,
		})
	}

	entries, err := h.entrySvc.CreateBatch(r.Context(), params)
	if err != nil {
		writeImportError(w, err)
		return
	}

	h.imported(len(entries))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toSuccessResponse(entries)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) imported(n int) {
	if h.observer != nil && n > 0 {
		h.observer.EntriesImported(n)
	}
}

func writeImportError(w http.ResponseWriter, err error) {
	if errors.Is(err, entry.ErrInvalidEntry) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Error("import failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func toSuccessResponse(entries []*entry.Entry) importSuccessResponse {
	responses := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, toEntryResponse(e))
	}

	return importSuccessResponse{
		Imported: len(entries),
		Entries:  responses,
	}
}

func toEntryResponse(e *entry.Entry) entryResponse {
	return entryResponse{
		ID:        e.ID,
		Vendor:    e.Vendor,
		Amount:    e.Amount,
		Volume:    e.Volume,
		Odometer:  e.Odometer,
		Note:      e.Note,
		Timestamp: e.Timestamp,
		CreatedAt: e.CreatedAt,
	}
}

func toParamsDTO(p entry.CreateParams) createParamsDTO {
	return createParamsDTO{
		Vendor:    p.Vendor,
		Amount:    p.Amount,
		Volume:    p.Volume,
		Odometer:  p.Odometer,
		Note:      p.Note,
		Timestamp: p.Timestamp,
	}
}
