package api

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/engage/internal/domain/types"
)

// WorkbookHandler handles the per-session workbook of saved charts.
type WorkbookHandler struct {
	deps Dependencies
}

// NewWorkbookHandler creates a new workbook handler.
func NewWorkbookHandler(deps Dependencies) *WorkbookHandler {
	return &WorkbookHandler{deps: deps}
}

type addRequest struct {
	ChartID string `json:"chart_id"`
	Note    string `json:"note"`
}

type noteRequest struct {
	Note string `json:"note"`
}

// HandleGet handles GET /sessions/{id}/workbook. With ?format=xlsx the saved
// charts are downloaded, one sheet each.
func (h *WorkbookHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if r.URL.Query().Get("format") == "xlsx" {
		var buf bytes.Buffer
		if err := h.deps.WriteWorkbook(r.Context(), id, &buf); err != nil {
			writeFailure(w, err)
			return
		}
		writeXLSX(w, "engagement-workbook.xlsx", buf.Bytes())
		return
	}
	entries, err := h.deps.Workbook(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeEntries(w, http.StatusOK, entries)
}

// HandleAdd handles POST /sessions/{id}/workbook.
func (h *WorkbookHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.ChartID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing chart_id"))
		return
	}
	entries, err := h.deps.AddToWorkbook(r.Context(), r.PathValue("id"), req.ChartID, req.Note)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeEntries(w, http.StatusCreated, entries)
}

// HandleNote handles PUT /sessions/{id}/workbook/{chart_id}.
func (h *WorkbookHandler) HandleNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	entries, err := h.deps.UpdateNote(r.Context(), r.PathValue("id"), r.PathValue("chart_id"), req.Note)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeEntries(w, http.StatusOK, entries)
}

// HandleReset handles DELETE /sessions/{id}/workbook.
func (h *WorkbookHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.ResetWorkbook(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeEntries(w http.ResponseWriter, status int, entries []types.WorkbookEntry) {
	if entries == nil {
		entries = []types.WorkbookEntry{}
	}
	writeJSON(w, status, entries)
}
