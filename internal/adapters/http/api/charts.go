package api

import (
	"bytes"
	"net/http"

	"github.com/okian/engage/internal/domain/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ChartsHandler handles chart generation and data export requests.
type ChartsHandler struct {
	deps Dependencies
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(deps Dependencies) *ChartsHandler {
	return &ChartsHandler{deps: deps}
}

// chartsRequest mirrors the OpenAPI schema for POST /sessions/{id}/charts.
type chartsRequest struct {
	Kinds []types.ChartKind `json:"kinds"`
}

// HandleGenerate handles POST /sessions/{id}/charts. An empty body or kind
// list builds every chart.
func (h *ChartsHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req chartsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	run, err := h.deps.Generate(r.Context(), r.PathValue("id"), req.Kinds)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HandleList handles GET /sessions/{id}/charts.
func (h *ChartsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	charts, err := h.deps.Charts(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	if charts == nil {
		charts = []types.Chart{}
	}
	writeJSON(w, http.StatusOK, charts)
}

// HandleExport handles GET /sessions/{id}/export.
func (h *ChartsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.deps.Export(r.Context(), r.PathValue("id"), &buf); err != nil {
		writeFailure(w, err)
		return
	}
	writeXLSX(w, "engagement-data.xlsx", buf.Bytes())
}

func writeXLSX(w http.ResponseWriter, name string, body []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
