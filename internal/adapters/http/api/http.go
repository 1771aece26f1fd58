// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/engage/internal/domain/analytics"
	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	LoadWorkbook(ctx context.Context, r io.Reader) (types.SessionInfo, error)
	Session(ctx context.Context, id string) (types.SessionInfo, analytics.Settings, error)
	UpdateSettings(ctx context.Context, id string, s analytics.Settings) (analytics.Settings, error)
	DeleteSession(ctx context.Context, id string) error

	Generate(ctx context.Context, id string, kinds []types.ChartKind) (types.ChartRun, error)
	Charts(ctx context.Context, id string) ([]types.Chart, error)
	Export(ctx context.Context, id string, w io.Writer) error

	Workbook(ctx context.Context, id string) ([]types.WorkbookEntry, error)
	AddToWorkbook(ctx context.Context, id, chartID, note string) ([]types.WorkbookEntry, error)
	UpdateNote(ctx context.Context, id, chartID, note string) ([]types.WorkbookEntry, error)
	ResetWorkbook(ctx context.Context, id string) error
	WriteWorkbook(ctx context.Context, id string, w io.Writer) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	sessionsHandler  *SessionsHandler
	chartsHandler    *ChartsHandler
	workbookHandler  *WorkbookHandler
	dashboardHandler *dashboardHandler
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxUploadBytes int64
}

// WithMaxUploadBytes limits the size of an uploaded workbook.
func WithMaxUploadBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		sessionsHandler:  NewSessionsHandler(deps, cfg.maxUploadBytes),
		chartsHandler:    NewChartsHandler(deps),
		workbookHandler:  NewWorkbookHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleGet, "session"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleDelete, "session"))
	mux.HandleFunc("PUT /sessions/{id}/settings", MetricsMiddleware(s.sessionsHandler.HandleSettings, "settings"))

	mux.HandleFunc("POST /sessions/{id}/charts", MetricsMiddleware(s.chartsHandler.HandleGenerate, "charts"))
	mux.HandleFunc("GET /sessions/{id}/charts", MetricsMiddleware(s.chartsHandler.HandleList, "charts"))
	mux.HandleFunc("GET /sessions/{id}/export", MetricsMiddleware(s.chartsHandler.HandleExport, "export"))

	mux.HandleFunc("GET /sessions/{id}/workbook", MetricsMiddleware(s.workbookHandler.HandleGet, "workbook"))
	mux.HandleFunc("POST /sessions/{id}/workbook", MetricsMiddleware(s.workbookHandler.HandleAdd, "workbook"))
	mux.HandleFunc("DELETE /sessions/{id}/workbook", MetricsMiddleware(s.workbookHandler.HandleReset, "workbook"))
	mux.HandleFunc("PUT /sessions/{id}/workbook/{chart_id}", MetricsMiddleware(s.workbookHandler.HandleNote, "workbook"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure translates upstream errors to a status and code.
func writeFailure(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
	case errors.Is(err, types.ErrNotFound):
		writeError(w, http.StatusNotFound, analytics.Code(err), err)
	case errors.Is(err, types.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, analytics.Code(err), err)
	case errors.Is(err, model.ErrParse):
		writeError(w, http.StatusBadRequest, analytics.Code(err), err)
	case errors.Is(err, model.ErrLookup),
		errors.Is(err, model.ErrConfiguration),
		errors.Is(err, model.ErrEmptyResult):
		writeError(w, http.StatusUnprocessableEntity, analytics.Code(err), err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}
