package api

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/okian/engage/internal/domain/analytics"
	"github.com/okian/engage/internal/domain/types"
)

// uploadField is the multipart form field carrying the workbook.
const uploadField = "workbook"

// SessionsHandler handles session lifecycle and settings requests.
type SessionsHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies, maxUploadBytes int64) *SessionsHandler {
	return &SessionsHandler{deps: deps, maxUploadBytes: maxUploadBytes}
}

type sessionResponse struct {
	types.SessionInfo
	Settings analytics.Settings `json:"settings"`
}

// HandleCreate handles POST /sessions. The body is either the raw xlsx file
// or a multipart form with a "workbook" file field.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	body, done, err := uploadReader(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer done()

	info, err := h.deps.LoadWorkbook(r.Context(), body)
	if err != nil {
		writeFailure(w, err)
		return
	}
	_, settings, err := h.deps.Session(r.Context(), info.ID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+info.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{SessionInfo: info, Settings: settings})
}

// HandleGet handles GET /sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	info, settings, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionInfo: info, Settings: settings})
}

// HandleDelete handles DELETE /sessions/{id}.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSettings handles PUT /sessions/{id}/settings. Fields missing from the
// body keep their current values.
func (h *SessionsHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	_, settings, err := h.deps.Session(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	stored, err := h.deps.UpdateSettings(r.Context(), id, settings)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func uploadReader(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}
	file, _, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, err
		}
		return nil, nil, errors.Join(ErrNoUpload, err)
	}
	return file, func() { _ = file.Close() }, nil
}
