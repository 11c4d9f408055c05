package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stashd/stashd/internal/auth"
	"github.com/stashd/stashd/internal/files"
)

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps domain errors to client-facing statuses and
// messages. Anything unmapped is a storage-class fault: the detail is
// logged and the client sees a generic 500.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		s.respondJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
	case errors.Is(err, files.ErrMissingName):
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "Missing name"})
	case errors.Is(err, files.ErrMissingType):
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "Missing type"})
	case errors.Is(err, files.ErrMissingData):
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "Missing data"})
	case errors.Is(err, files.ErrParentNotFound):
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "Parent not found"})
	case errors.Is(err, files.ErrParentNotFolder):
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "Parent is not a folder"})
	case errors.Is(err, files.ErrNotAFile):
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "A folder doesn't have content"})
	case errors.Is(err, files.ErrInvalidSize):
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid size"})
	case errors.Is(err, files.ErrNotFound):
		s.respondJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		s.respondJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
	}
}
