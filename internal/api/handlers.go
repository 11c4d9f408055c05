package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stashd/stashd/internal/auth"
	"github.com/stashd/stashd/internal/files"
	"github.com/stashd/stashd/internal/metadata"
)

// identity resolves the X-Token header to a user. Required identities
// fail with ErrUnauthorized; optional ones resolve to nil.
func (s *Server) identity(r *http.Request) (*metadata.User, error) {
	return s.gateway.Resolve(r.Context(), r.Header.Get(TokenHeader))
}

func (s *Server) optionalIdentity(r *http.Request) (*metadata.User, error) {
	user, err := s.identity(r)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// handleStatus reports store liveness. Each probe is bounded so the
// endpoint answers promptly even when a store is down.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthcheckTimeout)
	defer cancel()

	s.respondJSON(w, http.StatusOK, map[string]bool{
		"redis": s.sessions.Healthcheck(ctx) == nil,
		"db":    s.meta.Healthcheck(ctx) == nil,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	users, filesCount, err := s.files.Counts(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int64{"users": users, "files": filesCount})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	token, err := s.gateway.Connect(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.gateway.Disconnect(r.Context(), r.Header.Get(TokenHeader)); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.identity(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": user.ID, "email": user.Email})
}

// parentID accepts both string and numeric JSON representations, since
// clients of the original service sent the root parent as the number 0.
type parentID string

func (p *parentID) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*p = parentID(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return errors.New("parentId must be a string or number")
	}
	*p = parentID(asNumber.String())
	return nil
}

type createFileRequest struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	ParentID parentID `json:"parentId"`
	IsPublic bool     `json:"isPublic"`
	Data     string   `json:"data"`
}

func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	user, err := s.identity(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req createFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "Bad Request"})
		return
	}

	created, err := s.files.Create(r.Context(), user, files.CreateInput{
		Name:     req.Name,
		Type:     metadata.FileType(req.Type),
		ParentID: string(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	user, err := s.identity(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			page = parsed
		}
	}

	list, err := s.files.List(r.Context(), user, r.URL.Query().Get("parentId"), page)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.optionalIdentity(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	file, err := s.files.Get(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, file)
}

func (s *Server) handlePublish(public bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.identity(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		file, err := s.files.SetPublic(r.Context(), user, chi.URLParam(r, "id"), public)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, file)
	}
}

func (s *Server) handleFileData(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.optionalIdentity(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	content, mimeType, err := s.files.Content(r.Context(), viewer, chi.URLParam(r, "id"), r.URL.Query().Get("size"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer func() { _ = content.Close() }()

	w.Header().Set("Content-Type", mimeType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, content)
}
