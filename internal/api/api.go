// Package api exposes the HTTP surface: status and stats probes, token
// connect/disconnect, and the file endpoints.
package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stashd/stashd/internal/auth"
	"github.com/stashd/stashd/internal/files"
	"github.com/stashd/stashd/internal/metadata"
	"github.com/stashd/stashd/internal/session"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-Token"

// healthcheckTimeout bounds liveness probes so /status answers promptly
// even when a store is unreachable.
const healthcheckTimeout = 2 * time.Second

// Server holds the handlers' dependencies.
type Server struct {
	gateway  *auth.Gateway
	files    *files.Service
	sessions session.Store
	meta     metadata.Store
	log      *slog.Logger
}

// NewServer creates the API server.
func NewServer(gateway *auth.Gateway, svc *files.Service, sessions session.Store, meta metadata.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		gateway:  gateway,
		files:    svc,
		sessions: sessions,
		meta:     meta,
		log:      log,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/status", s.handleStatus)
	r.Get("/stats", s.handleStats)
	r.Get("/connect", s.handleConnect)
	r.Get("/disconnect", s.handleDisconnect)
	r.Get("/users/me", s.handleMe)

	r.Route("/files", func(r chi.Router) {
		r.Post("/", s.handleCreateFile)
		r.Get("/", s.handleListFiles)
		r.Get("/{id}", s.handleGetFile)
		r.Put("/{id}/publish", s.handlePublish(true))
		r.Put("/{id}/unpublish", s.handlePublish(false))
		r.Get("/{id}/data", s.handleFileData)
	})

	return r
}
