// Package http serves a read-only view of a running game: the scene stack, finished
// matches, metrics and a live stream of transitions.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/aplus/internal/logging"
	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/ports"
)

// Server holds the sources behind the handler. Nil sources answer 503.
type Server struct {
	Inspector ports.SceneInspector
	Store     ports.MatchStore
	Metrics   http.Handler
	Streams   *StreamManager
	Logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

func WithInspector(i ports.SceneInspector) Option { return func(s *Server) { s.Inspector = i } }

func WithStore(store ports.MatchStore) Option { return func(s *Server) { s.Store = store } }

func WithMetrics(h http.Handler) Option { return func(s *Server) { s.Metrics = h } }

func WithStreams(sm *StreamManager) Option { return func(s *Server) { s.Streams = sm } }

func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.Logger = l } }

// NewServer creates a server with opts applied.
func NewServer(opts ...Option) *Server {
	s := &Server{Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.Logger)
	}
	return s
}

// NewHandler creates the HTTP handler of a game.
func NewHandler(opts ...Option) http.Handler {
	return NewServer(opts...).Handler()
}

// Handler routes requests to s.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/scene", s.GetScene)
	r.Get("/events", s.SubscribeEvents)
	r.Route("/matches", func(r chi.Router) {
		r.Get("/", s.ListMatches)
		r.Get("/{id}", s.GetMatch)
		r.Delete("/{id}", s.DeleteMatch)
	})
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		if s.Metrics == nil {
			http.Error(w, "metrics disabled", http.StatusServiceUnavailable)
			return
		}
		s.Metrics.ServeHTTP(w, r)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetScene handles GET /scene.
func (s *Server) GetScene(w http.ResponseWriter, r *http.Request) {
	if s.Inspector == nil {
		http.Error(w, "no game running", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Inspector.Snapshot())
}

// ListMatches handles GET /matches.
func (s *Server) ListMatches(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "no match store", http.StatusServiceUnavailable)
		return
	}
	records, err := s.Store.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("list error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("List matches failed", "error", err)
		return
	}
	if records == nil {
		records = []*domain.MatchRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

// GetMatch handles GET /matches/{id}.
func (s *Server) GetMatch(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "no match store", http.StatusServiceUnavailable)
		return
	}
	record, err := s.Store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, "load", err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

// DeleteMatch handles DELETE /matches/{id}.
func (s *Server) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "no match store", http.StatusServiceUnavailable)
		return
	}
	if err := s.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.storeError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrMatchNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
	s.Logger.Error("Match store failed", "op", op, "error", err)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "error", err)
	}
}
