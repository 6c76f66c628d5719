// Package server exposes the mapping store over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/verte-zerg/wbdrift/internal/model"
	"github.com/verte-zerg/wbdrift/internal/store"
)

const maxBodyBytes = 1 << 20

// MergeResponse acknowledges a successful merge.
type MergeResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Mapping model.Mapping `json:"mapping,omitempty"`
}

// ErrorResponse reports a failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// CharactersRequest is the body of POST /add-characters.
type CharactersRequest struct {
	Characters string `json:"characters"`
}

// Server handles HTTP requests for the mapping store.
type Server struct {
	store     *store.Store
	logger    *log.Logger
	staticDir string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger replaces the default stdout logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStaticDir serves files from dir for paths without an API route.
func WithStaticDir(dir string) Option {
	return func(s *Server) {
		s.staticDir = dir
	}
}

// New creates a server backed by st.
func New(st *store.Store, opts ...Option) *Server {
	s := &Server{
		store:  st,
		logger: log.New(os.Stdout, "[wbdrift] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/wb-mapping", s.handleGetMapping)
	r.Post("/add-mapping", s.handleAddMapping)
	r.Post("/add-characters", s.handleAddCharacters)

	if s.staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.staticDir)))
	}
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on http://%s (mapping %s)", addr, s.store.Path())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		s.logger.Println("server stopped")
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	mapping, err := s.store.Load(r.Context())
	if err != nil {
		s.logError(r, err)
		s.writeError(w, http.StatusInternalServerError, "failed to read mapping")
		return
	}
	s.writeJSON(w, http.StatusOK, mapping)
}

func (s *Server) handleAddMapping(w http.ResponseWriter, r *http.Request) {
	var entries model.Mapping
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&entries); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be an object of string values")
		return
	}
	merged, err := s.store.Merge(r.Context(), entries)
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, "enter at least one character and code: "+err.Error())
		return
	case err != nil:
		s.logError(r, err)
		s.writeError(w, http.StatusInternalServerError, "failed to save mapping")
		return
	}
	s.logger.Printf("merged %d entries (%d total) request_id=%s", len(entries), len(merged), middleware.GetReqID(r.Context()))
	s.writeJSON(w, http.StatusOK, MergeResponse{
		Success: true,
		Message: "mapping saved",
		Mapping: merged,
	})
}

// handleAddCharacters acknowledges a practice character set. The text is
// not split into mapping entries.
func (s *Server) handleAddCharacters(w http.ResponseWriter, r *http.Request) {
	var req CharactersRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusOK, "request body must be {\"characters\": string}")
		return
	}
	text := strings.TrimSpace(req.Characters)
	if text == "" {
		s.writeError(w, http.StatusOK, "enter the characters to practice")
		return
	}
	s.logger.Printf("received %d practice characters request_id=%s", len([]rune(text)), middleware.GetReqID(r.Context()))
	s.writeJSON(w, http.StatusOK, MergeResponse{Success: true, Message: "characters received"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		s.logger.Printf("failed to write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Success: false, Error: message})
}

func (s *Server) logError(r *http.Request, err error) {
	s.logger.Printf("%s %s failed: %v request_id=%s", r.Method, r.URL.Path, err, middleware.GetReqID(r.Context()))
}
