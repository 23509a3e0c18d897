package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/codelab/internal/config"
	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/codelab/internal/session"
	"github.com/felixgeelhaar/codelab/internal/view"
	"github.com/google/uuid"
)

// Server represents the CodeLab daemon HTTP server
type Server struct {
	cfg       *config.LocalConfig
	server    *http.Server
	router    *http.ServeMux
	logger    *slog.Logger
	version   string
	startedAt time.Time

	sessions *session.Service
	renderer *view.Renderer
	hub      *Hub
}

// ServerConfig holds configuration for creating a new server
type ServerConfig struct {
	Config   *config.LocalConfig
	Sessions *session.Service
	Logger   *slog.Logger
	Version  string
}

// NewServer creates a new daemon server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session service is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	s := &Server{
		cfg:       cfg.Config,
		router:    http.NewServeMux(),
		logger:    logger,
		version:   cfg.Version,
		startedAt: time.Now(),
		sessions:  cfg.Sessions,
		renderer:  renderer,
		hub:       NewHub(cfg.Sessions, renderer, logger),
	}

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Config.Daemon.Bind, cfg.Config.Daemon.Port)
	handler := correlationIDMiddleware(recoveryMiddleware(logger, loggingMiddleware(logger, s.router)))
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Browser page
	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(view.Static())))
	s.router.HandleFunc("POST /select", s.handleSelectForm)
	s.router.HandleFunc("POST /run", s.handleRunForm)
	s.router.HandleFunc("POST /reset", s.handleResetForm)

	// Health & status
	s.router.HandleFunc("GET /v1/health", s.handleHealth)
	s.router.HandleFunc("GET /v1/status", s.handleStatus)

	// Exercises
	s.router.HandleFunc("GET /v1/exercises", s.handleListExercises)
	s.router.HandleFunc("GET /v1/exercises/{id}", s.handleGetExercise)

	// Sessions
	s.router.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	s.router.HandleFunc("GET /v1/sessions", s.handleListSessions)
	s.router.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	s.router.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	s.router.HandleFunc("PUT /v1/sessions/{id}/selection", s.handleSelect)
	s.router.HandleFunc("PUT /v1/sessions/{id}/code", s.handleUpdateCode)
	s.router.HandleFunc("POST /v1/sessions/{id}/runs", s.handleCreateRun)
	s.router.HandleFunc("POST /v1/sessions/{id}/reset", s.handleReset)
	s.router.HandleFunc("GET /v1/sessions/{id}/ws", s.handleWebSocket)
}

// Handler returns the root handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting codelab daemon",
		"addr", s.server.Addr,
		"exercises", s.sessions.Catalog().Len(),
		"evaluator", s.cfg.Runner.Evaluator,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down daemon...")
	s.hub.Close()
	return s.server.Shutdown(ctx)
}

// Handler implementations

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":         "running",
		"version":        s.version,
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"exercises":      s.sessions.Catalog().Len(),
		"sessions":       len(s.sessions.List(r.Context())),
		"watchers":       s.hub.Clients(),
		"evaluator":      s.cfg.Runner.Evaluator,
	})
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"exercises": s.sessions.Catalog().List(),
		"stats":     s.sessions.Catalog().Stats(),
	})
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	ex, err := s.sessions.Catalog().Get(r.PathValue("id"))
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ex)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req session.CreateRequest
	if err := decodeOptional(r, &req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	st, err := s.sessions.Create(r.Context(), req)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, st)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"sessions": s.sessions.List(r.Context()),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	st, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, st)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SelectRequest switches the selected exercise
type SelectRequest struct {
	ExerciseID string `json:"exercise_id"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ExerciseID == "" {
		s.jsonError(w, http.StatusBadRequest, "exercise_id is required", nil)
		return
	}

	st, err := s.sessions.Select(r.Context(), id, req.ExerciseID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, st)
}

// CodeRequest replaces the editor buffer
type CodeRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleUpdateCode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	var req CodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	st, err := s.sessions.UpdateCode(r.Context(), id, req.Code)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, st)
}

// RunRequest submits code for evaluation. A nil Code runs the current
// editor buffer. Async returns 202 with the running state.
type RunRequest struct {
	Code  *string `json:"code,omitempty"`
	Async bool    `json:"async,omitempty"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	var req RunRequest
	if err := decodeOptional(r, &req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	code, err := s.runCode(r.Context(), id, req.Code)
	if err != nil {
		s.domainError(w, err)
		return
	}

	if req.Async || r.URL.Query().Get("async") == "true" {
		st, err := s.sessions.StartRun(r.Context(), id, code)
		if err != nil {
			s.domainError(w, err)
			return
		}
		s.jsonResponse(w, http.StatusAccepted, st)
		return
	}

	st, err := s.sessions.Run(r.Context(), id, code)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, st)
}

func (s *Server) runCode(ctx context.Context, id uuid.UUID, code *string) (string, error) {
	if code != nil {
		return *code, nil
	}
	st, err := s.sessions.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if st.Editor == nil {
		return "", nil
	}
	return st.Editor.Code, nil
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	st, err := s.sessions.Reset(r.Context(), id)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, st)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if _, err := s.sessions.Get(r.Context(), id); err != nil {
		s.domainError(w, err)
		return
	}
	s.hub.ServeWS(w, r, id)
}

// Helper functions

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid session id", err)
		return uuid.Nil, false
	}
	return id, true
}

// decodeOptional decodes a JSON body, treating an empty body as zero values
func decodeOptional(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, domain.ErrExerciseNotFound):
		return http.StatusNotFound, "exercise not found"
	case errors.Is(err, domain.ErrRunInProgress):
		return http.StatusConflict, "run in progress"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limited"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidExercise):
		return http.StatusBadRequest, "invalid input"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) domainError(w http.ResponseWriter, err error) {
	status, message := statusFor(err)
	s.jsonError(w, status, message, err)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	s.jsonResponse(w, status, response)
}
