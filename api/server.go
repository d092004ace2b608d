package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/levels"
	"github.com/wricardo/mcp-training/sokoban/game/service"
	"github.com/wricardo/mcp-training/sokoban/game/session"
)

// Broadcaster pushes state updates to clients watching a session
type Broadcaster interface {
	BroadcastToSession(sessionID string, state *service.GameState)
	ServeWS(w http.ResponseWriter, r *http.Request, sessionID string)
}

// Server represents the REST API server
type Server struct {
	service  service.GameService
	hub      Broadcaster
	router   *mux.Router
	validate *validator.Validate
	logger   *slog.Logger
}

// NewServer creates a new API server. hub may be nil, which disables /ws
// and state broadcasts.
func NewServer(gameService service.GameService, hub Broadcaster, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		service:  gameService,
		hub:      hub,
		router:   mux.NewRouter(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("component", "api"),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware, s.loggingMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/bulk-move", s.handleBulkMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/restart", s.handleRestart).Methods("POST")
	api.HandleFunc("/sessions/{id}/next", s.handleNextLevel).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Levels
	api.HandleFunc("/levels", s.handleListLevels).Methods("GET")
	api.HandleFunc("/levels", s.handleSaveLevel).Methods("POST")
	api.HandleFunc("/levels/{id}", s.handleGetLevel).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a service error onto an HTTP status
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", requestID(r), "error", err)
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, levels.ErrLevelNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionAlreadyExists),
		errors.Is(err, service.ErrLevelNotWon),
		errors.Is(err, service.ErrNoNextLevel):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidDirection),
		errors.Is(err, service.ErrNoMoves),
		errors.Is(err, session.ErrInvalidSessionID),
		errors.Is(err, levels.ErrInvalidLevel),
		errors.Is(err, engine.ErrInvalidMap):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v and runs its validation tags. An empty
// body is accepted when allowEmpty is set.
func (s *Server) decode(r *http.Request, v any, allowEmpty bool) error {
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			if !(allowEmpty && errors.Is(err, io.EOF)) {
				return errors.New("Invalid request body")
			}
		}
	}
	if err := s.validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s violates %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func (s *Server) broadcast(sessionID string, state *service.GameState) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}
}

// Request bodies

type createSessionRequest struct {
	LevelID string `json:"level_id" validate:"omitempty,max=64"`
}

type moveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down left right w a s d"`
	Restart   bool   `json:"restart,omitempty"`
}

type bulkMoveRequest struct {
	Moves   []string `json:"moves" validate:"required,min=1,max=1000,dive,oneof=up down left right w a s d"`
	Restart bool     `json:"restart,omitempty"`
}

type saveLevelRequest struct {
	ID  string `json:"id" validate:"required,max=64"`
	Map string `json:"map" validate:"required"`
}

func normalizeDirection(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := s.decode(r, &req, true); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := s.service.CreateSession(r.Context(), req.LevelID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default)
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy != "created" {
		sortBy = "accessed"
	}
	if order != "asc" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req moveRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	req.Direction = normalizeDirection(req.Direction)
	if err := s.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, validationError(err).Error())
		return
	}

	result, err := s.service.Move(r.Context(), sessionID, req.Direction, req.Restart)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.broadcast(sessionID, result.GameState)

	if result.Success {
		s.logger.Debug("move", "session_id", sessionID, "direction", result.Direction,
			"from", result.From, "to", result.To, "pushed", result.Pushed)
	} else if a := result.AttemptedTo; a != nil {
		s.logger.Debug("move blocked", "session_id", sessionID, "direction", result.Direction,
			"row", a.Row, "col", a.Col, "reason", a.Reason)
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleBulkMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req bulkMoveRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	for i := range req.Moves {
		req.Moves[i] = normalizeDirection(req.Moves[i])
	}
	if err := s.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, validationError(err).Error())
		return
	}

	result, err := s.service.BulkMove(r.Context(), sessionID, req.Moves, req.Restart)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.broadcast(sessionID, result.GameState)

	s.logger.Debug("bulk move", "session_id", sessionID,
		"executed", result.MovesExecuted, "requested", result.RequestedMoves,
		"stop", result.StopReasonCode, "end", result.EndPos, "pushes", result.PushesDelta)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Restart(r.Context(), sessionID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.broadcast(sessionID, state)

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Level restarted",
		"state":   state,
	})
}

func (s *Server) handleNextLevel(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.NextLevel(r.Context(), sessionID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.broadcast(sessionID, state)

	respondJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Advanced to level %s", state.LevelID),
		"state":   state,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), sessionID, opts)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Level Handlers

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.ListLevels(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	levelID := strings.TrimSuffix(mux.Vars(r)["id"], ".txt")

	detail, err := s.service.GetLevel(r.Context(), levelID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleSaveLevel(w http.ResponseWriter, r *http.Request) {
	var req saveLevelRequest
	if err := s.decode(r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := s.service.SaveLevel(r.Context(), req.ID, req.Map)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Level saved successfully",
		"level":   info,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "websocket updates are disabled")
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session parameter required")
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
