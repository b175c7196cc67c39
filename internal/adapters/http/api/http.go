// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/matchdesk/internal/adapters/registry"
	"github.com/okian/matchdesk/internal/adapters/upstream"
	service "github.com/okian/matchdesk/internal/app"
	"github.com/okian/matchdesk/internal/domain/match"
	"github.com/okian/matchdesk/internal/domain/rating"
	"github.com/okian/matchdesk/internal/domain/roster"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreateSession(ctx context.Context) (service.View, error)
	Session(ctx context.Context, id string) (service.View, error)
	DiscardSession(ctx context.Context, id string)
	Reorder(ctx context.Context, id string, phase service.Phase, col roster.ColumnID, itemIDs []int64) (service.View, error)
	Move(ctx context.Context, id string, itemID int64, col roster.ColumnID) (service.View, error)
	Submit(ctx context.Context, id string, entry match.ScoreEntry) (service.SubmitResult, error)
	Leaderboard(ctx context.Context, scope string) ([]rating.Row, rating.Scope, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	sessionsHandler    *SessionsHandler
	submitHandler      *SubmitHandler
	leaderboardHandler *LeaderboardHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		sessionsHandler:    NewSessionsHandler(deps),
		submitHandler:      NewSubmitHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to the router.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions_create"))
		r.Get("/sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleGet, "sessions_get"))
		r.Delete("/sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleDelete, "sessions_delete"))
		r.Post("/sessions/{id}/reorder", MetricsMiddleware(s.sessionsHandler.HandleReorder, "sessions_reorder"))
		r.Post("/sessions/{id}/move", MetricsMiddleware(s.sessionsHandler.HandleMove, "sessions_move"))
		r.Post("/sessions/{id}/submit", MetricsMiddleware(s.submitHandler.HandleSubmit, "sessions_submit"))
		r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	})
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

// writeDomainError translates known error kinds to their HTTP shape.
func writeDomainError(w http.ResponseWriter, err error) {
	var validation *match.ValidationError
	var status *upstream.StatusError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusUnprocessableEntity, string(validation.Reason), validation)
	case errors.Is(err, registry.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, registry.ErrFull):
		writeError(w, http.StatusServiceUnavailable, "too_many_sessions", err)
	case errors.Is(err, service.ErrSubmitInFlight):
		writeError(w, http.StatusConflict, "submit_in_flight", err)
	case errors.Is(err, service.ErrDuplicateSubmit):
		writeError(w, http.StatusConflict, "duplicate_submit", err)
	case errors.Is(err, service.ErrUnknownPhase), errors.Is(err, roster.ErrUnknownColumn):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.As(err, &status), errors.Is(err, upstream.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "submit_failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
