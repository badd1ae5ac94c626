// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"

	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/sport"
	"github.com/okian/courtside/internal/domain/stats"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/internal/domain/zone"
	"github.com/okian/courtside/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	CreateMatch(ctx context.Context, req service.CreateRequest) (types.MatchView, error)
	GetMatch(ctx context.Context, id string) (types.MatchView, error)
	ListMatches(ctx context.Context) ([]types.MatchSummary, error)
	DeleteMatch(ctx context.Context, id string) error
	Snapshot(ctx context.Context, id string) (model.Snapshot, error)

	SelectAction(ctx context.Context, id, commandID string, sel service.Selection) (service.Outcome, error)
	CancelSelection(ctx context.Context, id, commandID string) (service.Outcome, error)
	RecordTap(ctx context.Context, id, commandID string, x, y float64) (service.Outcome, error)
	Undo(ctx context.Context, id, commandID string) (service.Outcome, error)
	AssignPlayer(ctx context.Context, id, commandID, playerID string) (service.Outcome, error)
	SkipPlayerAssignment(ctx context.Context, id, commandID string) (service.Outcome, error)
	SetPlayers(ctx context.Context, id, commandID string, players []model.Player) (service.Outcome, error)
	EndSet(ctx context.Context, id, commandID string) (service.Outcome, error)
	StartNewSet(ctx context.Context, id, commandID string) (service.Outcome, error)
	FinishMatch(ctx context.Context, id, commandID string) (service.Outcome, error)
	SwitchSides(ctx context.Context, id, commandID string) (service.Outcome, error)

	Highlights(ctx context.Context, id string) ([]zone.Rect, error)
	Replay(ctx context.Context, id string, set, index int) (types.ReplayView, error)
	Stats(ctx context.Context, id string, set int) (types.StatsView, error)
	Heatmap(ctx context.Context, id string, set, cols, rows int) (stats.Heatmap, error)
	CourtPoints(ctx context.Context, id string, set int) ([]model.Point, sport.Rules, model.TeamNames, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sportsHandler   *SportsHandler
	matchesHandler  *MatchesHandler
	commandsHandler *CommandsHandler
	queriesHandler  *QueriesHandler

	corsOrigins    []string
	rateLimitRPS   float64
	rateLimitBurst int
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sportsHandler:   NewSportsHandler(),
		matchesHandler:  NewMatchesHandler(deps),
		commandsHandler: NewCommandsHandler(deps),
		queriesHandler:  NewQueriesHandler(deps),
		corsOrigins:     []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches the middleware stack and all routes to r.
func (s *Server) Register(r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corslib.New(corslib.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", idempotencyHeader},
		ExposedHeaders: []string{"Retry-After", "Content-Disposition"},
	}).Handler)
	if s.rateLimitRPS > 0 {
		r.Use(RateLimitMiddleware(s.rateLimitRPS, s.rateLimitBurst))
	}
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	r.Get("/sports", s.sportsHandler.HandleList)
	r.Get("/sports/{sport}/actions", s.sportsHandler.HandleActions)

	r.Route("/matches", func(r chi.Router) {
		r.Get("/", s.matchesHandler.HandleList)
		r.Post("/", s.matchesHandler.HandleCreate)

		r.Route("/{matchID}", func(r chi.Router) {
			r.Get("/", s.matchesHandler.HandleGet)
			r.Delete("/", s.matchesHandler.HandleDelete)
			r.Get("/snapshot", s.matchesHandler.HandleSnapshot)

			r.Post("/select", s.commandsHandler.HandleSelect)
			r.Post("/cancel", s.commandsHandler.HandleCancel)
			r.Post("/tap", s.commandsHandler.HandleTap)
			r.Post("/undo", s.commandsHandler.HandleUndo)
			r.Put("/players", s.commandsHandler.HandleSetPlayers)
			r.Post("/players/assign", s.commandsHandler.HandleAssign)
			r.Post("/players/skip", s.commandsHandler.HandleSkip)
			r.Post("/sets/end", s.commandsHandler.HandleEndSet)
			r.Post("/sets/start", s.commandsHandler.HandleStartSet)
			r.Post("/finish", s.commandsHandler.HandleFinish)
			r.Post("/sides/switch", s.commandsHandler.HandleSwitchSides)

			r.Get("/highlights", s.queriesHandler.HandleHighlights)
			r.Get("/stats", s.queriesHandler.HandleStats)
			r.Get("/replay/{set}/{index}", s.queriesHandler.HandleReplay)
			r.Get("/heatmap", s.queriesHandler.HandleHeatmap)
			r.Get("/heatmap.png", s.queriesHandler.HandleHeatmapImage)
			r.Get("/export.xlsx", s.queriesHandler.HandleExport)
		})
	})
}

// Router returns a chi router with every route registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
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

// writeServiceError translates service sentinels into status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		status, code = http.StatusNotFound, "match_not_found"
	case errors.Is(err, service.ErrSetNotFound):
		status, code = http.StatusNotFound, "set_not_found"
	case errors.Is(err, service.ErrInvalidSport), errors.Is(err, sport.ErrUnknownSport):
		status, code = http.StatusBadRequest, "invalid_sport"
	case errors.Is(err, service.ErrInvalidTeam):
		status, code = http.StatusBadRequest, "invalid_team"
	case errors.Is(err, service.ErrInvalidPlayers):
		status, code = http.StatusBadRequest, "invalid_players"
	case errors.Is(err, ErrBadRequest):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrDuplicateMatch):
		status, code = http.StatusConflict, "duplicate_match"
	case errors.Is(err, service.ErrNotStarted):
		status, code = http.StatusServiceUnavailable, "not_started"
	}
	writeError(w, status, code, err)
}
