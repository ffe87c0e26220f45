// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/pokedex/internal/adapters/http/middleware"
	"github.com/okian/pokedex/internal/adapters/repository"
	service "github.com/okian/pokedex/internal/app"
	"github.com/okian/pokedex/internal/domain/model"
	"github.com/okian/pokedex/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreatureDependencies
	UserDependencies

	// Healthy reports whether the backing store answers.
	Healthy(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	log             logger.Logger
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	creatureHandler *CreatureHandler
	userHandler     *UserHandler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for failed requests.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.creatureHandler = NewCreatureHandler(deps, s.log)
	s.userHandler = NewUserHandler(deps, s.log)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("api: nil mux")
	}
	m := middleware.Metrics

	mux.HandleFunc("GET /healthz", m(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /stats", m(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/pokemons", m(s.creatureHandler.HandleList, "api_pokemons_list"))
	mux.HandleFunc("POST /api/pokemons", m(s.creatureHandler.HandleCreate, "api_pokemons_create"))
	mux.HandleFunc("GET /api/pokemons/{name}", m(s.creatureHandler.HandleGet, "api_pokemons_get"))
	mux.HandleFunc("PATCH /api/pokemons/{name}", m(s.creatureHandler.HandleUpdate, "api_pokemons_update"))
	mux.HandleFunc("DELETE /api/pokemons/{name}", m(s.creatureHandler.HandleDelete, "api_pokemons_delete"))
	mux.HandleFunc("POST /api/users", m(s.userHandler.HandleCreate, "api_users_create"))

	// Anything else under /api/ answers in the envelope rather than HTML.
	mux.HandleFunc("/api/", m(handleUnknownRoute, "api_unknown"))
}

const (
	messageSuccess = "success"
	messageFailure = "failure"
)

// envelope is the body of every /api response.
type envelope struct {
	Message string `json:"message"`
	Payload any    `json:"payload"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, envelope{Message: messageSuccess, Payload: payload})
}

// writeFailure maps err to a status code and logs it. Server-side failures
// are reported with a generic payload so driver details stay out of responses.
func writeFailure(ctx context.Context, w http.ResponseWriter, l logger.Logger, err error) {
	status := statusFor(err)
	payload := err.Error()
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "api request failed", logger.Int("status", status), logger.Error(err))
		payload = http.StatusText(status)
	} else {
		l.Warn(ctx, "api request rejected", logger.Int("status", status), logger.Error(err))
	}
	writeJSON(w, status, envelope{Message: messageFailure, Payload: payload})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, ErrRouteNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads exactly one JSON object from the request body into dst.
func decodeJSON(op string, r *http.Request, w http.ResponseWriter, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return NewKind(op, fmt.Errorf("%w: empty body", ErrBadRequest))
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	if dec.More() {
		return NewKind(op, fmt.Errorf("%w: trailing data after JSON object", ErrBadRequest))
	}
	return nil
}

func handleUnknownRoute(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, envelope{
		Message: messageFailure,
		Payload: NewKind(r.Method+" "+r.URL.Path, ErrRouteNotFound).Error(),
	})
}
