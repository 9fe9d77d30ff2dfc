// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/fairway/pkg/logger"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ProfileDependencies
	MatchDependencies
	RequestDependencies
	SummaryDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	profilesHandler *ProfilesHandler
	matchesHandler  *MatchesHandler
	requestsHandler *RequestsHandler
	summaryHandler  *SummaryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		profilesHandler: NewProfilesHandler(deps),
		matchesHandler:  NewMatchesHandler(deps),
		requestsHandler: NewRequestsHandler(deps),
		summaryHandler:  NewSummaryHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /profiles", MetricsMiddleware(s.profilesHandler.HandleSubmit, "profiles"))
	mux.HandleFunc("GET /profiles/{id}", MetricsMiddleware(s.profilesHandler.HandleGet, "profile"))

	mux.HandleFunc("GET /matches/{user_id}", MetricsMiddleware(s.matchesHandler.HandleDiscover, "matches"))
	mux.HandleFunc("GET /compatibility", MetricsMiddleware(s.matchesHandler.HandleCompatibility, "compatibility"))

	mux.HandleFunc("POST /match-requests", MetricsMiddleware(s.requestsHandler.HandleCreate, "match_requests"))
	mux.HandleFunc("GET /match-requests", MetricsMiddleware(s.requestsHandler.HandleList, "match_requests"))
	mux.HandleFunc("POST /match-requests/{id}/accept", MetricsMiddleware(s.requestsHandler.HandleAccept, "match_request_respond"))
	mux.HandleFunc("POST /match-requests/{id}/decline", MetricsMiddleware(s.requestsHandler.HandleDecline, "match_request_respond"))

	mux.HandleFunc("GET /summary/{user_id}", MetricsMiddleware(s.summaryHandler.HandleSummary, "summary"))
	mux.HandleFunc("GET /catalog", MetricsMiddleware(s.summaryHandler.HandleCatalog, "catalog"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError replies with the status that matches err's kind.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := classify(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(ctx, "request failed", logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a single JSON document from the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
