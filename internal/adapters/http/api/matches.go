package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/types"
)

// MatchDependencies defines the interface for candidate ranking.
type MatchDependencies interface {
	Discover(ctx context.Context, userID string, q service.DiscoverQuery) (types.DiscoverResult, error)
	Compatibility(ctx context.Context, selfID, otherID string) (types.PairResult, error)
}

// MatchesHandler handles discovery and pair scoring requests.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// HandleDiscover handles GET /matches/{user_id}?skill=&interest=&limit=&active= requests.
func (h *MatchesHandler) HandleDiscover(w http.ResponseWriter, r *http.Request) {
	const op = "api.discover"

	query := r.URL.Query()
	limit, err := intParam(query, "limit")
	if err != nil {
		writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	active, err := intParam(query, "active")
	if err != nil {
		writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Discover(r.Context(), r.PathValue("user_id"), service.DiscoverQuery{
		Skill:    model.SkillLevel(query.Get("skill")),
		Interest: query.Get("interest"),
		Limit:    limit,
		Active:   active,
	})
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleCompatibility handles GET /compatibility?self=&other= requests.
func (h *MatchesHandler) HandleCompatibility(w http.ResponseWriter, r *http.Request) {
	const op = "api.compatibility"

	query := r.URL.Query()
	res, err := h.deps.Compatibility(r.Context(), query.Get("self"), query.Get("other"))
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// intParam parses an optional integer query parameter; absent means 0.
func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}
