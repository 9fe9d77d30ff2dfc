package api

import (
	"context"
	"net/http"

	"github.com/okian/fairway/internal/domain/types"
)

// SummaryDependencies defines the interface for the landing view and catalogue.
type SummaryDependencies interface {
	Summary(ctx context.Context, userID string) (types.Summary, error)
	Catalog() types.CatalogResponse
}

// SummaryHandler handles summary and catalog requests.
type SummaryHandler struct {
	deps SummaryDependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleSummary handles GET /summary/{user_id} requests.
func (h *SummaryHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.deps.Summary(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeError(r.Context(), w, Wrap("api.summary", err))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleCatalog handles GET /catalog requests.
func (h *SummaryHandler) HandleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Catalog())
}
