package api

import (
	"context"
	"net/http"

	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/types"
)

// ProfileDependencies defines the interface for profile ingestion and reads.
type ProfileDependencies interface {
	SubmitProfile(ctx context.Context, updateID string, p model.Profile) (types.SubmitResult, error)
	Profile(ctx context.Context, id string) (model.Profile, error)
}

// ProfilesHandler handles profile requests.
type ProfilesHandler struct {
	deps ProfileDependencies
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(deps ProfileDependencies) *ProfilesHandler {
	return &ProfilesHandler{deps: deps}
}

// submitRequest mirrors the OpenAPI schema for POST /profiles.
type submitRequest struct {
	UpdateID string        `json:"update_id"`
	Profile  model.Profile `json:"profile"`
}

// HandleSubmit handles POST /profiles requests. The update is applied
// asynchronously; 202 means it was queued, 200 that it was seen before.
func (h *ProfilesHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_profile"

	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.SubmitProfile(r.Context(), req.UpdateID, req.Profile)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}

	status := http.StatusAccepted
	if res.Status == service.StatusDuplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

// HandleGet handles GET /profiles/{id} requests.
func (h *ProfilesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"

	p, err := h.deps.Profile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
