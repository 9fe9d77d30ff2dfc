package api

import (
	"context"
	"net/http"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/types"
)

// RequestDependencies defines the interface for the match request workflow.
type RequestDependencies interface {
	RequestMatch(ctx context.Context, requesterID, matchedID, message string) (model.MatchRequest, error)
	RespondMatch(ctx context.Context, requestID, responderID string, accept bool) (model.MatchRequest, error)
	Requests(ctx context.Context, userID string) (types.RequestBoard, error)
}

// RequestsHandler handles match request requests.
type RequestsHandler struct {
	deps RequestDependencies
}

// NewRequestsHandler creates a new match requests handler.
func NewRequestsHandler(deps RequestDependencies) *RequestsHandler {
	return &RequestsHandler{deps: deps}
}

type createRequest struct {
	RequesterID   string `json:"requester_id"`
	MatchedUserID string `json:"matched_user_id"`
	Message       string `json:"message"`
}

type respondRequest struct {
	ResponderID string `json:"responder_id"`
}

// HandleCreate handles POST /match-requests requests.
func (h *RequestsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_match_request"

	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}

	created, err := h.deps.RequestMatch(r.Context(), req.RequesterID, req.MatchedUserID, req.Message)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleAccept handles POST /match-requests/{id}/accept requests.
func (h *RequestsHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "api.accept_match_request", true)
}

// HandleDecline handles POST /match-requests/{id}/decline requests.
func (h *RequestsHandler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "api.decline_match_request", false)
}

func (h *RequestsHandler) respond(w http.ResponseWriter, r *http.Request, op string, accept bool) {
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.ResponderID == "" {
		writeError(r.Context(), w, NewKind(op, ErrMissingResponder))
		return
	}

	updated, err := h.deps.RespondMatch(r.Context(), r.PathValue("id"), req.ResponderID, accept)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleList handles GET /match-requests?user_id= requests.
func (h *RequestsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_match_requests"

	board, err := h.deps.Requests(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, board)
}
