package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/types"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

// Match request outcomes recorded in metrics.
const (
	outcomeCreated  = "created"
	outcomeConflict = "conflict"
	outcomeAccepted = "accepted"
	outcomeDeclined = "declined"
)

// RequestMatch invites matchedID to play with requesterID. At most one
// pending or accepted request may exist between two golfers, in either
// direction.
func (s *Service) RequestMatch(ctx context.Context, requesterID, matchedID, message string) (model.MatchRequest, error) {
	store, requests, err := s.running()
	if err != nil {
		return model.MatchRequest{}, err
	}

	req := model.MatchRequest{
		ID:            uuid.NewString(),
		RequesterID:   requesterID,
		MatchedUserID: matchedID,
		Status:        model.StatusPending,
		Message:       message,
		CreatedAt:     s.now().UTC(),
	}
	if err := req.Validate(); err != nil {
		return model.MatchRequest{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	for _, id := range []string{requesterID, matchedID} {
		if _, err := store.Get(ctx, id); err != nil {
			return model.MatchRequest{}, fmt.Errorf("profile %q: %w", id, err)
		}
	}

	if err := requests.CreateRequest(ctx, req); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			metrics.RecordMatchRequest(outcomeConflict)
			return model.MatchRequest{}, fmt.Errorf("open request between %q and %q: %w", requesterID, matchedID, err)
		}
		return model.MatchRequest{}, fmt.Errorf("create match request: %w", err)
	}

	metrics.RecordMatchRequest(outcomeCreated)
	s.logger.Debug(ctx, "match request created",
		logger.String("requestID", req.ID),
		logger.String("requesterID", requesterID),
		logger.String("matchedUserID", matchedID),
	)
	return req, nil
}

// RespondMatch accepts or declines a pending request. Only the invited
// golfer may respond.
func (s *Service) RespondMatch(ctx context.Context, requestID, responderID string, accept bool) (model.MatchRequest, error) {
	_, requests, err := s.running()
	if err != nil {
		return model.MatchRequest{}, err
	}

	req, err := requests.GetRequest(ctx, requestID)
	if err != nil {
		return model.MatchRequest{}, err
	}
	if req.MatchedUserID != responderID {
		return model.MatchRequest{}, fmt.Errorf("%w: only the invited golfer may respond", ErrForbidden)
	}
	if req.Status != model.StatusPending {
		return model.MatchRequest{}, fmt.Errorf("%w: request is %s", ErrNotPending, req.Status)
	}

	to, outcome := model.StatusDeclined, outcomeDeclined
	if accept {
		to, outcome = model.StatusAccepted, outcomeAccepted
	}
	updated, err := requests.UpdateStatus(ctx, requestID, model.StatusPending, to, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return model.MatchRequest{}, fmt.Errorf("%w: request is %s", ErrNotPending, updated.Status)
		}
		return model.MatchRequest{}, fmt.Errorf("update match request: %w", err)
	}

	metrics.RecordMatchRequest(outcome)
	return updated, nil
}

// Requests returns the request board of userID.
func (s *Service) Requests(ctx context.Context, userID string) (types.RequestBoard, error) {
	_, requests, err := s.running()
	if err != nil {
		return types.RequestBoard{}, err
	}
	if userID == "" {
		return types.RequestBoard{}, fmt.Errorf("%w: user id is required", ErrBadRequest)
	}

	filters := []repository.RequestFilter{
		{UserID: userID, Role: repository.RoleRecipient, Status: model.StatusPending},
		{UserID: userID, Role: repository.RoleRequester, Status: model.StatusPending},
		{UserID: userID, Role: repository.RoleEither, Status: model.StatusAccepted, Limit: s.acceptedLimit},
	}
	lists := make([][]model.MatchRequest, len(filters))
	for i, f := range filters {
		list, err := requests.ListRequests(ctx, f)
		if err != nil {
			return types.RequestBoard{}, fmt.Errorf("list match requests: %w", err)
		}
		lists[i] = orEmpty(list)
	}

	return types.RequestBoard{Incoming: lists[0], Outgoing: lists[1], Accepted: lists[2]}, nil
}

func orEmpty(list []model.MatchRequest) []model.MatchRequest {
	if list == nil {
		return []model.MatchRequest{}
	}
	return list
}
