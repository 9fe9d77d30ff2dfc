package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/metrics"
)

// MemoryMatchStore is an in-memory MatchStore.
type MemoryMatchStore struct {
	mu    sync.RWMutex
	byID  map[string]model.MatchRequest
	order []string // insertion order
}

// NewMemoryMatchStore returns an empty store.
func NewMemoryMatchStore() *MemoryMatchStore {
	return &MemoryMatchStore{byID: make(map[string]model.MatchRequest)}
}

func (s *MemoryMatchStore) CreateRequest(_ context.Context, req model.MatchRequest) error {
	if req.ID == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[req.ID]; ok {
		return ErrAlreadyExists
	}
	for _, existing := range s.byID {
		if IsOpen(existing.Status) && existing.Between(req.RequesterID, req.MatchedUserID) {
			return ErrAlreadyExists
		}
	}
	s.byID[req.ID] = req
	s.order = append(s.order, req.ID)
	metrics.UpdateMatchRequestsTotal(len(s.byID))
	return nil
}

func (s *MemoryMatchStore) GetRequest(_ context.Context, id string) (model.MatchRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.byID[id]
	if !ok {
		return model.MatchRequest{}, ErrNotFound
	}
	return req, nil
}

func (s *MemoryMatchStore) UpdateStatus(_ context.Context, id string, from, to model.RequestStatus, at time.Time) (model.MatchRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.byID[id]
	if !ok {
		return model.MatchRequest{}, ErrNotFound
	}
	if req.Status != from {
		return req, ErrStaleStatus
	}
	req.Status = to
	req.RespondedAt = &at
	s.byID[id] = req
	return req, nil
}

func (s *MemoryMatchStore) ListRequests(_ context.Context, f RequestFilter) ([]model.MatchRequest, error) {
	if f.Limit < 0 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	out := make([]model.MatchRequest, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		req := s.byID[s.order[i]]
		if f.matches(&req) {
			out = append(out, req)
		}
	}
	s.mu.RUnlock()

	// Reverse insertion order breaks CreatedAt ties.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryMatchStore) CountRequests(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}
