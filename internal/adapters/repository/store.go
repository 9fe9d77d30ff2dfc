// Package repository stores golfer profiles and match requests.
package repository

import (
	"context"
	"time"

	"github.com/okian/fairway/internal/domain/model"
)

// Filter narrows a profile listing.
type Filter struct {
	// ExcludeID drops one profile, normally the requesting golfer.
	ExcludeID string
	// SkillLevel keeps only profiles at this level when set.
	SkillLevel model.SkillLevel
	// RequireSkill drops profiles that have no skill level.
	RequireSkill bool
	// Limit caps the result; 0 means no cap.
	Limit int
}

// ProfileStore provides read/write access to golfer profiles.
type ProfileStore interface {
	// Upsert replaces the whole record for p.ID. created is true when the
	// profile did not exist before.
	Upsert(ctx context.Context, p model.Profile) (created bool, err error)

	// Get returns ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (model.Profile, error)

	// List returns profiles ordered by trust score desc, then id asc.
	List(ctx context.Context, f Filter) ([]model.Profile, error)

	Count(ctx context.Context) (int, error)
}

// Role selects which side of a match request a user must be on.
type Role string

// Roles.
const (
	RoleEither    Role = ""
	RoleRequester Role = "requester"
	RoleRecipient Role = "recipient"
)

// RequestFilter narrows a match request listing.
type RequestFilter struct {
	UserID string
	Role   Role
	// Status keeps only requests in this state when set.
	Status model.RequestStatus
	// Limit caps the result; 0 means no cap.
	Limit int
}

// MatchStore persists match requests.
type MatchStore interface {
	// CreateRequest stores req. It returns ErrAlreadyExists when the id is
	// taken or the pair already has a pending or accepted request.
	CreateRequest(ctx context.Context, req model.MatchRequest) error

	// GetRequest returns ErrNotFound for an unknown id.
	GetRequest(ctx context.Context, id string) (model.MatchRequest, error)

	// UpdateStatus moves a request from one status to another. It returns
	// ErrStaleStatus when the stored status is not from.
	UpdateStatus(ctx context.Context, id string, from, to model.RequestStatus, at time.Time) (model.MatchRequest, error)

	// ListRequests returns matching requests, newest first.
	ListRequests(ctx context.Context, f RequestFilter) ([]model.MatchRequest, error)

	CountRequests(ctx context.Context) (int, error)
}

// IsOpen reports whether a request still blocks a new one between the same pair.
func IsOpen(status model.RequestStatus) bool {
	return status == model.StatusPending || status == model.StatusAccepted
}

func (f RequestFilter) matches(r *model.MatchRequest) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	switch f.Role {
	case RoleRequester:
		return r.RequesterID == f.UserID
	case RoleRecipient:
		return r.MatchedUserID == f.UserID
	default:
		return f.UserID == "" || r.Involves(f.UserID)
	}
}

func (f Filter) matches(p *model.Profile) bool {
	if f.ExcludeID != "" && p.ID == f.ExcludeID {
		return false
	}
	if f.RequireSkill && p.SkillLevel == "" {
		return false
	}
	return f.SkillLevel == "" || p.SkillLevel == f.SkillLevel
}
