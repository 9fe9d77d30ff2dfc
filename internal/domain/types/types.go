// Package types contains read shapes shared by the service and HTTP layers.
package types

import (
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/scoring"
)

// Candidate is a profile ranked against the requesting golfer.
type Candidate struct {
	Rank          int                   `json:"rank"`
	Profile       model.Profile         `json:"profile"`
	Compatibility scoring.Compatibility `json:"compatibility"`
}

// Spotlight is the candidate currently featured, with its strongest factors.
type Spotlight struct {
	Candidate
	Highlights []scoring.FactorScore `json:"highlights"`
}

// DiscoverResult is the ranked candidate list for one golfer.
type DiscoverResult struct {
	UserID     string      `json:"user_id"`
	Total      int         `json:"total"`
	Spotlight  *Spotlight  `json:"spotlight,omitempty"`
	Candidates []Candidate `json:"candidates"`
	Interests  []string    `json:"interests"`
}

// RequestBoard groups a golfer's match requests by direction and state.
type RequestBoard struct {
	Incoming []model.MatchRequest `json:"incoming"`
	Outgoing []model.MatchRequest `json:"outgoing"`
	Accepted []model.MatchRequest `json:"accepted"`
}

// Summary is the landing view for a golfer.
type Summary struct {
	Profile          model.Profile        `json:"profile"`
	PendingOutgoing  []model.MatchRequest `json:"pending_outgoing"`
	IncomingRequests int                  `json:"incoming_requests"`
	TopMatch         *Candidate           `json:"top_match,omitempty"`
}

// FactorInfo describes a scoring factor for display.
type FactorInfo struct {
	Factor scoring.Factor `json:"factor"`
	Label  string         `json:"label"`
	Weight float64        `json:"weight"`
}

// CatalogResponse is the profile option catalog plus factor metadata.
type CatalogResponse struct {
	model.Catalog
	Factors []FactorInfo `json:"factors"`
}

// PairResult is the compatibility of one golfer with another.
type PairResult struct {
	SelfID    string                `json:"self_id"`
	OtherID   string                `json:"other_id"`
	Score     int                   `json:"score"`
	Breakdown []scoring.FactorScore `json:"breakdown"`
}

// SubmitResult acknowledges a profile submission.
type SubmitResult struct {
	UpdateID  string `json:"update_id"`
	ProfileID string `json:"profile_id"`
	Status    string `json:"status"` // "accepted" or "duplicate"
}
