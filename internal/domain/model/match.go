package model

import "time"

// RequestStatus is the lifecycle state of a match request.
type RequestStatus string

// Request statuses. A request starts pending and moves to exactly one of
// accepted or declined.
const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusDeclined RequestStatus = "declined"
)

// MatchRequest is an invitation from one golfer to another to pair up.
type MatchRequest struct {
	ID            string        `json:"id"`
	RequesterID   string        `json:"requester_id" validate:"required,max=64"`
	MatchedUserID string        `json:"matched_user_id" validate:"required,max=64,nefield=RequesterID"`
	Status        RequestStatus `json:"status"`
	Message       string        `json:"message,omitempty" validate:"max=280"`
	CreatedAt     time.Time     `json:"created_at"`
	RespondedAt   *time.Time    `json:"responded_at,omitempty"`
}

// Validate checks the request participants and message length.
func (m *MatchRequest) Validate() error {
	return validate.Struct(m)
}

// Involves reports whether userID is either side of the request.
func (m *MatchRequest) Involves(userID string) bool {
	return m.RequesterID == userID || m.MatchedUserID == userID
}

// Between reports whether the request connects a and b in either direction.
func (m *MatchRequest) Between(a, b string) bool {
	return (m.RequesterID == a && m.MatchedUserID == b) ||
		(m.RequesterID == b && m.MatchedUserID == a)
}
