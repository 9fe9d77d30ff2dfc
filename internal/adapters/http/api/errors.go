package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/fairway/internal/app"
)

// Sentinel kinds for API errors. They alias the service errors so a handler
// and the service layer report the same kind.
var (
	ErrBadRequest   = service.ErrBadRequest
	ErrBackpressure = service.ErrBackpressure

	ErrMissingResponder = fmt.Errorf("%w: responder_id is required", ErrBadRequest)
)

// Error tags an underlying error with the handler operation that saw it.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Kind != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap tags err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind tags err with op and classifies it as kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify maps an error to its HTTP status and response code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrNotPending):
		return http.StatusConflict, "not_pending"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
