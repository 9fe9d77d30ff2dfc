package service

import (
	"errors"

	"github.com/okian/fairway/internal/adapters/repository"
)

// Service errors. Callers match them with errors.Is.
var (
	ErrNotFound      = repository.ErrNotFound
	ErrAlreadyExists = repository.ErrAlreadyExists
	ErrBadRequest    = errors.New("bad request")
	ErrForbidden     = errors.New("forbidden")
	ErrNotPending    = errors.New("match request is no longer pending")
	ErrBackpressure  = errors.New("ingestion queue is full")
	ErrNotStarted    = errors.New("service is not running")
)
