package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrInvalidID     = errors.New("record id must not be empty")
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrStaleStatus   = errors.New("request status changed")
)
