package worker

import (
	"time"

	"github.com/okian/fairway/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithClock replaces time.Now for UpdatedAt stamping.
func WithClock(now func() time.Time) Option {
	return func(w *InMemoryWorker) {
		if now != nil {
			w.now = now
		}
	}
}

// WithRejectHook is called for every update that is not applied.
func WithRejectHook(fn RejectFunc) Option {
	return func(w *InMemoryWorker) {
		w.reject = fn
	}
}
