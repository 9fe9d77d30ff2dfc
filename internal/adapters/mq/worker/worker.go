// Package worker applies queued profile updates to the profile store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Update is what workers read off the queue.
type Update = model.ProfileUpdate

// Applier persists a validated profile.
type Applier interface {
	Upsert(ctx context.Context, p model.Profile) (created bool, err error)
}

// Queue defines how workers receive updates.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Update
}

// RejectFunc is called when an update cannot be applied.
type RejectFunc func(ctx context.Context, u Update, err error)

// ErrInvalidProfile marks updates that failed validation.
var ErrInvalidProfile = errors.New("invalid profile")

// Worker processes updates until its queue closes or it is shut down.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	applier Applier
	name    string
	now     func() time.Time
	reject  RejectFunc

	applied  *atomic.Int64
	rejected *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(queue Queue, applier Applier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		applier:  applier,
		name:     "worker",
		now:      time.Now,
		applied:  &atomic.Int64{},
		rejected: &atomic.Int64{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	updates := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, u); err != nil {
				w.logger.Warn(ctx, "profile update not applied",
					logger.String("update_id", u.UpdateID),
					logger.String("profile_id", u.Profile.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker after its current update.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process validates u, stamps UpdatedAt and writes the profile.
func (w *InMemoryWorker) process(ctx context.Context, u Update) error { //nolint:gocritic // hugeParam: received by value from the channel
	metrics.AddWorkerActive(1)
	start := time.Now()
	defer func() {
		metrics.AddWorkerActive(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	p := u.Profile
	if err := p.Validate(); err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidProfile, err)
		w.fail(ctx, u, "invalid", err)
		return err
	}
	p.UpdatedAt = w.now().UTC()

	created, err := w.applier.Upsert(ctx, p)
	if err != nil {
		err = fmt.Errorf("store profile %s: %w", p.ID, err)
		w.fail(ctx, u, "store_error", err)
		return err
	}

	w.applied.Add(1)
	metrics.RecordProfileUpdateApplied()
	if !u.SubmittedAt.IsZero() {
		metrics.RecordProfileApplyLatency(float64(time.Since(u.SubmittedAt).Microseconds()) / 1000)
	}
	w.logger.Debug(ctx, "profile applied",
		logger.String("profile_id", p.ID),
		logger.Bool("created", created),
	)
	return nil
}

func (w *InMemoryWorker) fail(ctx context.Context, u Update, reason string, err error) { //nolint:gocritic // hugeParam
	w.rejected.Add(1)
	metrics.RecordWorkerError()
	metrics.RecordProfileUpdateRejected(reason)
	metrics.RecordErrorByComponent("worker", reason)
	if w.reject != nil {
		w.reject(ctx, u, err)
	}
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	applied  atomic.Int64
	rejected atomic.Int64

	logger logger.Logger
}

// NewPool creates workerCount workers. workerCount < 1 uses runtime.NumCPU().
// opts are applied to every worker.
func NewPool(workerCount int, queue Queue, applier Applier, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(queue, applier, workerOpts...)
		w.applied = &p.applied
		w.rejected = &p.rejected
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Applied returns how many updates were written to the store.
func (p *Pool) Applied() int64 { return p.applied.Load() }

// Rejected returns how many updates failed validation or storage.
func (p *Pool) Rejected() int64 { return p.rejected.Load() }

// Shutdown closes the queue, lets workers drain what is left and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut++
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			w.shutdownOnce.Do(func() { close(w.shutdown) })
		}
	}
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not drain: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
