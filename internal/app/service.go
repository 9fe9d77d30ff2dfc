// Package service provides the matchmaking service behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fairway/internal/adapters/mq/queue"
	"github.com/okian/fairway/internal/adapters/mq/worker"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/dedupe"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/types"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

// Submission outcomes reported in types.SubmitResult.
const (
	StatusAccepted  = "accepted"
	StatusDuplicate = "duplicate"
)

const systemStatsInterval = 15 * time.Second

// Service implements the API dependencies for golf partner matching.
type Service struct {
	mu sync.RWMutex

	// Core components
	profiles repository.ProfileStore
	requests repository.MatchStore
	deduper  dedupe.Deduper
	queue    queue.Queue
	pool     *worker.Pool

	// Configuration
	workerCount        int
	queueSize          int
	dedupeSize         int
	maxMatchLimit      int
	defaultMatchLimit  int
	rankingConcurrency int
	acceptedLimit      int
	now                func() time.Time

	// ownsStores is set when Start created the stores and Stop must close them.
	ownsProfiles bool
	ownsRequests bool

	// State
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the ingestion queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many update ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxMatchLimit caps the candidate list length of Discover.
func WithMaxMatchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxMatchLimit = n
		}
	}
}

// WithDefaultMatchLimit sets the candidate list length when none is asked for.
func WithDefaultMatchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultMatchLimit = n
		}
	}
}

// WithRankingConcurrency bounds concurrent scoring within one Discover call.
func WithRankingConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.rankingConcurrency = n
		}
	}
}

// WithAcceptedLimit caps the accepted list of Requests.
func WithAcceptedLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.acceptedLimit = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProfileStore replaces the default in-memory profile store.
func WithProfileStore(store repository.ProfileStore) Option {
	return func(s *Service) {
		if store != nil {
			s.profiles = store
		}
	}
}

// WithMatchStore replaces the default in-memory match request store.
func WithMatchStore(store repository.MatchStore) Option {
	return func(s *Service) {
		if store != nil {
			s.requests = store
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        runtime.NumCPU(),
		queueSize:          10_000,
		dedupeSize:         50_000,
		maxMatchLimit:      100,
		defaultMatchLimit:  20,
		rankingConcurrency: runtime.NumCPU() * 4,
		acceptedLimit:      10,
		now:                time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.defaultMatchLimit > s.maxMatchLimit {
		s.defaultMatchLimit = s.maxMatchLimit
	}
	return s
}

// Start initializes the stores and the ingestion pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting matchmaking service...")

	// Workers must keep draining after the caller's context is cancelled,
	// so they run on a context only Stop cancels.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})

	if s.profiles == nil {
		s.profiles = repository.NewTreapStore(runCtx)
		s.ownsProfiles = true
		s.logger.Info(ctx, "using treap profile store")
	}
	if s.requests == nil {
		s.requests = repository.NewMemoryMatchStore()
		s.ownsRequests = true
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.profiles,
		worker.WithClock(s.now),
		worker.WithRejectHook(func(ctx context.Context, u worker.Update, _ error) {
			// A rejected update may be corrected and resent under the same id.
			s.deduper.Unrecord(ctx, u.UpdateID)
		}),
	)
	s.pool.Start(runCtx)

	go s.collectSystemStats(runCtx)

	s.started = true
	s.logger.Info(ctx, "matchmaking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

func (s *Service) collectSystemStats(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(systemStatsInterval)
	defer ticker.Stop()

	metrics.CollectSystemStats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.CollectSystemStats()
		}
	}
}

// Stop drains the ingestion queue and releases the stores the service created.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping matchmaking service...")

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain workers: %w", err))
	}

	s.cancel()
	<-s.done

	if s.ownsProfiles {
		if err := closeStore(s.profiles); err != nil {
			errs = append(errs, fmt.Errorf("close profile store: %w", err))
		}
		s.profiles = nil
		s.ownsProfiles = false
	}
	if s.ownsRequests {
		if err := closeStore(s.requests); err != nil {
			errs = append(errs, fmt.Errorf("close match store: %w", err))
		}
		s.requests = nil
		s.ownsRequests = false
	}

	s.started = false
	s.logger.Info(ctx, "matchmaking service stopped")
	return errors.Join(errs...)
}

func closeStore(store any) error {
	if closer, ok := store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// running returns the stores, or ErrNotStarted.
func (s *Service) running() (repository.ProfileStore, repository.MatchStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.profiles, s.requests, nil
}

// SubmitProfile validates p and queues it for asynchronous upsert. An empty
// updateID gets a fresh one. Resubmitting a known updateID is a no-op that
// reports StatusDuplicate.
func (s *Service) SubmitProfile(ctx context.Context, updateID string, p model.Profile) (types.SubmitResult, error) { //nolint:gocritic // hugeParam: stored by value
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.SubmitResult{}, ErrNotStarted
	}

	metrics.RecordProfileUpdateReceived()
	if err := p.Validate(); err != nil {
		metrics.RecordProfileUpdateRejected("validation")
		return types.SubmitResult{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if updateID == "" {
		updateID = uuid.NewString()
	}
	result := types.SubmitResult{UpdateID: updateID, ProfileID: p.ID, Status: StatusAccepted}

	if s.deduper.SeenAndRecord(ctx, updateID) {
		metrics.RecordProfileUpdateDuplicate()
		s.logger.Debug(ctx, "duplicate profile update, skipping",
			logger.String("updateID", updateID),
			logger.String("profileID", p.ID),
		)
		result.Status = StatusDuplicate
		return result, nil
	}

	err := s.queue.Enqueue(ctx, queue.Update{UpdateID: updateID, Profile: p.Clone(), SubmittedAt: s.now().UTC()})
	if err != nil {
		s.deduper.Unrecord(ctx, updateID)
		switch {
		case errors.Is(err, queue.ErrFull):
			return types.SubmitResult{}, ErrBackpressure
		case errors.Is(err, queue.ErrClosed):
			return types.SubmitResult{}, ErrNotStarted
		default:
			return types.SubmitResult{}, err
		}
	}
	return result, nil
}

// Seed upserts profiles synchronously, bypassing the queue. Invalid profiles
// are skipped and reported in the returned error.
func (s *Service) Seed(ctx context.Context, profiles []model.Profile) (int, error) {
	store, _, err := s.running()
	if err != nil {
		return 0, err
	}

	var (
		applied int
		errs    []error
	)
	for i := range profiles {
		p := profiles[i].Clone()
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("profile %q: %w", p.ID, err))
			continue
		}
		p.UpdatedAt = s.now().UTC()
		if _, err := store.Upsert(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("profile %q: %w", p.ID, err))
			continue
		}
		applied++
	}
	s.logger.Info(ctx, "seeded profiles", logger.Int("applied", applied), logger.Int("failed", len(errs)))
	return applied, errors.Join(errs...)
}

// Profile returns the stored profile for id.
func (s *Service) Profile(ctx context.Context, id string) (model.Profile, error) {
	store, _, err := s.running()
	if err != nil {
		return model.Profile{}, err
	}
	return store.Get(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"maxMatchLimit": s.maxMatchLimit,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()
		stats["updatesApplied"] = s.pool.Applied()
		stats["updatesRejected"] = s.pool.Rejected()
		metrics.UpdateQueueSize(queueLen)

		if n, err := s.profiles.Count(ctx); err == nil {
			stats["totalProfiles"] = n
			metrics.UpdateProfilesTotal(n)
		}
		if n, err := s.requests.CountRequests(ctx); err == nil {
			stats["totalMatchRequests"] = n
			metrics.UpdateMatchRequestsTotal(n)
		}
	}

	return stats
}
