package repository

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/metrics"
)

// TreapStore is an in-memory ProfileStore.
//
// Ordering: trust DESC, then id ASC. "less" means listed earlier, so an
// in-order traversal yields the candidate order used by discovery.

// trustScale controls fixed-point scaling of trust scores.
const trustScale = 1_000_000_000

type trustFP int64

func toFixedPoint(x float64) trustFP {
	switch {
	case math.IsNaN(x):
		return 0
	case x*trustScale >= math.MaxInt64:
		return trustFP(math.MaxInt64)
	case x*trustScale <= math.MinInt64:
		return trustFP(math.MinInt64)
	}
	return trustFP(math.Round(x * trustScale))
}

// Snapshot is a periodically published summary of the store.
type Snapshot struct {
	Total   int
	BySkill map[model.SkillLevel]int
	TakenAt time.Time
}

type node struct {
	id    string
	trust trustFP
	prio  uint64
	left  *node
	right *node
}

type record struct {
	trust   trustFP
	profile model.Profile
}

func less(aTrust trustFP, aID string, bTrust trustFP, bID string) bool {
	if aTrust != bTrust {
		return aTrust > bTrust
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	return y
}

func insert(n *node, id string, trust trustFP) *node {
	if n == nil {
		return &node{id: id, trust: trust, prio: rand.Uint64()}
	}
	if less(trust, id, n.trust, n.id) {
		n.left = insert(n.left, id, trust)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, trust)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	return n
}

func deleteNode(n *node, id string, trust trustFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case trust == n.trust && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, trust)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, trust)
		}
	case less(trust, id, n.trust, n.id):
		n.left = deleteNode(n.left, id, trust)
	default:
		n.right = deleteNode(n.right, id, trust)
	}
	return n
}

// walk visits nodes in order until visit returns false.
func walk(n *node, visit func(id string) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, visit) {
		return false
	}
	if !visit(n.id) {
		return false
	}
	return walk(n.right, visit)
}

type TreapStore struct {
	mu               sync.RWMutex
	root             *node
	byID             map[string]record
	snapshotInterval time.Duration

	snapshot atomic.Pointer[Snapshot]

	wg        sync.WaitGroup
	stopChan  chan struct{}
	closeOnce sync.Once
}

// NewTreapStore constructs a treap store and starts its snapshot loop.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		snapshotInterval: 5 * time.Second,
		byID:             make(map[string]record),
		stopChan:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.publishSnapshot()
	s.startPeriodicSnapshots(ctx)
	return s
}

func (s *TreapStore) startPeriodicSnapshots(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.snapshotInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.publishSnapshot()
			}
		}
	}()
}

func (s *TreapStore) publishSnapshot() {
	start := time.Now()
	s.mu.RLock()
	snap := &Snapshot{
		Total:   len(s.byID),
		BySkill: make(map[model.SkillLevel]int),
		TakenAt: start,
	}
	for _, rec := range s.byID {
		snap.BySkill[rec.profile.SkillLevel]++
	}
	s.mu.RUnlock()

	s.snapshot.Store(snap)
	metrics.UpdateProfilesTotal(snap.Total)
	metrics.RecordRepositorySnapshot(time.Since(start))
}

// Snapshot returns the most recently published summary.
func (s *TreapStore) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Close stops the snapshot loop. It is safe to call more than once.
func (s *TreapStore) Close() error {
	s.closeOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Upsert implements ProfileStore.Upsert in O(log n) expected time.
func (s *TreapStore) Upsert(_ context.Context, p model.Profile) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if p.ID == "" {
		return false, ErrInvalidID
	}
	trust := toFixedPoint(p.TrustScore)

	s.mu.Lock()
	old, exists := s.byID[p.ID]
	if exists {
		s.root = deleteNode(s.root, p.ID, old.trust)
	}
	s.byID[p.ID] = record{trust: trust, profile: p.Clone()}
	s.root = insert(s.root, p.ID, trust)
	total := len(s.byID)
	s.mu.Unlock()

	if !exists {
		metrics.UpdateProfilesTotal(total)
	}
	return !exists, nil
}

// Get returns a copy of the stored profile.
func (s *TreapStore) Get(_ context.Context, id string) (model.Profile, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	rec, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Profile{}, ErrNotFound
	}
	return rec.profile.Clone(), nil
}

// List walks the treap in order, copying profiles that pass f.
func (s *TreapStore) List(_ context.Context, f Filter) ([]model.Profile, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if f.Limit < 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Profile, 0, len(s.byID))
	walk(s.root, func(id string) bool {
		rec := s.byID[id]
		if f.matches(&rec.profile) {
			out = append(out, rec.profile.Clone())
		}
		return f.Limit == 0 || len(out) < f.Limit
	})
	return out, nil
}

// Count returns the number of stored profiles.
func (s *TreapStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}
