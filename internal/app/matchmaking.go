package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/scoring"
	"github.com/okian/fairway/internal/domain/types"
	"github.com/okian/fairway/pkg/metrics"
)

const (
	spotlightHighlights = 4
	summaryPendingLimit = 3
)

// DiscoverQuery narrows and pages a Discover call.
type DiscoverQuery struct {
	// Skill keeps only candidates at this level when set.
	Skill model.SkillLevel
	// Interest keeps only candidates listing this exact tag when set.
	Interest string
	// Limit caps the returned candidate list. 0 selects the default.
	Limit int
	// Active selects the spotlight by position, wrapping around.
	Active int
}

// Discover ranks every other golfer with a skill level against userID.
// An unknown userID is not an error: every candidate then scores 0 and the
// trust order is kept.
func (s *Service) Discover(ctx context.Context, userID string, q DiscoverQuery) (types.DiscoverResult, error) {
	start := time.Now()

	store, _, err := s.running()
	if err != nil {
		return types.DiscoverResult{}, err
	}
	limit, err := s.checkQuery(q)
	if err != nil {
		return types.DiscoverResult{}, err
	}

	self, err := s.loadSelf(ctx, store, userID)
	if err != nil {
		return types.DiscoverResult{}, err
	}

	pool, err := store.List(ctx, repository.Filter{
		ExcludeID:    userID,
		SkillLevel:   q.Skill,
		RequireSkill: true,
	})
	if err != nil {
		return types.DiscoverResult{}, fmt.Errorf("list candidates: %w", err)
	}

	interests := interestFacets(pool)
	if q.Interest != "" {
		kept := pool[:0]
		for i := range pool {
			if pool[i].HasInterest(q.Interest) {
				kept = append(kept, pool[i])
			}
		}
		pool = kept
	}

	ranked, err := s.rank(ctx, self, pool)
	if err != nil {
		return types.DiscoverResult{}, err
	}

	result := types.DiscoverResult{
		UserID:     userID,
		Total:      len(ranked),
		Candidates: []types.Candidate{},
		Interests:  interests,
	}
	if len(ranked) > 0 {
		active := q.Active % len(ranked)
		spot := ranked[active]
		result.Spotlight = &types.Spotlight{
			Candidate:  spot,
			Highlights: spot.Compatibility.Top(spotlightHighlights),
		}
		for i := range ranked {
			if i == active {
				continue
			}
			if len(result.Candidates) == limit {
				break
			}
			result.Candidates = append(result.Candidates, ranked[i])
		}
	}

	metrics.RecordCompatibilityComputed(len(ranked))
	metrics.RecordDiscoverResultSize(len(result.Candidates))
	metrics.RecordRankingLatency(float64(time.Since(start).Microseconds()) / 1000)
	return result, nil
}

func (s *Service) checkQuery(q DiscoverQuery) (int, error) {
	if q.Skill != "" {
		if _, ok := q.Skill.Rank(); !ok {
			return 0, fmt.Errorf("%w: unknown skill level %q", ErrBadRequest, q.Skill)
		}
	}
	if q.Active < 0 {
		return 0, fmt.Errorf("%w: active must not be negative", ErrBadRequest)
	}
	switch {
	case q.Limit < 0:
		return 0, fmt.Errorf("%w: limit must not be negative", ErrBadRequest)
	case q.Limit == 0:
		return s.defaultMatchLimit, nil
	case q.Limit > s.maxMatchLimit:
		return s.maxMatchLimit, nil
	default:
		return q.Limit, nil
	}
}

func (s *Service) loadSelf(ctx context.Context, store repository.ProfileStore, userID string) (*model.Profile, error) {
	p, err := store.Get(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, nil //nolint:nilnil // an unknown golfer ranks with degenerate scores
	case err != nil:
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &p, nil
}

// rank scores pool against self and orders it by score. Equal scores keep
// the store's trust order.
func (s *Service) rank(ctx context.Context, self *model.Profile, pool []model.Profile) ([]types.Candidate, error) {
	ranked := make([]types.Candidate, len(pool))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.rankingConcurrency)
	for i := range pool {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ranked[i] = types.Candidate{
				Profile:       pool[i],
				Compatibility: scoring.Compute(self, &pool[i]),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Compatibility.Score > ranked[j].Compatibility.Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// interestFacets returns the sorted union of every candidate's interests.
func interestFacets(pool []model.Profile) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range pool {
		for _, tag := range pool[i].Interests {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// Compatibility scores otherID against selfID with a labelled breakdown.
func (s *Service) Compatibility(ctx context.Context, selfID, otherID string) (types.PairResult, error) {
	store, _, err := s.running()
	if err != nil {
		return types.PairResult{}, err
	}
	if selfID == "" || otherID == "" {
		return types.PairResult{}, fmt.Errorf("%w: both profile ids are required", ErrBadRequest)
	}

	self, err := store.Get(ctx, selfID)
	if err != nil {
		return types.PairResult{}, fmt.Errorf("profile %q: %w", selfID, err)
	}
	other, err := store.Get(ctx, otherID)
	if err != nil {
		return types.PairResult{}, fmt.Errorf("profile %q: %w", otherID, err)
	}

	c := scoring.Compute(&self, &other)
	metrics.RecordCompatibilityComputed(1)
	return types.PairResult{
		SelfID:    selfID,
		OtherID:   otherID,
		Score:     c.Score,
		Breakdown: c.Top(0),
	}, nil
}

// Summary returns the landing view for userID.
func (s *Service) Summary(ctx context.Context, userID string) (types.Summary, error) {
	store, requests, err := s.running()
	if err != nil {
		return types.Summary{}, err
	}

	p, err := store.Get(ctx, userID)
	if err != nil {
		return types.Summary{}, err
	}

	outgoing, err := requests.ListRequests(ctx, repository.RequestFilter{
		UserID: userID,
		Role:   repository.RoleRequester,
		Status: model.StatusPending,
		Limit:  summaryPendingLimit,
	})
	if err != nil {
		return types.Summary{}, fmt.Errorf("list outgoing requests: %w", err)
	}
	incoming, err := requests.ListRequests(ctx, repository.RequestFilter{
		UserID: userID,
		Role:   repository.RoleRecipient,
		Status: model.StatusPending,
	})
	if err != nil {
		return types.Summary{}, fmt.Errorf("list incoming requests: %w", err)
	}

	out := types.Summary{
		Profile:          p,
		PendingOutgoing:  orEmpty(outgoing),
		IncomingRequests: len(incoming),
	}

	disc, err := s.Discover(ctx, userID, DiscoverQuery{Limit: 1})
	if err != nil {
		return types.Summary{}, err
	}
	if disc.Spotlight != nil {
		top := disc.Spotlight.Candidate
		out.TopMatch = &top
	}
	return out, nil
}

// Catalog returns the profile option catalogue and scoring factor metadata.
func (s *Service) Catalog() types.CatalogResponse {
	factors := scoring.Factors()
	infos := make([]types.FactorInfo, 0, len(factors))
	for _, f := range factors {
		infos = append(infos, types.FactorInfo{
			Factor: f,
			Label:  scoring.FactorLabel(f),
			Weight: scoring.Weight(f),
		})
	}
	return types.CatalogResponse{Catalog: model.DefaultCatalog(), Factors: infos}
}
