package loadgen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/scoring"
	"github.com/okian/fairway/internal/domain/types"
	"github.com/okian/fairway/pkg/logger"
)

const visibilityPollInterval = 200 * time.Millisecond

// waitVisible polls until every id can be read back or cfg.Settle passes.
// It returns how many ids became visible.
func waitVisible(ctx context.Context, cfg *Config, client *Client, ids []string) (int, error) {
	pending := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		pending[id] = struct{}{}
	}

	deadline := time.Now().Add(cfg.Settle)
	for {
		round := make([]string, 0, len(pending))
		for id := range pending {
			round = append(round, id)
		}

		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Workers)
		for _, id := range round {
			g.Go(func() error {
				_, err := client.Profile(gctx, id)
				switch {
				case err == nil:
					mu.Lock()
					delete(pending, id)
					mu.Unlock()
					return nil
				case errors.Is(err, ErrNotFound):
					return nil
				default:
					return err
				}
			})
		}
		if err := g.Wait(); err != nil {
			return len(ids) - len(pending), fmt.Errorf("failed to read profiles back: %w", err)
		}

		if len(pending) == 0 || time.Now().After(deadline) {
			return len(ids) - len(pending), nil
		}
		select {
		case <-ctx.Done():
			return len(ids) - len(pending), ctx.Err()
		case <-time.After(visibilityPollInterval):
		}
	}
}

// verifyRanking checks a discover result served for self: self is never a
// candidate, ranks are consecutive, scores stay in [0,100] and never rise,
// and every score matches a local computation.
func verifyRanking(self *model.Profile, res *types.DiscoverResult) error {
	listed := make([]types.Candidate, 0, len(res.Candidates)+1)
	if res.Spotlight != nil {
		listed = append(listed, res.Spotlight.Candidate)
	}
	listed = append(listed, res.Candidates...)

	if len(listed) > res.Total {
		return fmt.Errorf("listed %d candidates but total is %d", len(listed), res.Total)
	}

	for i := range listed {
		c := &listed[i]
		if c.Profile.ID == self.ID {
			return fmt.Errorf("golfer %s is listed as their own candidate", self.ID)
		}
		if c.Rank != i+1 {
			return fmt.Errorf("candidate %s has rank %d at position %d", c.Profile.ID, c.Rank, i+1)
		}
		score := c.Compatibility.Score
		if score < 0 || score > 100 {
			return fmt.Errorf("candidate %s has score %d outside [0,100]", c.Profile.ID, score)
		}
		if i > 0 && score > listed[i-1].Compatibility.Score {
			return fmt.Errorf("candidate %s scores %d above the previous %d", c.Profile.ID, score, listed[i-1].Compatibility.Score)
		}
		if want := scoring.Compute(self, &c.Profile).Score; want != score {
			return fmt.Errorf("candidate %s served score %d, computed %d", c.Profile.ID, score, want)
		}
	}
	return nil
}

// verifyRankings checks the rankings of up to cfg.Verify golfers.
func verifyRankings(ctx context.Context, cfg *Config, client *Client, profiles []model.Profile, stats *Stats) error {
	n := min(cfg.Verify, len(profiles))
	log := logger.Get().Named("loadgen")
	log.Info(ctx, "verifying rankings", logger.Int("golfers", n))

	for i := 0; i < n; i++ {
		// Score against the stored profile; a later update may have replaced ours.
		self, err := client.Profile(ctx, profiles[i].ID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read profile %s: %w", profiles[i].ID, err)
		}
		res, err := client.Discover(ctx, self.ID, len(profiles))
		if err != nil {
			return fmt.Errorf("discover for %s: %w", self.ID, err)
		}
		if err := verifyRanking(&self, &res); err != nil {
			return err
		}
		stats.Verified++
		if cfg.Verbose && res.Spotlight != nil {
			log.Info(ctx, "ranking verified",
				logger.String("golfer", self.ID),
				logger.String("topMatch", res.Spotlight.Profile.ID),
				logger.Int("score", res.Spotlight.Compatibility.Score),
				logger.Int("candidates", res.Total),
			)
		}
	}
	return nil
}
