package loadgen

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/logger"
)

// submitProfiles posts every profile using cfg.Workers concurrent requests.
// Individual failures are counted, not returned.
func submitProfiles(ctx context.Context, cfg *Config, client *Client, profiles []model.Profile, stats *Stats) error {
	log := logger.Get().Named("loadgen")
	log.Info(ctx, "submitting profiles", logger.Int("profiles", len(profiles)), logger.Int("workers", cfg.Workers))

	var accepted, duplicate, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range profiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			status, err := client.Submit(gctx, "", profiles[i])
			switch {
			case err != nil:
				failed.Add(1)
				if cfg.Verbose {
					log.Warn(gctx, "submit failed", logger.String("profileID", profiles[i].ID), logger.Error(err))
				}
			case status == resultAccepted:
				accepted.Add(1)
			case status == resultDuplicate:
				duplicate.Add(1)
			default:
				failed.Add(1)
				log.Warn(gctx, "unexpected submit status", logger.String("profileID", profiles[i].ID), logger.String("status", status))
			}
			return nil
		})
	}
	err := g.Wait()

	stats.Submitted = int(accepted.Load() + duplicate.Load() + failed.Load())
	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Failed = int(failed.Load())

	log.Info(ctx, "profile submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
	)
	return err
}
