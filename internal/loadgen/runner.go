package loadgen

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/logger"
)

// Run executes a complete load run: health check, submission, read-back and
// ranking verification.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("loadgen")
	log.Info(ctx, "starting fairway load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("profiles", cfg.Profiles),
		logger.String("seedFile", cfg.SeedFile),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate or load profiles
	profiles, err := loadProfiles(cfg)
	if err != nil {
		return stats, err
	}
	stats.Generated = len(profiles)

	// Step 3: Submit profiles concurrently
	if err := submitProfiles(ctx, cfg, client, profiles, stats); err != nil {
		return stats, fmt.Errorf("profile submission failed: %w", err)
	}

	// Step 4: Wait for the ingestion pipeline to apply them
	ids := make([]string, len(profiles))
	for i := range profiles {
		ids[i] = profiles[i].ID
	}
	stats.Visible, err = waitVisible(ctx, cfg, client, ids)
	if err != nil {
		return stats, err
	}
	if stats.Visible < stats.Accepted {
		return stats, fmt.Errorf("only %d of %d accepted profiles became visible within %s", stats.Visible, stats.Accepted, cfg.Settle)
	}

	// Step 5: Verify rankings
	if err := verifyRankings(ctx, cfg, client, profiles, stats); err != nil {
		return stats, fmt.Errorf("ranking verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

func loadProfiles(cfg *Config) ([]model.Profile, error) {
	if cfg.SeedFile == "" {
		return NewGenerator(cfg.Seed).Profiles(cfg.Profiles), nil
	}

	f, err := os.Open(cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	profiles, err := model.DecodeProfiles(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("seed file %s has no profiles", cfg.SeedFile)
	}
	return profiles, nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Named("loadgen").Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("visible", stats.Visible),
		logger.Int("verified", stats.Verified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("submissionsPerSecond", perSecond),
	)
}
