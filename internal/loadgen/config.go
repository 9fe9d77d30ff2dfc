// Package loadgen drives a running fairway service with synthetic golfers
// and checks the rankings it serves.
package loadgen

import (
	"errors"
	"fmt"
	"time"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Profiles int           // Number of synthetic profiles to generate
	SeedFile string        // Optional YAML/JSON profile file used instead of generation
	Workers  int           // Number of concurrent submitters
	Timeout  time.Duration // HTTP request timeout
	Settle   time.Duration // How long to wait for submitted profiles to become visible
	Verify   int           // Number of golfers whose rankings are checked
	Seed     uint64        // Random seed for generation; 0 picks one
	Verbose  bool          // Log per-request failures
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("base url must not be empty")
	case c.SeedFile == "" && c.Profiles < 2:
		return fmt.Errorf("need at least 2 profiles, got %d", c.Profiles)
	case c.Workers < 1:
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	case c.Timeout <= 0:
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	case c.Settle <= 0:
		return fmt.Errorf("settle must be positive, got %s", c.Settle)
	}
	return nil
}

// Stats holds run statistics.
type Stats struct {
	Generated int
	Submitted int
	Accepted  int
	Duplicate int
	Failed    int
	Visible   int
	Verified  int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
