package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/fairway/internal/loadgen"
)

// Default load run settings.
const (
	defaultProfiles = 1000
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	defaultTimeout  = 30 * time.Second
	defaultSettle   = 30 * time.Second
	defaultVerify   = 20
	runTimeout      = 10 * time.Minute
)

var seedCfg loadgen.Config

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a running server with golfers and verify its rankings",
	Long: `Seed submits synthetic golfer profiles (or the profiles in --seed-file)
to a running fairway server, waits until they are readable and then checks
the rankings served for a sample of golfers against local scoring.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, runTimeout)
		defer cancel()

		stats, err := loadgen.Run(ctx, &seedCfg)
		if stats != nil {
			printStats(cmd.OutOrStdout(), stats)
		}
		if err != nil {
			return fmt.Errorf("load run failed: %w", err)
		}
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedCfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&seedCfg.Profiles, "profiles", defaultProfiles, "Number of profiles to generate")
	f.StringVar(&seedCfg.SeedFile, "seed-file", "", "YAML or JSON profile file to submit instead of generated profiles")
	f.IntVar(&seedCfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
	f.DurationVar(&seedCfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.DurationVar(&seedCfg.Settle, "settle", defaultSettle, "How long to wait for profiles to become readable")
	f.IntVar(&seedCfg.Verify, "verify", defaultVerify, "Number of golfers whose rankings are checked")
	f.Uint64Var(&seedCfg.Seed, "seed", 0, "Random seed for generated profiles (0 picks one)")
	f.BoolVarP(&seedCfg.Verbose, "verbose", "v", false, "Log individual failures")
	rootCmd.AddCommand(seedCmd)
}

func printStats(w io.Writer, s *loadgen.Stats) {
	styles := newPrintStyles()
	failed := styles.dim
	if s.Failed > 0 {
		failed = styles.weak
	}

	fmt.Fprintln(w, styles.header.Render("Load run"))
	fmt.Fprintf(w, "  %-10s %d\n", "generated", s.Generated)
	fmt.Fprintf(w, "  %-10s %d\n", "accepted", s.Accepted)
	fmt.Fprintf(w, "  %-10s %d\n", "duplicate", s.Duplicate)
	fmt.Fprintf(w, "  %-10s %s\n", "failed", failed.Render(fmt.Sprint(s.Failed)))
	fmt.Fprintf(w, "  %-10s %d\n", "visible", s.Visible)
	fmt.Fprintf(w, "  %-10s %d\n", "verified", s.Verified)
	if s.Duration > 0 {
		fmt.Fprintf(w, "  %-10s %s\n", "duration", s.Duration.Round(time.Millisecond))
	}
}
