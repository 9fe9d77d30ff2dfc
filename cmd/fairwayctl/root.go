package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/fairway/pkg/logger"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "fairwayctl",
	Short: "Operator tool for the fairway golf matching service",
	Long: `fairwayctl works with golfer profiles outside the running service.

Use "score" to compare two profile files with the same scorer the service
ranks with, "labels" to see how catalogue values are displayed and "seed"
to load a running server with synthetic golfers and verify its rankings.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return logger.Init(
			logger.WithWriter(cmd.ErrOrStderr()),
			logger.WithFormat(logFormat),
			logger.WithLevel(logLevel),
		)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatText, "Log format (text|json)")
}
