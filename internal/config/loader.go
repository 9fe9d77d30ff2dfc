package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment conventions.
const (
	EnvPrefix     = "FAIRWAY_"
	ConfigPathEnv = "FAIRWAY_CONFIG"
)

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file named by FAIRWAY_CONFIG, if set
//  3. FAIRWAY_* environment variables
func Load(ctx context.Context) (*Config, error) {
	cfg := New(ctx)
	k := koanf.New(".")

	if path := os.Getenv(ConfigPathEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// FAIRWAY_QUEUE_SIZE -> queue_size; underscores are kept to match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The path variable is not a config key.
	k.Delete("config")

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
