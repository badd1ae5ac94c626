package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "COURTSIDE_"
	envConfig  = "COURTSIDE_CONFIG"
	dotEnvFile = ".env"

	metricsPrefix = "metrics_"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if COURTSIDE_CONFIG is set
//  3. env (prefix COURTSIDE_), including values from a .env file in the
//     working directory; variables already set in the process win
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// COURTSIDE_PERSIST_QUEUE_SIZE -> persist_queue_size (flat keys),
	// COURTSIDE_METRICS_NAMESPACE -> metrics.namespace.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if rest, ok := strings.CutPrefix(key, metricsPrefix); ok {
			key = "metrics." + rest
		}
		switch key {
		case "cors_origins", "metrics.buckets":
			return key, splitList(value)
		case "metrics.labels":
			return key, splitPairs(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Store != StoreMemory && c.Store != StoreFile:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	case c.Store == StoreFile && c.DataDir == "":
		return fmt.Errorf("%w: data_dir is required for the file store", ErrInvalidConfig)
	case c.ChronoTickMS <= 0:
		return fmt.Errorf("%w: chrono_tick_ms must be positive", ErrInvalidConfig)
	case c.Metrics.RefreshMS <= 0:
		return fmt.Errorf("%w: metrics.refresh_ms must be positive", ErrInvalidConfig)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitPairs parses "k1=v1,k2=v2". Entries without "=" are dropped.
func splitPairs(v string) map[string]any {
	out := map[string]any{}
	for _, part := range splitList(v) {
		if k, val, ok := strings.Cut(part, "="); ok && strings.TrimSpace(k) != "" {
			out[strings.TrimSpace(k)] = strings.TrimSpace(val)
		}
	}
	return out
}
