package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/courtside/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.PersistQueueSize, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("COURTSIDE_ADDR", ":8080")
			_ = os.Setenv("COURTSIDE_STORE", "file")
			_ = os.Setenv("COURTSIDE_DATA_DIR", "/tmp/courtside")
			_ = os.Setenv("COURTSIDE_PERSIST_WORKERS", "3")
			_ = os.Setenv("COURTSIDE_RATE_LIMIT_RPS", "2.5")
			_ = os.Setenv("COURTSIDE_CORS_ORIGINS", "https://a.example, https://b.example")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreFile)
				convey.So(cfg.DataDir, convey.ShouldEqual, "/tmp/courtside")
				convey.So(cfg.PersistWorkers, convey.ShouldEqual, 3)
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 2.5)
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
log_format: json
persist_queue_size: 500
persist_debounce_ms: 10
cors_origins:
  - https://scores.example
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("COURTSIDE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.PersistQueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.PersistDebounceMS, convey.ShouldEqual, 10)
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://scores.example"})
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
persist_workers: 4
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("COURTSIDE_CONFIG", tmpFile)
			_ = os.Setenv("COURTSIDE_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.PersistWorkers, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading metrics settings from a file and the environment", func() {
			tmpFile := createTempConfigFile(`
metrics:
  namespace: club
  buckets: [1, 5, 25]
  labels:
    region: eu
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("COURTSIDE_CONFIG", tmpFile)
			_ = os.Setenv("COURTSIDE_METRICS_ENABLED", "false")
			_ = os.Setenv("COURTSIDE_METRICS_REFRESH_MS", "2500")

			cfg, err := config.Load(ctx)

			convey.Convey("Then both layers reach the nested settings", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Metrics.Namespace, convey.ShouldEqual, "club")
				convey.So(cfg.Metrics.Subsystem, convey.ShouldEqual, "scorekeeper")
				convey.So(cfg.Metrics.Buckets, convey.ShouldResemble, []float64{1, 5, 25})
				convey.So(cfg.Metrics.Labels, convey.ShouldResemble, map[string]string{"region": "eu"})
				convey.So(cfg.Metrics.Enabled, convey.ShouldBeFalse)
				convey.So(cfg.MetricsRefresh(), convey.ShouldEqual, 2500*time.Millisecond)
			})
		})

		convey.Convey("When metrics buckets and labels come from the environment", func() {
			_ = os.Setenv("COURTSIDE_METRICS_BUCKETS", "0.5, 2")
			_ = os.Setenv("COURTSIDE_METRICS_LABELS", "region=eu, zone = b, broken")

			cfg, err := config.Load(ctx)

			convey.Convey("Then lists and pairs are split", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Metrics.Buckets, convey.ShouldResemble, []float64{0.5, 2})
				convey.So(cfg.Metrics.Labels, convey.ShouldResemble, map[string]string{"region": "eu", "zone": "b"})
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("COURTSIDE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("COURTSIDE_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("COURTSIDE_PERSIST_WORKERS", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("COURTSIDE_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown store", func() {
			_ = os.Setenv("COURTSIDE_STORE", "redis")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When the file store has no directory", func() {
			cfg.Store = config.StoreFile
			cfg.DataDir = ""

			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the chrono tick is not positive", func() {
			cfg.ChronoTickMS = 0

			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the metrics refresh is not positive", func() {
			cfg.Metrics.RefreshMS = 0

			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"COURTSIDE_CONFIG",
		"COURTSIDE_ADDR",
		"COURTSIDE_STORE",
		"COURTSIDE_DATA_DIR",
		"COURTSIDE_PERSIST_WORKERS",
		"COURTSIDE_RATE_LIMIT_RPS",
		"COURTSIDE_CORS_ORIGINS",
		"COURTSIDE_METRICS_ENABLED",
		"COURTSIDE_METRICS_REFRESH_MS",
		"COURTSIDE_METRICS_BUCKETS",
		"COURTSIDE_METRICS_LABELS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "courtside-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
