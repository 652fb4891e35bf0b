package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/ytairdrop/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

const overrideYAML = `
log_level: debug
program:
  duration_days: 30
  total_supply: 500000000
network:
  mode: aggregate
  tvl:
    mode: linear
    initial: 10000000
    final: 40000000
positions:
  - name: only
    initial_price: 0.05
    spend_usd: 200
    multiplier: 2
    entry_day: 1
    price_mode: stepwise_linear
    step_days: 5
fdvs: [10000000]
sweep:
  entry_days: [0, 10]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	ctx := context.Background()
	t.Setenv(config.EnvConfigPath, "")

	convey.Convey("Given a config loader", t, func() {
		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			cfg, err := config.Load(ctx, writeConfig(t, overrideYAML))

			convey.Convey("Then file values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Program.DurationDays, convey.ShouldEqual, 30)
				convey.So(cfg.Program.TotalSupply, convey.ShouldEqual, 5e8)
				convey.So(cfg.Program.AirdropFraction, convey.ShouldEqual, 0.10)
				convey.So(cfg.Network.Mode, convey.ShouldEqual, "aggregate")
				convey.So(cfg.Network.ValueLocked.Mode, convey.ShouldEqual, "linear")
				convey.So(cfg.Network.ValueLocked.Final, convey.ShouldEqual, 4e7)
			})

			convey.Convey("Then lists should be replaced rather than merged", func() {
				convey.So(cfg.Positions, convey.ShouldHaveLength, 1)
				convey.So(cfg.Positions[0].Name, convey.ShouldEqual, "only")
				convey.So(cfg.Positions[0].StepDays, convey.ShouldEqual, 5)
				convey.So(cfg.Positions[0].Epsilon, convey.ShouldEqual, 0.0)
				convey.So(cfg.Positions[0].Campaign.EndDay, convey.ShouldBeNil)
				convey.So(cfg.FDVs, convey.ShouldResemble, []float64{1e7})
				convey.So(cfg.Sweep.EntryDays, convey.ShouldResemble, []int{0, 10})
				convey.So(cfg.Network.Assets, convey.ShouldHaveLength, 2)
			})

			convey.Convey("Then the scenario should build", func() {
				s, err := cfg.Scenario()
				convey.So(err, convey.ShouldBeNil)
				convey.So(s.Duration, convey.ShouldEqual, 30)
				convey.So(s.Positions[0].Price.Build(30)[0], convey.ShouldEqual, 0.05)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then it should fail with a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file is not valid YAML", func() {
			_, err := config.Load(ctx, writeConfig(t, "program: [unterminated"))

			convey.Convey("Then it should fail with a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestConfigLoader_Env(t *testing.T) {
	ctx := context.Background()
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv("YTAIRDROP_LOG_LEVEL", "warn")
	t.Setenv("YTAIRDROP_PROGRAM__DURATION_DAYS", "45")
	t.Setenv("YTAIRDROP_TIME_WEIGHTING", "false")
	t.Setenv("YTAIRDROP_FDVS", "30000000, 60000000")
	t.Setenv("YTAIRDROP_SWEEP__TOP", "3")

	convey.Convey("Given environment overrides and a config file", t, func() {
		path := writeConfig(t, overrideYAML)

		convey.Convey("When loading", func() {
			cfg, err := config.Load(ctx, path)

			convey.Convey("Then env should take precedence over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
				convey.So(cfg.Program.DurationDays, convey.ShouldEqual, 45)
				convey.So(cfg.Program.TotalSupply, convey.ShouldEqual, 5e8)
				convey.So(cfg.TimeWeighting, convey.ShouldBeFalse)
				convey.So(cfg.FDVs, convey.ShouldResemble, []float64{3e7, 6e7})
				convey.So(cfg.Sweep.Top, convey.ShouldEqual, 3)
			})
		})
	})
}

func TestConfigLoader_EnvPath(t *testing.T) {
	convey.Convey("Given YTAIRDROP_CONFIG pointing at a file", t, func() {
		t.Setenv(config.EnvConfigPath, writeConfig(t, overrideYAML))

		cfg, err := config.Load(context.Background(), "")

		convey.Convey("Then the file should be loaded", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Program.DurationDays, convey.ShouldEqual, 30)
		})
	})
}

const minimalPositionsYAML = `
program:
  duration_days: 10
positions:
  - name: campaign
    initial_price: 1
    spend_usd: 100
    multiplier: 1
    price_mode: two_phase
    campaign:
      enabled: true
      end_day: 4
  - name: plain
    initial_price: 1
    spend_usd: 100
    multiplier: 1
  - name: no-discount
    initial_price: 1
    spend_usd: 100
    multiplier: 1
    price_mode: two_phase
    campaign:
      enabled: true
      end_day: 4
      post_discount: 0
`

func TestConfigLoader_PositionDefaults(t *testing.T) {
	t.Setenv(config.EnvConfigPath, "")

	convey.Convey("Given positions that omit their price settings", t, func() {
		cfg, err := config.Load(context.Background(), writeConfig(t, minimalPositionsYAML))
		convey.So(err, convey.ShouldBeNil)

		s, err := cfg.Scenario()
		convey.So(err, convey.ShouldBeNil)
		convey.So(s.Positions, convey.ShouldHaveLength, 3)

		convey.Convey("Then a campaign falls back to a flat pre phase, a 30% drop and a linear decay", func() {
			want := []float64{1, 1, 1, 1, 0.7, 0.56, 0.42, 0.28, 0.14, 0}
			got := s.Positions[0].Price.Build(10)
			for d := range want {
				convey.So(got[d], convey.ShouldAlmostEqual, want[d], 1e-12)
			}
		})

		convey.Convey("Then a position without a price mode decays linearly to zero", func() {
			got := s.Positions[1].Price.Build(10)
			convey.So(got[0], convey.ShouldEqual, 1.0)
			convey.So(got[3], convey.ShouldAlmostEqual, 1-3.0/9, 1e-12)
			convey.So(got[9], convey.ShouldEqual, 0.0)
		})

		convey.Convey("Then an explicit zero discount is kept", func() {
			got := s.Positions[2].Price.Build(10)
			convey.So(got[4], convey.ShouldEqual, 1.0)
			convey.So(got[5], convey.ShouldAlmostEqual, 0.8, 1e-12)
		})
	})
}

const metricsYAML = `
metrics:
  namespace: airdrop
  labels:
    scenario: base
  buckets: [5, 50]
`

func TestConfigLoader_Metrics(t *testing.T) {
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv("YTAIRDROP_METRICS__LABELS__DESK", "research")

	convey.Convey("Given a metrics section and a label from the environment", t, func() {
		cfg, err := config.Load(context.Background(), writeConfig(t, metricsYAML))

		convey.Convey("Then names, labels and buckets are layered over the defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Metrics.Namespace, convey.ShouldEqual, "airdrop")
			convey.So(cfg.Metrics.Subsystem, convey.ShouldEqual, "calculator")
			convey.So(cfg.Metrics.Labels, convey.ShouldResemble, map[string]string{"scenario": "base", "desk": "research"})
			convey.So(cfg.Metrics.Buckets, convey.ShouldResemble, []float64{5, 50})
		})
	})
}
