package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	service "github.com/okian/ytairdrop/internal/app"
	"github.com/okian/ytairdrop/internal/config"
	"github.com/okian/ytairdrop/pkg/logger"
	"github.com/okian/ytairdrop/pkg/metrics"
)

// cli carries the state shared by every subcommand once flags are parsed.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath  string
	logLevel    string
	logJSON     bool
	metricsFile string

	cfg *config.Config
	svc *service.Service
	log logger.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "ytairdrop",
		Short: "Estimate airdrop allocation and ROI for YT points positions",
		Long: `ytairdrop models network points from value-locked and market-share
trajectories, converts the configured YT positions into user points and
projects the resulting airdrop at several FDVs.

Configuration is layered: built-in defaults, then the YAML file given by
--config or YTAIRDROP_CONFIG, then YTAIRDROP_* environment variables
(use "__" between nested keys, e.g. YTAIRDROP_PROGRAM__DURATION_DAYS=60).`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return c.flushMetrics(cmd)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (default $YTAIRDROP_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&c.logJSON, "log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "", "write a Prometheus textfile snapshot of the run")

	rootCmd.AddCommand(newSimulateCmd(c))
	rootCmd.AddCommand(newSweepCmd(c))
	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := logger.Init(logger.WithWriter(c.stderr), logger.WithJSON(c.logJSON)); err != nil {
		return err
	}
	c.log = logger.Named("cli")
	ctx := cmd.Context()

	cfg, err := config.Load(ctx, c.configPath)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	if err := logger.SetLevelString(level); err != nil {
		c.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := metrics.Init(
		metrics.WithNamespace(cfg.Metrics.Namespace),
		metrics.WithSubsystem(cfg.Metrics.Subsystem),
		metrics.WithCustomLabels(cfg.Metrics.Labels),
		metrics.WithHistogramBuckets(cfg.Metrics.Buckets),
	); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	scenario, err := cfg.Scenario()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.cfg = cfg
	c.svc = service.New(scenario,
		service.WithLogger(logger.Named("service")),
		service.WithWorkerCount(cfg.Sweep.Workers),
		service.WithQueueSize(cfg.Sweep.QueueSize),
	)
	c.log.Debug(ctx, "configuration loaded",
		logger.String("config", c.configPath),
		logger.Int("duration_days", scenario.Duration),
		logger.Int("positions", len(scenario.Positions)),
		logger.Int("fdvs", len(scenario.FDVs)),
	)
	return nil
}

func (c *cli) flushMetrics(cmd *cobra.Command) error {
	if c.metricsFile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(c.metricsFile); err != nil {
		return err
	}
	c.log.Info(cmd.Context(), "metrics written", logger.String("path", c.metricsFile))
	return nil
}
