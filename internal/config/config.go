// Package config defines the calculator configuration and turns it into a
// validated simulation scenario.
//
// Conventions:
// - Keys follow koanf tags; nested sections map to nested structs.
// - New returns the built-in defaults; Load layers a YAML file and env on top.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/ytairdrop/internal/domain/curve"
	"github.com/okian/ytairdrop/internal/domain/dedupe"
	"github.com/okian/ytairdrop/internal/domain/model"
	"github.com/okian/ytairdrop/internal/domain/points"
	"github.com/okian/ytairdrop/internal/domain/simulation"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	Program   Program    `koanf:"program"`
	Network   Network    `koanf:"network"`
	Positions []Position `koanf:"positions"`

	// FDVs are the fully-diluted valuations to project outcomes at.
	FDVs []float64 `koanf:"fdvs"`

	// TimeWeighting scales a holding's points by the program time remaining.
	TimeWeighting bool `koanf:"time_weighting"`

	Sweep   Sweep   `koanf:"sweep"`
	Metrics Metrics `koanf:"metrics"`
}

// Program carries the token and campaign-length parameters.
type Program struct {
	DurationDays    int     `koanf:"duration_days"`
	TotalSupply     float64 `koanf:"total_supply"`
	AirdropFraction float64 `koanf:"airdrop_pct"`

	// NetworkPointsTotal replaces the computed network total when positive.
	NetworkPointsTotal float64 `koanf:"network_points_total"`
}

// Network selects how protocol-wide points are derived.
type Network struct {
	// Mode is aggregate or per_asset (simple and by_tokens are aliases).
	Mode             string  `koanf:"mode"`
	MarketStartDay   int     `koanf:"market_start_day"`
	MarketMultiplier float64 `koanf:"market_multiplier"`
	DirectMultiplier float64 `koanf:"direct_multiplier"`

	// Scaling is proportional (alias share_based) or constant.
	Scaling string `koanf:"scaling"`

	ValueLocked ValueLocked `koanf:"tvl"`
	Share       Share       `koanf:"market_share"`
	Assets      []Asset     `koanf:"assets"`
}

// ValueLocked describes the value-locked trajectory.
type ValueLocked struct {
	Mode    string  `koanf:"mode"`
	Initial float64 `koanf:"initial"`
	Final   float64 `koanf:"final"`
	Average float64 `koanf:"average"`
}

// Share describes the market-share trajectory used in aggregate mode.
type Share struct {
	Mode    string   `koanf:"mode"`
	Initial float64  `koanf:"initial"`
	Final   float64  `koanf:"final"`
	Average *float64 `koanf:"average"`
}

// Asset is one per-asset baseline. Nil multipliers fall back to the
// network's market and direct multipliers.
type Asset struct {
	Name              string   `koanf:"name"`
	MarketValueLocked float64  `koanf:"tvl_market"`
	DirectValueLocked float64  `koanf:"tvl_direct"`
	MarketMultiplier  *float64 `koanf:"mult_market"`
	DirectMultiplier  *float64 `koanf:"mult_direct"`
}

// Position is one YT purchase and its price model.
type Position struct {
	Name         string   `koanf:"name"`
	InitialPrice float64  `koanf:"initial_price"`
	Spend        float64  `koanf:"spend_usd"`
	Multiplier   float64  `koanf:"multiplier"`
	EntryDay     int      `koanf:"entry_day"`
	PriceMode    string   `koanf:"price_mode"`
	StepDays     int      `koanf:"step_days"`
	Epsilon      float64  `koanf:"epsilon"`
	Campaign     Campaign `koanf:"campaign"`
}

// Campaign switches a position to the two-phase price policy.
type Campaign struct {
	Enabled      bool    `koanf:"enabled"`
	EndDay       *int    `koanf:"end_day"`
	PreMode      string   `koanf:"pre_mode"`
	PostMode     string   `koanf:"post_mode"`
	PostDiscount *float64 `koanf:"post_discount"`
}

// Sweep configures the entry-timing sweep.
type Sweep struct {
	Enabled bool `koanf:"enabled"`

	// EntryDays restricts the candidate days; empty means every day.
	EntryDays []int `koanf:"entry_days"`
	Top       int   `koanf:"top"`

	// Workers is the evaluation pool size; zero or less means one per CPU.
	Workers   int `koanf:"workers"`
	QueueSize int `koanf:"queue_size"`
}

// Metrics names the Prometheus series of a run's textfile snapshot.
type Metrics struct {
	Namespace string            `koanf:"namespace"`
	Subsystem string            `koanf:"subsystem"`
	Labels    map[string]string `koanf:"labels"`

	// Buckets are the latency histogram bounds in milliseconds.
	Buckets []float64 `koanf:"buckets"`
}

// twoPhase is the price mode name that requires an enabled campaign.
const twoPhase = "two_phase"

// Per-position fallbacks for fields a position leaves out.
const (
	defaultPriceMode    = "linear_to_zero"
	defaultPreMode      = "flat"
	defaultPostMode     = "linear_to_zero"
	defaultPostDiscount = 0.30
)

// New returns the built-in defaults: a per-asset network with two assets and
// a single linearly decaying position.
func New() *Config {
	campaignEnd := 9
	return &Config{
		LogLevel: "info",
		Program: Program{
			DurationDays:    80,
			TotalSupply:     1_000_000_000,
			AirdropFraction: 0.10,
		},
		Network: Network{
			Mode:             "by_tokens",
			MarketMultiplier: 5,
			DirectMultiplier: 1,
			Scaling:          "proportional",
			ValueLocked: ValueLocked{
				Mode:    "average",
				Initial: 20_000_000,
				Final:   20_000_000,
				Average: 30_000_000,
			},
			Share: Share{Mode: "linear", Initial: 0.30, Final: 0.30},
			Assets: []Asset{
				{Name: "yzUSD", MarketValueLocked: 397_000, DirectValueLocked: 873_000, MarketMultiplier: ptr(5.0), DirectMultiplier: ptr(1.0)},
				{Name: "syzUSD", MarketValueLocked: 202_000, DirectValueLocked: 15_136_000, MarketMultiplier: ptr(1.0), DirectMultiplier: ptr(1.0)},
			},
		},
		Positions: []Position{
			{
				Name:         "yzUSD-YT",
				InitialPrice: 0.03572,
				Spend:        1500,
				Multiplier:   5,
				EntryDay:     3,
				PriceMode:    "linear_to_zero",
				StepDays:     curve.DefaultStepDays,
				Epsilon:      curve.DefaultEpsilon,
				Campaign: Campaign{
					EndDay:       &campaignEnd,
					PreMode:      "flat",
					PostMode:     "exp_to_zero",
					PostDiscount: ptr(defaultPostDiscount),
				},
			},
		},
		FDVs:          []float64{20_000_000, 50_000_000, 100_000_000, 200_000_000, 500_000_000},
		TimeWeighting: true,
		Sweep: Sweep{
			Enabled:   true,
			Top:       5,
			QueueSize: 1024,
		},
		Metrics: Metrics{
			Namespace: "ytairdrop",
			Subsystem: "calculator",
		},
	}
}

// Scenario validates the configuration and builds the immutable inputs the
// calculator runs on.
func (c *Config) Scenario() (simulation.Scenario, error) {
	if c.Program.DurationDays <= 0 {
		return simulation.Scenario{}, invalid("program.duration_days must be positive, got %d", c.Program.DurationDays)
	}
	network, err := c.Network.build(c.Program.NetworkPointsTotal)
	if err != nil {
		return simulation.Scenario{}, err
	}
	if len(c.Positions) == 0 {
		return simulation.Scenario{}, invalid("at least one position is required")
	}
	positions := make([]model.UserPosition, 0, len(c.Positions))
	for i, p := range c.Positions {
		pos, err := p.build()
		if err != nil {
			return simulation.Scenario{}, fmt.Errorf("positions[%d] %s: %w", i, p.Name, err)
		}
		positions = append(positions, pos)
	}

	s := simulation.Scenario{
		Duration:        c.Program.DurationDays,
		Network:         network,
		Positions:       positions,
		TimeWeighting:   c.TimeWeighting,
		TotalSupply:     c.Program.TotalSupply,
		AirdropFraction: c.Program.AirdropFraction,
		FDVs:            dedupe.FDVs(c.FDVs),
	}
	if err := s.Validate(); err != nil {
		return simulation.Scenario{}, err
	}
	return s, nil
}

func (n Network) build(totalOverride float64) (points.NetworkConfig, error) {
	mode, err := points.ParseMode(n.Mode)
	if err != nil {
		return points.NetworkConfig{}, err
	}
	scaling, err := points.ParseScaling(n.Scaling)
	if err != nil {
		return points.NetworkConfig{}, err
	}
	value, err := n.ValueLocked.build()
	if err != nil {
		return points.NetworkConfig{}, err
	}
	share, err := n.Share.build()
	if err != nil {
		return points.NetworkConfig{}, err
	}

	assets := make([]model.AssetConfig, 0, len(n.Assets))
	for _, a := range n.Assets {
		assets = append(assets, model.AssetConfig{
			Name:              a.Name,
			MarketValueLocked: a.MarketValueLocked,
			DirectValueLocked: a.DirectValueLocked,
			MarketMultiplier:  valueOr(a.MarketMultiplier, n.MarketMultiplier),
			DirectMultiplier:  valueOr(a.DirectMultiplier, n.DirectMultiplier),
		})
	}

	return points.NetworkConfig{
		Mode:             mode,
		Value:            value,
		Share:            share,
		MarketMultiplier: n.MarketMultiplier,
		DirectMultiplier: n.DirectMultiplier,
		MarketStartDay:   n.MarketStartDay,
		Assets:           assets,
		Scaling:          scaling,
		TotalOverride:    totalOverride,
	}, nil
}

func (v ValueLocked) build() (curve.ValueCurve, error) {
	kind, err := curve.ParseValueKind(v.Mode)
	if err != nil {
		return curve.ValueCurve{}, err
	}
	if kind == curve.ValueAverage {
		return curve.FlatValue(v.Average), nil
	}
	return curve.NewValueCurve(kind, v.Initial, v.Final)
}

func (s Share) build() (curve.ShareCurve, error) {
	kind, err := curve.ParseShareKind(s.Mode)
	if err != nil {
		return curve.ShareCurve{}, err
	}
	if kind == curve.ShareAverage {
		return curve.FlatShare(s.Average, s.Initial), nil
	}
	return curve.LinearShare(s.Initial, s.Final), nil
}

func (p Position) build() (model.UserPosition, error) {
	opts := []curve.PriceOption{curve.WithEpsilon(p.Epsilon)}
	if p.StepDays != 0 {
		opts = append(opts, curve.WithStepDays(p.StepDays))
	}

	priceMode := orDefault(p.PriceMode, defaultPriceMode)

	var decay curve.Decay
	switch {
	case p.Campaign.Enabled:
		if priceMode != twoPhase {
			return model.UserPosition{}, invalid("campaign requires price_mode %s, got %q", twoPhase, priceMode)
		}
		if p.Campaign.EndDay == nil {
			return model.UserPosition{}, invalid("campaign.end_day is required when the campaign is enabled")
		}
		pre, err := curve.ParsePreCampaign(orDefault(p.Campaign.PreMode, defaultPreMode))
		if err != nil {
			return model.UserPosition{}, err
		}
		post, err := curve.ParseDecay(orDefault(p.Campaign.PostMode, defaultPostMode))
		if err != nil {
			return model.UserPosition{}, err
		}
		opts = append(opts, curve.WithCampaign(curve.Campaign{
			EndDay:       *p.Campaign.EndDay,
			Pre:          pre,
			Post:         post,
			PostDiscount: valueOr(p.Campaign.PostDiscount, defaultPostDiscount),
		}))
	case priceMode == twoPhase:
		return model.UserPosition{}, invalid("price_mode %s requires campaign.enabled", twoPhase)
	default:
		var err error
		if decay, err = curve.ParseDecay(priceMode); err != nil {
			return model.UserPosition{}, err
		}
	}

	price, err := curve.NewPriceCurve(p.InitialPrice, decay, opts...)
	if err != nil {
		return model.UserPosition{}, err
	}
	return model.UserPosition{
		Name:       p.Name,
		EntryDay:   p.EntryDay,
		Spend:      p.Spend,
		Multiplier: p.Multiplier,
		Price:      price,
	}, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidConfig)...)
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func ptr[T any](v T) *T { return &v }
