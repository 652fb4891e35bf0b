// Package points converts value-locked and market-share trajectories into
// network points, and user positions into user points.
package points

import (
	"fmt"
	"strings"

	"github.com/okian/ytairdrop/internal/domain/curve"
	"github.com/okian/ytairdrop/internal/domain/model"
)

// Mode selects how network points are derived.
type Mode int

// Network points modes.
const (
	// ModeAggregate blends one market and one direct multiplier by the
	// market-share trajectory.
	ModeAggregate Mode = iota
	// ModePerAsset sums per-asset baselines scaled by the value-locked curve.
	ModePerAsset
)

func (m Mode) String() string {
	if m == ModePerAsset {
		return "per_asset"
	}
	return "aggregate"
}

// ParseMode maps a configuration name to a Mode. "simple" and "by_tokens"
// are accepted as the historical names of the two modes.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "aggregate", "simple":
		return ModeAggregate, nil
	case "per_asset", "by_tokens":
		return ModePerAsset, nil
	}
	return 0, fmt.Errorf("unknown points mode %q: %w", name, model.ErrInvalidConfig)
}

// Scaling controls how per-asset baselines follow the value-locked curve.
type Scaling int

// Scaling modes.
const (
	// ScaleProportional scales each day's baseline by value[d]/avg(value).
	ScaleProportional Scaling = iota
	// ScaleConstant keeps baselines at their configured dollar values.
	ScaleConstant
)

func (s Scaling) String() string {
	if s == ScaleConstant {
		return "constant"
	}
	return "proportional"
}

// ParseScaling maps a configuration name to a Scaling. "share_based" is an
// alias of "proportional"; an empty name means proportional.
func ParseScaling(name string) (Scaling, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "proportional", "share_based":
		return ScaleProportional, nil
	case "constant":
		return ScaleConstant, nil
	}
	return 0, fmt.Errorf("unknown component tvl scaling %q: %w", name, model.ErrInvalidConfig)
}

// NetworkConfig carries every switch the network computation depends on.
type NetworkConfig struct {
	Mode  Mode
	Value curve.ValueCurve
	Share curve.ShareCurve // aggregate mode only

	MarketMultiplier float64
	DirectMultiplier float64

	// MarketStartDay is the first day the market exists. Earlier days only
	// earn direct-staking points.
	MarketStartDay int

	Assets  []model.AssetConfig // per-asset mode only
	Scaling Scaling

	// TotalOverride replaces the computed total when positive.
	TotalOverride float64
}

// Network is the protocol-wide points picture for one run.
type Network struct {
	Daily       []float64
	Multipliers []float64 // blended multiplier per day, aggregate mode only
	Total       float64

	AverageValueLocked float64
	EffectiveShare     float64
}

// ComputeNetwork derives network points over an n-day program.
func ComputeNetwork(cfg NetworkConfig, n int) (Network, error) {
	value := cfg.Value.Build(n)
	start := max(cfg.MarketStartDay, 0)

	var (
		net Network
		err error
	)
	switch cfg.Mode {
	case ModeAggregate:
		net = aggregate(cfg, value, start)
	case ModePerAsset:
		net, err = perAsset(cfg, value, start)
	default:
		err = fmt.Errorf("unknown points mode %d: %w", int(cfg.Mode), model.ErrInvalidConfig)
	}
	if err != nil {
		return Network{}, err
	}

	net.AverageValueLocked = curve.Mean(value)
	for _, p := range net.Daily {
		net.Total += p
	}
	if cfg.TotalOverride > 0 {
		net.Total = cfg.TotalOverride
	}
	return net, nil
}

func aggregate(cfg NetworkConfig, value []float64, start int) Network {
	n := len(value)
	share := make([]float64, n)
	if start < n {
		// The share curve spans the market's own lifetime.
		copy(share[start:], cfg.Share.Build(n-start))
	}

	daily := make([]float64, n)
	mult := make([]float64, n)
	for d := range daily {
		if d < start {
			mult[d] = cfg.DirectMultiplier
		} else {
			mult[d] = share[d]*cfg.MarketMultiplier + (1-share[d])*cfg.DirectMultiplier
		}
		daily[d] = value[d] * mult[d]
	}
	return Network{Daily: daily, Multipliers: mult, EffectiveShare: curve.Mean(share)}
}

func perAsset(cfg NetworkConfig, value []float64, start int) (Network, error) {
	if len(cfg.Assets) == 0 {
		return Network{}, fmt.Errorf("per-asset points mode needs at least one asset: %w", model.ErrInvalidConfig)
	}

	var directOnly, combined, marketTVL, directTVL float64
	for _, a := range cfg.Assets {
		directOnly += a.DirectValueLocked * a.DirectMultiplier
		combined += a.DirectValueLocked*a.DirectMultiplier + a.MarketValueLocked*a.MarketMultiplier
		marketTVL += a.MarketValueLocked
		directTVL += a.DirectValueLocked
	}
	componentTVL := marketTVL + directTVL
	avg := curve.Mean(value)
	scale := avg > 0 && componentTVL > 0 && cfg.Scaling == ScaleProportional

	daily := make([]float64, len(value))
	for d := range daily {
		base := combined
		if d < start {
			base = directOnly
		}
		if scale {
			base *= value[d] / avg
		}
		daily[d] = base
	}

	var share float64
	if componentTVL > 0 {
		share = marketTVL / componentTVL
	}
	return Network{Daily: daily, EffectiveShare: share}, nil
}
