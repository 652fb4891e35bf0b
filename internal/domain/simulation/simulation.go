// Package simulation runs a single airdrop estimate for a fixed set of
// entry days.
package simulation

import (
	"fmt"

	"github.com/okian/ytairdrop/internal/domain/airdrop"
	"github.com/okian/ytairdrop/internal/domain/model"
	"github.com/okian/ytairdrop/internal/domain/points"
)

// Scenario is the full input bundle for a run.
type Scenario struct {
	Duration        int
	Network         points.NetworkConfig
	Positions       []model.UserPosition
	TimeWeighting   bool
	TotalSupply     float64
	AirdropFraction float64
	FDVs            []float64
}

// Validate checks the parts every run depends on.
func (s Scenario) Validate() error {
	if s.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %d: %w", s.Duration, model.ErrInvalidConfig)
	}
	if len(s.Positions) == 0 {
		return fmt.Errorf("at least one user position is required: %w", model.ErrInvalidConfig)
	}
	return nil
}

// TotalSpend sums the spend of every position.
func (s Scenario) TotalSpend() float64 {
	var total float64
	for _, p := range s.Positions {
		total += p.Spend
	}
	return total
}

// Run computes network points, user points and the projected allocation.
func Run(s Scenario) (model.SimulationResult, error) {
	if err := s.Validate(); err != nil {
		return model.SimulationResult{}, err
	}

	net, err := points.ComputeNetwork(s.Network, s.Duration)
	if err != nil {
		return model.SimulationResult{}, err
	}
	positions, userPoints, err := points.Users(s.Positions, s.Duration, s.TimeWeighting)
	if err != nil {
		return model.SimulationResult{}, err
	}

	spend := s.TotalSpend()
	proj := airdrop.Project(airdrop.Input{
		UserPoints:      userPoints,
		NetworkPoints:   net.Total,
		TotalSupply:     s.TotalSupply,
		AirdropFraction: s.AirdropFraction,
		Spend:           spend,
		FDVs:            s.FDVs,
	})

	return model.SimulationResult{
		UserPoints:           userPoints,
		NetworkPoints:        net.Total,
		UserShare:            proj.Share,
		AirdropTokens:        proj.PoolTokens,
		UserTokens:           proj.UserTokens,
		TotalSpend:           spend,
		Positions:            positions,
		Outcomes:             proj.Outcomes,
		AverageValueLocked:   net.AverageValueLocked,
		EffectiveMarketShare: net.EffectiveShare,
	}, nil
}
