// Package airdrop projects a points share into token allocation and value
// across FDV scenarios.
package airdrop

import "github.com/okian/ytairdrop/internal/domain/model"

// Input is everything a projection needs.
type Input struct {
	UserPoints      float64
	NetworkPoints   float64
	TotalSupply     float64
	AirdropFraction float64
	Spend           float64
	FDVs            []float64
}

// Projection is the allocation and its value at each FDV.
type Projection struct {
	Share      float64
	PoolTokens float64
	UserTokens float64
	Outcomes   []model.FDVOutcome
}

// Share returns user/network, or 0 when network points are not positive.
func Share(user, network float64) float64 {
	if network <= 0 {
		return 0
	}
	return user / network
}

// TokenPrice returns fdv/supply, or 0 for a non-positive supply.
func TokenPrice(fdv, supply float64) float64 {
	if supply <= 0 {
		return 0
	}
	return fdv / supply
}

// ROI returns (value-spend)/spend, or nil when nothing was spent.
func ROI(value, spend float64) *float64 {
	if spend <= 0 {
		return nil
	}
	roi := (value - spend) / spend
	return &roi
}

// Outcome values userTokens at one FDV.
func Outcome(userTokens, supply, spend, fdv float64) model.FDVOutcome {
	price := TokenPrice(fdv, supply)
	value := userTokens * price
	var cost float64
	if fdv > 0 {
		cost = spend / fdv
	}
	return model.FDVOutcome{
		FDV:        fdv,
		TokenPrice: price,
		Value:      value,
		ROI:        ROI(value, spend),
		CostRatio:  cost,
	}
}

// Project evaluates every FDV independently. It never fails.
func Project(in Input) Projection {
	share := Share(in.UserPoints, in.NetworkPoints)
	pool := in.TotalSupply * in.AirdropFraction
	tokens := pool * share

	outcomes := make([]model.FDVOutcome, len(in.FDVs))
	for i, fdv := range in.FDVs {
		outcomes[i] = Outcome(tokens, in.TotalSupply, in.Spend, fdv)
	}
	return Projection{
		Share:      share,
		PoolTokens: pool,
		UserTokens: tokens,
		Outcomes:   outcomes,
	}
}
