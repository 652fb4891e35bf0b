// Package model contains domain records passed between the calculator layers.
package model

// PriceBuilder produces a day-indexed price trajectory of length n.
type PriceBuilder interface {
	Build(n int) []float64
}

// AssetConfig describes one asset's contribution to network points when the
// per-asset points mode is used. Values are USD.
type AssetConfig struct {
	Name              string
	MarketValueLocked float64 // YT value held on the market
	DirectValueLocked float64 // value staked directly
	MarketMultiplier  float64
	DirectMultiplier  float64
}

// UserPosition is one YT purchase. It is built once from configuration and
// never mutated.
type UserPosition struct {
	Name       string
	EntryDay   int
	Spend      float64 // USD
	Multiplier float64
	Price      PriceBuilder
}

// PositionResult is the per-position breakdown of a single run.
type PositionResult struct {
	Name       string
	Spend      float64
	EntryDay   int
	EntryPrice float64
	Owned      float64 // YT amount bought with Spend at EntryPrice
	Points     float64
}
