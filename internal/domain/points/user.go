package points

import (
	"fmt"

	"github.com/okian/ytairdrop/internal/domain/model"
)

// Weight returns the time weight of day d in an n-day program: 1 on day 0,
// falling linearly to 1/n on the last day. Without time weighting every day
// weighs 1.
func Weight(d, n int, timeWeighting bool) float64 {
	if !timeWeighting {
		return 1
	}
	if n <= 0 {
		return 0
	}
	w := float64(n-d) / float64(n)
	return min(max(w, 0), 1)
}

// Owned returns the YT amount spend buys at price, or 0 for a non-positive price.
func Owned(spend, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return spend / price
}

// Accrue sums owned*multiplier*weight over days entry..n-1.
func Accrue(owned, multiplier float64, entry, n int, timeWeighting bool) float64 {
	var total float64
	base := owned * multiplier
	for d := max(entry, 0); d < n; d++ {
		total += base * Weight(d, n, timeWeighting)
	}
	return total
}

// ForPosition computes one position's points over an n-day program, given
// the position's price trajectory.
func ForPosition(pos model.UserPosition, prices []float64, n int, timeWeighting bool) (model.PositionResult, error) {
	if pos.EntryDay < 0 || pos.EntryDay >= n || pos.EntryDay >= len(prices) {
		return model.PositionResult{}, fmt.Errorf("position %q entry day %d outside program of %d days: %w",
			pos.Name, pos.EntryDay, n, model.ErrInvalidConfig)
	}
	price := prices[pos.EntryDay]
	owned := Owned(pos.Spend, price)
	return model.PositionResult{
		Name:       pos.Name,
		Spend:      pos.Spend,
		EntryDay:   pos.EntryDay,
		EntryPrice: price,
		Owned:      owned,
		Points:     Accrue(owned, pos.Multiplier, pos.EntryDay, n, timeWeighting),
	}, nil
}

// Users computes every position's points. The list must not be empty.
func Users(positions []model.UserPosition, n int, timeWeighting bool) ([]model.PositionResult, float64, error) {
	if len(positions) == 0 {
		return nil, 0, fmt.Errorf("at least one user position is required: %w", model.ErrInvalidConfig)
	}
	results := make([]model.PositionResult, 0, len(positions))
	var total float64
	for _, pos := range positions {
		if pos.Price == nil {
			return nil, 0, fmt.Errorf("position %q has no price curve: %w", pos.Name, model.ErrInvalidConfig)
		}
		res, err := ForPosition(pos, pos.Price.Build(n), n, timeWeighting)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, res)
		total += res.Points
	}
	return results, total, nil
}
