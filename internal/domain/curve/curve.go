// Package curve builds day-indexed trajectories for value locked, market
// share and YT price. Every shape is a closed variant validated when the
// curve is constructed, so Build never fails.
package curve

import (
	"fmt"
	"math"

	"github.com/okian/ytairdrop/internal/domain/model"
)

// Shape constants shared by several curves.
const (
	logisticSteepness = 8.0
	troughFactor      = 0.7 // down_then_up dips to this fraction of the lower endpoint
	frontLoadedPower  = 0.7
	backLoadedPower   = 2.0

	// DefaultEpsilon is the floor exp_to_zero decays towards.
	DefaultEpsilon = 1e-4
	// DefaultStepDays is the width of one stepwise_linear price step.
	DefaultStepDays = 7
)

// progress normalizes day d of an n-day horizon to x in [0,1].
func progress(d, n int) float64 {
	return float64(d) / float64(max(n-1, 1))
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), model.ErrInvalidConfig)
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// lerp moves from a to b by fraction x.
func lerp(a, b, x float64) float64 {
	return a + (b-a)*x
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func ceilDiv(a, b int) int {
	return int(math.Ceil(float64(a) / float64(b)))
}
