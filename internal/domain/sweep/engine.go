// Package sweep evaluates every candidate entry day against a fixed network
// and reports, per FDV, the return, the breakeven entry price and how many
// later days would still have been profitable.
package sweep

import (
	"fmt"
	"math"

	"github.com/okian/ytairdrop/internal/domain/airdrop"
	"github.com/okian/ytairdrop/internal/domain/dedupe"
	"github.com/okian/ytairdrop/internal/domain/model"
	"github.com/okian/ytairdrop/internal/domain/points"
	"github.com/okian/ytairdrop/internal/domain/simulation"
)

// Engine holds everything that does not depend on the entry day. It is
// read-only after construction and safe for concurrent use.
type Engine struct {
	n             int
	timeWeighting bool

	networkPoints float64
	poolTokens    float64
	supply        float64
	spend         float64

	positions []model.UserPosition
	prices    [][]float64
	avgPrice  []float64 // spend-weighted, non-positive prices skipped
}

// NewEngine computes network points and price paths once for the scenario.
func NewEngine(s simulation.Scenario) (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	net, err := points.ComputeNetwork(s.Network, s.Duration)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		n:             s.Duration,
		timeWeighting: s.TimeWeighting,
		networkPoints: net.Total,
		poolTokens:    s.TotalSupply * s.AirdropFraction,
		supply:        s.TotalSupply,
		spend:         s.TotalSpend(),
		positions:     s.Positions,
		prices:        make([][]float64, len(s.Positions)),
		avgPrice:      make([]float64, s.Duration),
	}
	for i, pos := range s.Positions {
		if pos.Price == nil {
			return nil, fmt.Errorf("position %q has no price curve: %w", pos.Name, model.ErrInvalidConfig)
		}
		e.prices[i] = pos.Price.Build(s.Duration)
	}
	for d := range e.avgPrice {
		e.avgPrice[d] = e.averagePrice(d)
	}
	return e, nil
}

// Days returns the program length.
func (e *Engine) Days() int { return e.n }

// NetworkPoints returns the fixed network total every day is measured against.
func (e *Engine) NetworkPoints() float64 { return e.networkPoints }

// AveragePrice returns the spend-weighted entry price on day d.
func (e *Engine) AveragePrice(d int) float64 {
	if d < 0 || d >= e.n {
		return 0
	}
	return e.avgPrice[d]
}

func (e *Engine) averagePrice(d int) float64 {
	if e.spend <= 0 {
		return 0
	}
	var avg float64
	for i, pos := range e.positions {
		if p := e.prices[i][d]; p > 0 {
			avg += p * pos.Spend / e.spend
		}
	}
	return avg
}

// entry is the day-dependent, FDV-independent part of a row.
type entry struct {
	owned  float64
	points float64
}

func (e *Engine) enter(day int) entry {
	var out entry
	for i, pos := range e.positions {
		price := e.prices[i][day]
		if price <= 0 {
			continue
		}
		owned := points.Owned(pos.Spend, price)
		out.owned += owned
		out.points += points.Accrue(owned, pos.Multiplier, day, e.n, e.timeWeighting)
	}
	return out
}

// EvaluateDay returns one row per FDV for entering on day.
func (e *Engine) EvaluateDay(day int, fdvs []float64) ([]model.SweepRow, error) {
	if day < 0 || day >= e.n {
		return nil, fmt.Errorf("entry day %d outside program of %d days: %w", day, e.n, model.ErrInvalidConfig)
	}
	in := e.enter(day)
	share := airdrop.Share(in.points, e.networkPoints)
	tokens := e.poolTokens * share
	avg := e.avgPrice[day]

	rows := make([]model.SweepRow, len(fdvs))
	for i, fdv := range fdvs {
		out := airdrop.Outcome(tokens, e.supply, e.spend, fdv)
		be := Breakeven(e.spend, tokens, out.TokenPrice, avg)
		rows[i] = model.SweepRow{
			EntryDay:             day,
			FDV:                  fdv,
			AvgEntryPrice:        avg,
			OwnedTotal:           in.owned,
			Share:                share,
			UserTokens:           tokens,
			Value:                out.Value,
			ROI:                  out.ROI,
			Breakeven:            be,
			Profitable:           out.ROI != nil && *out.ROI > 0,
			FutureProfitableDays: e.futureProfitable(day, be),
		}
	}
	return rows, nil
}

// Evaluate returns the row for a single (day, FDV) pair.
func (e *Engine) Evaluate(day int, fdv float64) (model.SweepRow, error) {
	rows, err := e.EvaluateDay(day, []float64{fdv})
	if err != nil {
		return model.SweepRow{}, err
	}
	return rows[0], nil
}

// futureProfitable counts days from day onward whose average price is
// positive and strictly below breakeven.
func (e *Engine) futureProfitable(day int, breakeven float64) int {
	count := 0
	for d := day; d < e.n; d++ {
		if p := e.avgPrice[d]; p > 0 && p < breakeven {
			count++
		}
	}
	return count
}

// Run evaluates the candidate days in order. A nil days slice means every
// day; out-of-range and repeated days are dropped.
func (e *Engine) Run(days []int, fdvs []float64) Rows {
	candidates := dedupe.EntryDays(days, e.n)
	rows := make(Rows, 0, len(candidates)*len(fdvs))
	for _, d := range candidates {
		// d is in range, EvaluateDay cannot fail.
		dayRows, _ := e.EvaluateDay(d, fdvs)
		rows = append(rows, dayRows...)
	}
	return rows
}

// Breakeven is the average entry price at which the allocation's value equals
// spend. It is +Inf when tokens, token price or average price is not positive.
func Breakeven(spend, tokens, tokenPrice, avgPrice float64) float64 {
	if tokens <= 0 || tokenPrice <= 0 || avgPrice <= 0 {
		return math.Inf(1)
	}
	return spend / (tokens * tokenPrice / avgPrice)
}
