package model

// FDVOutcome is the projected value of an allocation at one fully diluted
// valuation. ROI is nil when nothing was spent.
type FDVOutcome struct {
	FDV        float64
	TokenPrice float64
	Value      float64
	ROI        *float64
	CostRatio  float64 // spend / FDV
}

// SimulationResult aggregates a single calculator run.
type SimulationResult struct {
	RunID string

	UserPoints    float64
	NetworkPoints float64
	UserShare     float64

	AirdropTokens float64 // supply * airdrop fraction
	UserTokens    float64
	TotalSpend    float64

	Positions []PositionResult
	Outcomes  []FDVOutcome // in the order the FDVs were supplied

	AverageValueLocked   float64
	EffectiveMarketShare float64
}

// Outcome returns the outcome evaluated for fdv.
func (r *SimulationResult) Outcome(fdv float64) (FDVOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.FDV == fdv {
			return o, true
		}
	}
	return FDVOutcome{}, false
}

// SweepRow is the outcome of entering on EntryDay, valued at FDV.
type SweepRow struct {
	EntryDay int
	FDV      float64

	AvgEntryPrice float64 // spend-weighted across positions
	OwnedTotal    float64
	Share         float64
	UserTokens    float64
	Value         float64
	ROI           *float64

	// Breakeven is the average entry price at which ROI is exactly zero.
	// +Inf means the position can never break even at this FDV.
	Breakeven            float64
	Profitable           bool
	FutureProfitableDays int
}

// RowKey identifies a sweep row.
type RowKey struct {
	EntryDay int
	FDV      float64
}

// Key returns the row's identity.
func (r SweepRow) Key() RowKey {
	return RowKey{EntryDay: r.EntryDay, FDV: r.FDV}
}

// ROIOr returns the row's ROI, or fallback when it is undefined.
func (r SweepRow) ROIOr(fallback float64) float64 {
	if r.ROI == nil {
		return fallback
	}
	return *r.ROI
}

// RanksAbove orders rows of one FDV best first: higher ROI wins, rows
// without an ROI come last and ties go to the earlier entry day.
func (r SweepRow) RanksAbove(o SweepRow) bool {
	switch {
	case r.ROI != nil && o.ROI == nil:
		return true
	case r.ROI == nil && o.ROI != nil:
		return false
	case r.ROI != nil && *r.ROI != *o.ROI:
		return *r.ROI > *o.ROI
	}
	return r.EntryDay < o.EntryDay
}
