package sweep

import (
	"cmp"
	"slices"

	"github.com/okian/ytairdrop/internal/domain/model"
)

// Rows is a flat sweep result keyed by (entry day, FDV).
type Rows []model.SweepRow

// Get returns the row for (day, fdv).
func (r Rows) Get(day int, fdv float64) (model.SweepRow, bool) {
	key := model.RowKey{EntryDay: day, FDV: fdv}
	for _, row := range r {
		if row.Key() == key {
			return row, true
		}
	}
	return model.SweepRow{}, false
}

// ForFDV returns the rows valued at fdv in entry-day order.
func (r Rows) ForFDV(fdv float64) Rows {
	out := make(Rows, 0, len(r))
	for _, row := range r {
		if row.FDV == fdv {
			out = append(out, row)
		}
	}
	slices.SortStableFunc(out, func(a, b model.SweepRow) int {
		return cmp.Compare(a.EntryDay, b.EntryDay)
	})
	return out
}

// TopByROI returns up to n rows for fdv, best first. n <= 0 returns them all.
func (r Rows) TopByROI(fdv float64, n int) Rows {
	out := r.ForFDV(fdv)
	slices.SortStableFunc(out, byRank)
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Best returns the top-ranked row for fdv.
func (r Rows) Best(fdv float64) (model.SweepRow, bool) {
	top := r.TopByROI(fdv, 1)
	if len(top) == 0 {
		return model.SweepRow{}, false
	}
	return top[0], true
}

// Profitable returns the rows for fdv with a positive ROI.
func (r Rows) Profitable(fdv float64) Rows {
	out := make(Rows, 0)
	for _, row := range r.ForFDV(fdv) {
		if row.Profitable {
			out = append(out, row)
		}
	}
	return out
}

// ProfitableCount is the number of profitable entry days at fdv.
func (r Rows) ProfitableCount(fdv float64) int {
	return len(r.Profitable(fdv))
}

// FDVs returns the distinct FDVs in ascending order.
func (r Rows) FDVs() []float64 {
	out := make([]float64, 0)
	for _, row := range r {
		if !slices.Contains(out, row.FDV) {
			out = append(out, row.FDV)
		}
	}
	slices.Sort(out)
	return out
}

// Sorted orders rows by FDV ascending, then best ROI first.
func (r Rows) Sorted() Rows {
	out := slices.Clone(r)
	slices.SortStableFunc(out, func(a, b model.SweepRow) int {
		if c := cmp.Compare(a.FDV, b.FDV); c != 0 {
			return c
		}
		return byRank(a, b)
	})
	return out
}

func byRank(a, b model.SweepRow) int {
	switch {
	case a.RanksAbove(b):
		return -1
	case b.RanksAbove(a):
		return 1
	}
	return 0
}
