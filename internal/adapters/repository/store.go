// Package repository ranks sweep rows per FDV.
package repository

import (
	"context"

	"github.com/okian/ytairdrop/internal/domain/model"
)

// Entry is a ranked sweep row. Rank starts at 1 within the row's FDV.
type Entry struct {
	Rank int
	Row  model.SweepRow
}

// Store provides read/write access to the ranking state.
type Store interface {
	// Upsert inserts the row or replaces the row with the same (day, FDV).
	Upsert(ctx context.Context, row model.SweepRow) error

	// Get returns the ranked row for (day, fdv), or ErrNotFound.
	Get(ctx context.Context, day int, fdv float64) (Entry, error)

	// TopN returns up to n rows for fdv, best first.
	TopN(ctx context.Context, fdv float64, n int) ([]Entry, error)

	// Rows returns every row ordered by FDV ascending, then rank.
	Rows(ctx context.Context) []model.SweepRow

	// FDVs returns the ranked FDVs in ascending order.
	FDVs(ctx context.Context) []float64

	// Count returns the number of rows held.
	Count(ctx context.Context) int
}
