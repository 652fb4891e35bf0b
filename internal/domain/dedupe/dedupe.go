// Package dedupe normalizes candidate entry days and FDVs before a sweep.
package dedupe

import "sync"

// Deduper records seen entry days so each is evaluated at most once.
type Deduper interface {
	// SeenAndRecord reports whether day was already seen and records it if not.
	SeenAndRecord(day int) bool

	Size() int
}

type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[int]struct{}
	capacity int
}

// NewInMemoryDeduper creates an empty deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[int]struct{}, max(d.capacity, 0))
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(day int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[day]; ok {
		return true
	}
	d.seen[day] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// EntryDays returns the candidate days of an n-day program in input order,
// dropping days outside [0, n) and repeats. A nil slice selects every day.
func EntryDays(days []int, n int) []int {
	if n <= 0 {
		return []int{}
	}
	if days == nil {
		all := make([]int, n)
		for d := range all {
			all[d] = d
		}
		return all
	}

	d := NewInMemoryDeduper(WithCapacity(len(days)))
	out := make([]int, 0, len(days))
	for _, day := range days {
		if day < 0 || day >= n {
			continue
		}
		if d.SeenAndRecord(day) {
			continue
		}
		out = append(out, day)
	}
	return out
}

// FDVs returns fdvs in input order with repeated valuations dropped. Rows are
// keyed by (entry day, FDV), so a repeated FDV would overwrite its own rows.
func FDVs(fdvs []float64) []float64 {
	seen := make(map[float64]struct{}, len(fdvs))
	out := make([]float64, 0, len(fdvs))
	for _, fdv := range fdvs {
		if _, ok := seen[fdv]; ok {
			continue
		}
		seen[fdv] = struct{}{}
		out = append(out, fdv)
	}
	return out
}
