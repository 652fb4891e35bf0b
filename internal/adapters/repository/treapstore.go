package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/ytairdrop/internal/domain/model"
	"github.com/okian/ytairdrop/pkg/metrics"
)

// Treap-based, in-memory Store implementation. One treap per FDV.
//
// Ordering: ROI DESC with undefined ROI last, then entry day ASC. "less"
// means ranks earlier, so an in-order traversal is the ranking from best to
// worst.

type node struct {
	row   model.SweepRow
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(a, b model.SweepRow) bool {
	return a.RanksAbove(b)
}

// priority scrambles the entry day (splitmix64) so the tree stays balanced
// whatever order the days arrive in, while staying deterministic.
func priority(day int) uint64 {
	z := uint64(day) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, row model.SweepRow) *node {
	if n == nil {
		return &node{row: row, prio: priority(row.EntryDay), size: 1}
	}
	if less(row, n.row) {
		n.left = insert(n.left, row)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, row)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, row model.SweepRow) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.row.EntryDay == row.EntryDay:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, row)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, row)
		}
	case less(row, n.row):
		n.left = deleteNode(n.left, row)
	default:
		n.right = deleteNode(n.right, row)
	}
	fix(n)
	return n
}

// rankOf returns the 1-based position of row in the treap.
func rankOf(n *node, row model.SweepRow) int {
	rank := 1
	for n != nil {
		switch {
		case n.row.EntryDay == row.EntryDay:
			return rank + nsize(n.left)
		case less(row, n.row):
			n = n.left
		default:
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, Entry{Rank: len(*out) + 1, Row: n.row})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

func collectAll(n *node, out *[]model.SweepRow) {
	if n == nil {
		return
	}
	collectAll(n.left, out)
	*out = append(*out, n.row)
	collectAll(n.right, out)
}

// TreapStore ranks rows per FDV. It is safe for concurrent use.
type TreapStore struct {
	mu           sync.RWMutex
	roots        map[float64]*node
	rows         map[model.RowKey]model.SweepRow
	capacityHint int
}

// NewTreapStore constructs an empty store.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{}
	for _, opt := range opts {
		opt(s)
	}
	s.roots = make(map[float64]*node)
	s.rows = make(map[model.RowKey]model.SweepRow, s.capacityHint)

	metrics.UpdateRepositoryRecordsTotal(0)
	metrics.UpdateRepositoryFDVCount(0)
	return s
}

// Upsert implements Store.Upsert in O(log n) expected time.
func (s *TreapStore) Upsert(_ context.Context, row model.SweepRow) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	key := row.Key()
	s.mu.Lock()
	root := s.roots[row.FDV]
	if old, ok := s.rows[key]; ok {
		root = deleteNode(root, old)
	}
	s.rows[key] = row
	root = insert(root, row)
	s.roots[row.FDV] = root
	total, fdvs, perFDV := len(s.rows), len(s.roots), nsize(root)
	s.mu.Unlock()

	metrics.UpdateRepositoryRecordsTotal(total)
	metrics.UpdateRepositoryFDVCount(fdvs)
	metrics.UpdateRepositoryRecordsPerFDV(row.FDV, perFDV)
	return nil
}

// Get returns the row for (day, fdv) with its rank.
func (s *TreapStore) Get(_ context.Context, day int, fdv float64) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[model.RowKey{EntryDay: day, FDV: fdv}]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return Entry{Rank: rankOf(s.roots[fdv], row), Row: row}, nil
}

// TopN returns the top n rows for fdv. An unknown FDV yields no rows.
func (s *TreapStore) TopN(_ context.Context, fdv float64, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	root := s.roots[fdv]
	out := make([]Entry, 0, min(n, nsize(root)))
	collectTopN(root, n, &out)
	return out, nil
}

// Rows returns every row ordered by FDV ascending, then rank.
func (s *TreapStore) Rows(ctx context.Context) []model.SweepRow {
	fdvs := s.FDVs(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SweepRow, 0, len(s.rows))
	for _, fdv := range fdvs {
		collectAll(s.roots[fdv], &out)
	}
	return out
}

// FDVs returns the ranked FDVs in ascending order.
func (s *TreapStore) FDVs(_ context.Context) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]float64, 0, len(s.roots))
	for fdv := range s.roots {
		out = append(out, fdv)
	}
	slices.Sort(out)
	return out
}

// Count returns the total number of rows.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
