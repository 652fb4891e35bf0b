package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithCapacityHint pre-sizes the row index for the expected number of rows.
func WithCapacityHint(rows int) Option {
	return func(s *TreapStore) {
		if rows > 0 {
			s.capacityHint = rows
		}
	}
}
