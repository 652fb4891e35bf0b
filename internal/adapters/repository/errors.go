package repository

import "errors"

// Sentinel kinds for ranking store errors.
var (
	ErrNotFound     = errors.New("sweep row not found")
	ErrInvalidLimit = errors.New("invalid ranking limit")
)
