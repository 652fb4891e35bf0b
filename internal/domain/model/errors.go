package model

import "errors"

// ErrInvalidConfig marks a configuration mistake: a missing field for the
// selected mode, an unknown shape or mode name, or a non-positive value where
// a formula needs a positive one. It is never retried.
var ErrInvalidConfig = errors.New("invalid config")
