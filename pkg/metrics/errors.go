package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrExportFailed   = errors.New("metrics export failed")
	ErrInvalidOptions = errors.New("invalid metrics options")
)
