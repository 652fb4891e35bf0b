package config

import (
	"errors"

	"github.com/okian/ytairdrop/internal/domain/model"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidConfig is the domain sentinel so callers need only one check.
	ErrInvalidConfig = model.ErrInvalidConfig
	ErrLoadConfig    = errors.New("load config failed")
)
