package dsketch

import "errors"

// Sentinel errors returned (wrapped with context via fmt.Errorf("%w: ...")
// by New and Start/Stop.
var (
	ErrInvalidBucketCount      = errors.New("dsketch: bucket count must be a positive power of two")
	ErrInvalidTheta            = errors.New("dsketch: theta must be in [0, 1]")
	ErrInvalidFilterCapacity   = errors.New("dsketch: filter capacity must be a positive multiple of 4")
	ErrInvalidThreadCount      = errors.New("dsketch: thread count must be positive")
	ErrInvalidLocalTrackerSize = errors.New("dsketch: local tracker size must be positive")
	ErrAlreadyStarted          = errors.New("dsketch: engine already started")
	ErrNotStarted              = errors.New("dsketch: engine not started")
)
