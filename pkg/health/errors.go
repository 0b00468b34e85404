package health

import "errors"

var (
	// ErrCheckFailed is returned when one or more health checks fail.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check that exceeded its timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrNotReady is returned by a closed Gate.
	ErrNotReady = errors.New("health: not ready")
)
