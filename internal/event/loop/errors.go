package loop

import "errors"

// Sentinel errors for the loop package.
var (
	// ErrAlreadyRunning is returned when Run is called on a running loop.
	ErrAlreadyRunning = errors.New("loop is already running")

	// ErrStopped is returned when Run is called after Stop.
	ErrStopped = errors.New("loop is stopped")
)
