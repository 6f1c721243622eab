package lua

import "errors"

// Sentinel errors for the lua package.
var (
	// ErrStateClosed is returned when using a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrScript wraps errors raised by the script itself.
	ErrScript = errors.New("lua script error")
)
