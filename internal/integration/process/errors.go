package process

import "errors"

// Sentinel errors for the process package.
var (
	// ErrSpawn indicates the child could not be started at all
	// (binary missing, not executable, supervisor shutting down).
	ErrSpawn = errors.New("spawn failed")

	// ErrProcessLimit indicates the supervisor already runs its maximum
	// number of children. It is not a spawn failure; the call may be retried.
	ErrProcessLimit = errors.New("process limit reached")

	// ErrTimeout indicates the child was killed because its deadline expired.
	ErrTimeout = errors.New("process timed out")

	// ErrProcessNotStarted is returned when operations require a running process.
	ErrProcessNotStarted = errors.New("process not started")

	// ErrProcessAlreadyStarted is returned when starting a process twice.
	ErrProcessAlreadyStarted = errors.New("process already started")

	// ErrProcessNotFound is returned when a process ID is not tracked.
	ErrProcessNotFound = errors.New("process not found")

	// ErrSupervisorShutdown is returned when the supervisor is shutting down.
	ErrSupervisorShutdown = errors.New("supervisor is shutting down")
)
