package process

import (
	"context"
	"strings"
	"time"
)

// Result is the outcome of one child process.
type Result struct {
	// ExitCode is the exit status; -1 when the child was killed by a signal.
	ExitCode int

	// Signal is the terminating signal number, or 0.
	Signal int

	// Stdout is everything the child wrote to stdout.
	Stdout string

	// Stderr is everything the child wrote to stderr.
	Stderr string

	// Command is the argument vector that was run.
	Command []string

	// Duration is the wall time between start and exit.
	Duration time.Duration
}

// Success reports whether the child exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0 && r.Signal == 0
}

// String renders the command line for logs and error messages.
func (r Result) String() string {
	return strings.Join(r.Command, " ")
}

// Scheduler runs callbacks on the caller's execution context.
// Post reports false when the callback was not accepted.
type Scheduler interface {
	Post(fn func()) bool
}

// Future is the pending outcome of Runner.Run.
type Future struct {
	done   chan struct{}
	result Result
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Completed returns a Future that is already resolved.
func Completed(result Result, err error) *Future {
	f := newFuture()
	f.resolve(result, err)
	return f
}

func (f *Future) resolve(result Result, err error) {
	f.result = result
	f.err = err
	close(f.done)
}

// Done returns a channel that is closed once the outcome is known.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the outcome is known or ctx is done.
func (f *Future) Wait(ctx context.Context) (Result, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Then delivers the outcome to fn on s. Delivery is always deferred, even
// when the Future is already resolved. If s refuses the callback it is dropped.
func (f *Future) Then(s Scheduler, fn func(Result, error)) {
	go func() {
		<-f.done
		s.Post(func() { fn(f.result, f.err) })
	}()
}
