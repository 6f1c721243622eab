package process

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// State represents the state of a process.
type State int

const (
	// StateCreated indicates the process has been created but not started.
	StateCreated State = iota
	// StateRunning indicates the process is currently running.
	StateRunning
	// StateExited indicates the process has exited on its own.
	StateExited
	// StateKilled indicates the process was terminated by a signal.
	StateKilled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Process is a supervised child process.
//
// Output capture is left to the caller through Cmd.Stdout and Cmd.Stderr;
// only stdin is piped by the supervisor so payloads can be written and the
// stream closed before the child is reaped.
type Process struct {
	// ID is the unique identifier assigned by the supervisor.
	ID string

	// Name is a human-readable name, usually the binary.
	Name string

	// Cmd is the underlying exec.Cmd.
	Cmd *exec.Cmd

	// Stdin is the write end of the child's stdin.
	// Nil when the caller supplied its own Cmd.Stdin.
	Stdin io.WriteCloser

	// Started is the time the process was started.
	Started time.Time

	done     chan struct{}
	state    atomic.Int32
	exitCode atomic.Int32
	signal   atomic.Int32
	ended    atomic.Int64

	mu      sync.RWMutex
	exitErr error

	waitOnce sync.Once
}

// NewProcess creates a Process wrapping cmd. The command must not be started.
func NewProcess(id, name string, cmd *exec.Cmd) *Process {
	p := &Process{
		ID:   id,
		Name: name,
		Cmd:  cmd,
		done: make(chan struct{}),
	}
	p.state.Store(int32(StateCreated))
	p.exitCode.Store(-1)
	return p
}

// State returns the current process state.
func (p *Process) State() State {
	return State(p.state.Load())
}

// ExitCode returns the exit status, or -1 while running or when the child
// was terminated by a signal.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// Signal returns the number of the signal that terminated the child, or 0.
func (p *Process) Signal() int {
	return int(p.signal.Load())
}

// ExitError returns the error reported by Wait, if any.
func (p *Process) ExitError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exitErr
}

// Done returns a channel that is closed when the process exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// IsRunning returns true if the process is currently running.
func (p *Process) IsRunning() bool {
	return p.State() == StateRunning
}

// HasExited returns true if the process has exited or was killed.
func (p *Process) HasExited() bool {
	state := p.State()
	return state == StateExited || state == StateKilled
}

// PID returns the operating system process id, or -1 if not started.
func (p *Process) PID() int {
	if p.Cmd.Process == nil {
		return -1
	}
	return p.Cmd.Process.Pid
}

// Runtime returns how long the process ran, or has been running so far.
func (p *Process) Runtime() time.Duration {
	if p.Started.IsZero() {
		return 0
	}
	if ended := p.ended.Load(); ended != 0 {
		return time.Unix(0, ended).Sub(p.Started)
	}
	return time.Since(p.Started)
}

// Send delivers sig to the process.
func (p *Process) Send(sig os.Signal) error {
	if !p.IsRunning() || p.Cmd.Process == nil {
		return ErrProcessNotStarted
	}
	return p.Cmd.Process.Signal(sig)
}

// Terminate sends SIGTERM to the process.
func (p *Process) Terminate() error {
	return p.Send(syscall.SIGTERM)
}

// Kill kills the process together with any children it spawned
// (ssh, credential helpers, hooks).
func (p *Process) Kill() error {
	if !p.IsRunning() || p.Cmd.Process == nil {
		return ErrProcessNotStarted
	}
	return killGroup(p.Cmd.Process)
}

// start starts the process and begins reaping it in the background.
func (p *Process) start() error {
	if p.State() != StateCreated {
		return ErrProcessAlreadyStarted
	}

	if err := p.Cmd.Start(); err != nil {
		return err
	}

	p.Started = time.Now()
	p.state.Store(int32(StateRunning))

	go p.waitLoop()

	return nil
}

// waitLoop reaps the process and records how it ended.
func (p *Process) waitLoop() {
	p.waitOnce.Do(func() {
		err := p.Cmd.Wait()
		p.ended.Store(time.Now().UnixNano())

		p.mu.Lock()
		p.exitErr = err
		p.mu.Unlock()

		exitCode := 0
		state := StateExited

		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				exitCode = exitErr.ExitCode()
				if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
					state = StateKilled
					p.signal.Store(int32(status.Signal()))
				}
			} else if p.Cmd.ProcessState != nil {
				// WaitDelay expired with pipes still open; the child itself exited.
				exitCode = p.Cmd.ProcessState.ExitCode()
			} else {
				exitCode = -1
			}
		}

		p.exitCode.Store(int32(exitCode))
		p.state.Store(int32(state))
		close(p.done)
	})
}

// closeStdin closes the stdin pipe if the supervisor created one.
func (p *Process) closeStdin() error {
	if p.Stdin == nil {
		return nil
	}
	return p.Stdin.Close()
}
