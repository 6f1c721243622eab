package process

import (
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Supervisor tracks running children from start until they are reaped.
//
// Supervisor is safe for concurrent use.
type Supervisor struct {
	mu        sync.RWMutex
	processes map[string]*Process

	// shutdown is closed when Shutdown begins
	shutdown chan struct{}
	closed   atomic.Bool

	// maxProcesses limits concurrent children (0 = unlimited)
	maxProcesses int

	onProcessExit func(p *Process)
	logger        zerolog.Logger

	// reaped is signalled whenever a process leaves the table
	reaped *sync.Cond
}

// SupervisorOption configures a Supervisor instance.
type SupervisorOption func(*Supervisor)

// WithMaxProcesses sets the maximum number of concurrent processes.
// A value of 0 (default) means unlimited.
func WithMaxProcesses(max int) SupervisorOption {
	return func(s *Supervisor) {
		s.maxProcesses = max
	}
}

// WithProcessExitCallback sets a callback for when processes exit.
// The callback runs on the supervisor's monitor goroutine.
func WithProcessExitCallback(fn func(p *Process)) SupervisorOption {
	return func(s *Supervisor) {
		s.onProcessExit = fn
	}
}

// WithSupervisorLogger sets the logger used for lifecycle events.
func WithSupervisorLogger(logger zerolog.Logger) SupervisorOption {
	return func(s *Supervisor) {
		s.logger = logger
	}
}

// NewSupervisor creates a new process supervisor.
func NewSupervisor(opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		processes: make(map[string]*Process),
		shutdown:  make(chan struct{}),
		logger:    zerolog.Nop(),
	}
	s.reaped = sync.NewCond(&s.mu)

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start starts cmd under a freshly generated ID.
//
// Stdin is piped when cmd.Stdin is nil. The process is tracked until it
// exits. Returns ErrSupervisorShutdown once Shutdown has begun.
func (s *Supervisor) Start(name string, cmd *exec.Cmd) (*Process, error) {
	return s.StartWithID(uuid.New().String(), name, cmd)
}

// StartWithID starts cmd under a caller-chosen ID.
func (s *Supervisor) StartWithID(id, name string, cmd *exec.Cmd) (*Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, ErrSupervisorShutdown
	}

	if s.maxProcesses > 0 && len(s.processes) >= s.maxProcesses {
		return nil, fmt.Errorf("%w: %d", ErrProcessLimit, s.maxProcesses)
	}

	if _, exists := s.processes[id]; exists {
		return nil, fmt.Errorf("process ID already exists: %s", id)
	}

	proc := NewProcess(id, name, cmd)

	if cmd.Stdin == nil {
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("create stdin pipe: %w", err)
		}
		proc.Stdin = stdin
	}

	if err := proc.start(); err != nil {
		_ = proc.closeStdin()
		return nil, err
	}

	s.processes[id] = proc
	s.logger.Debug().
		Str("id", id).
		Str("name", name).
		Int("pid", proc.PID()).
		Msg("process started")

	go s.monitorProcess(proc)

	return proc, nil
}

// monitorProcess waits for exit, runs the exit callback and untracks the process.
func (s *Supervisor) monitorProcess(proc *Process) {
	<-proc.Done()

	if s.onProcessExit != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error().
						Str("id", proc.ID).
						Interface("panic", r).
						Msg("process exit callback panicked")
				}
			}()
			s.onProcessExit(proc)
		}()
	}

	s.mu.Lock()
	delete(s.processes, proc.ID)
	s.reaped.Broadcast()
	s.mu.Unlock()
}

// Get returns a process by ID, or nil.
func (s *Supervisor) Get(id string) *Process {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processes[id]
}

// List returns all tracked processes.
func (s *Supervisor) List() []*Process {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Process, 0, len(s.processes))
	for _, p := range s.processes {
		result = append(result, p)
	}
	return result
}

// Count returns the number of tracked processes.
func (s *Supervisor) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.processes)
}

// Kill kills a process (and its group) by ID.
func (s *Supervisor) Kill(id string) error {
	proc := s.Get(id)
	if proc == nil {
		return ErrProcessNotFound
	}
	if !proc.IsRunning() {
		return nil
	}
	return proc.Kill()
}

// Shutdown terminates every tracked process.
//
// It sends SIGTERM and waits up to timeout; anything still running is then
// killed. Shutdown returns once all processes have been reaped and untracked.
func (s *Supervisor) Shutdown(timeout time.Duration) {
	if s.closed.Swap(true) {
		return
	}
	close(s.shutdown)

	procs := s.List()
	if len(procs) == 0 {
		return
	}

	s.logger.Debug().Int("count", len(procs)).Msg("terminating processes")

	for _, p := range procs {
		if p.IsRunning() {
			_ = p.Terminate()
		}
	}

	done := make(chan struct{})
	go func() {
		for _, p := range procs {
			<-p.Done()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		for _, p := range procs {
			if p.IsRunning() {
				_ = p.Kill()
			}
		}
		<-done
	}

	s.mu.Lock()
	for len(s.processes) > 0 {
		s.reaped.Wait()
	}
	s.mu.Unlock()
}

// IsShuttingDown returns true once Shutdown has begun.
func (s *Supervisor) IsShuttingDown() bool {
	return s.closed.Load()
}

// ShutdownChan returns a channel that is closed when shutdown begins.
func (s *Supervisor) ShutdownChan() <-chan struct{} {
	return s.shutdown
}
