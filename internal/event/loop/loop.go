package loop

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Scheduler accepts callbacks for later execution on a single context.
// It matches process.Scheduler.
type Scheduler interface {
	Post(fn func()) bool
}

// PanicHandler receives a recovered panic value and its stack.
type PanicHandler func(value any, stack []byte)

// Loop is an unbounded FIFO of callbacks executed one at a time.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool

	running atomic.Bool
	// exec serializes Run and Drain so callbacks never overlap
	exec sync.Mutex
	// inCallback is set while a drain executes a callback.
	inCallback atomic.Bool

	panicHandler PanicHandler

	posted   atomic.Uint64
	executed atomic.Uint64
	panicked atomic.Uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithPanicHandler sets the handler for panicking callbacks.
func WithPanicHandler(h PanicHandler) Option {
	return func(l *Loop) {
		l.panicHandler = h
	}
}

// New creates a Loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues fn. It returns false once the loop has been stopped.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	l.posted.Add(1)
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Run executes callbacks until ctx is done or Stop is called.
// Callbacks still queued at Stop are executed before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)

	for {
		l.Drain()

		l.mu.Lock()
		stopped := l.stopped
		l.mu.Unlock()
		if stopped {
			l.Drain()
			return nil
		}

		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Drain runs every queued callback on the calling goroutine and returns
// how many ran. Callbacks posted while draining are included.
//
// Drain is not reentrant. While a callback is executing, including a call
// from inside that callback, it returns 0 and leaves the queue to the
// drain already in progress.
func (l *Loop) Drain() int {
	if l.inCallback.Load() {
		return 0
	}
	l.exec.Lock()
	defer l.exec.Unlock()

	n := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return n
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.inCallback.Store(true)
		l.execute(fn)
		l.inCallback.Store(false)
		n++
	}
}

// Stop refuses further posts and wakes Run so it can finish the queue.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Stats reports counters since creation.
func (l *Loop) Stats() Stats {
	return Stats{
		Posted:   l.posted.Load(),
		Executed: l.executed.Load(),
		Panicked: l.panicked.Load(),
	}
}

// Stats holds loop counters.
type Stats struct {
	Posted   uint64
	Executed uint64
	Panicked uint64
}

func (l *Loop) execute(fn func()) {
	defer func() {
		l.executed.Add(1)
		if r := recover(); r != nil {
			l.panicked.Add(1)
			if l.panicHandler != nil {
				stack := debug.Stack()
				func() {
					defer func() { _ = recover() }()
					l.panicHandler(r, stack)
				}()
			}
		}
	}()
	fn()
}
